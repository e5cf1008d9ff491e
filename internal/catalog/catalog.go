// Package catalog loads the closed sets of interview and quiz categories.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed interview.yaml
var defaultCatalog []byte

type InterviewCategory struct {
	Name              string   `yaml:"name"`
	Focus             string   `yaml:"focus"`
	FallbackQuestions []string `yaml:"fallback_questions"`
}

type Catalog struct {
	QuestionsPerSession int                 `yaml:"questions_per_session"`
	InterviewCategories []InterviewCategory `yaml:"interview_categories"`
	QuizCategories      []string            `yaml:"quiz_categories"`
}

// Load reads the catalog from filename, or the embedded default when filename is empty.
func Load(filename string) (*Catalog, error) {
	data := defaultCatalog
	if filename != "" {
		raw, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", filename, err)
		}
		data = raw
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	if err := validate(&c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func validate(c *Catalog) error {
	if c.QuestionsPerSession <= 0 {
		return fmt.Errorf("questions_per_session must be greater than 0")
	}
	if len(c.InterviewCategories) == 0 {
		return fmt.Errorf("at least one interview category is required")
	}
	seen := make(map[string]bool)
	for i, cat := range c.InterviewCategories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return fmt.Errorf("interview category %d has no name", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate interview category %q", name)
		}
		seen[name] = true
		if len(cat.FallbackQuestions) == 0 {
			return fmt.Errorf("interview category %q has no fallback_questions", name)
		}
	}
	return nil
}

// Category returns the interview category with the exact given name.
func (c *Catalog) Category(name string) (InterviewCategory, bool) {
	for _, cat := range c.InterviewCategories {
		if cat.Name == name {
			return cat, true
		}
	}
	return InterviewCategory{}, false
}

func (c *Catalog) IsInterviewCategory(name string) bool {
	_, ok := c.Category(name)
	return ok
}

func (c *Catalog) IsQuizCategory(name string) bool {
	for _, q := range c.QuizCategories {
		if q == name {
			return true
		}
	}
	return false
}

func (c *Catalog) InterviewCategoryNames() []string {
	names := make([]string, 0, len(c.InterviewCategories))
	for _, cat := range c.InterviewCategories {
		names = append(names, cat.Name)
	}
	return names
}
