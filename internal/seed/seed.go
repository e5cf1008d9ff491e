// Package seed loads starter data into an empty database.
package seed

import (
	_ "embed"
	"fmt"

	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed problems.yaml
var problemsYAML []byte

type sampleTest struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

type problem struct {
	Title       string       `yaml:"title"`
	Difficulty  string       `yaml:"difficulty"`
	Topic       string       `yaml:"topic"`
	Description string       `yaml:"description"`
	SampleTests []sampleTest `yaml:"sample_tests"`
}

func parseProblems(data []byte) ([]dto.ProblemCreateDTO, error) {
	var raw []problem
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing seed problems: %w", err)
	}
	out := make([]dto.ProblemCreateDTO, 0, len(raw))
	for _, p := range raw {
		req := dto.ProblemCreateDTO{
			Title:       p.Title,
			Description: p.Description,
			Difficulty:  p.Difficulty,
			Topic:       p.Topic,
		}
		for _, t := range p.SampleTests {
			req.SampleTests = append(req.SampleTests, dto.SampleTestDTO{Input: t.Input, Output: t.Output})
		}
		out = append(out, req)
	}
	return out, nil
}

// Problems creates the starter problems unless some problems already exist.
// It returns how many were created.
func Problems(problems service.ProblemService) (int, error) {
	existing, err := problems.ListProblems()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.Info().Int("existing", len(existing)).Msg("Problems already present, skipping seed")
		return 0, nil
	}

	reqs, err := parseProblems(problemsYAML)
	if err != nil {
		return 0, err
	}
	for i, req := range reqs {
		if _, err := problems.CreateProblem(req); err != nil {
			return i, fmt.Errorf("seeding %q: %w", req.Title, err)
		}
	}
	log.Info().Int("created", len(reqs)).Msg("Seeded coding problems")
	return len(reqs), nil
}
