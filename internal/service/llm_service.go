package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/catalog"
)

// MaxAnswerScore is the top of the per-answer scale.
const MaxAnswerScore = 10.0

var ErrLLMUnavailable = errors.New("llm provider is not configured")

// ResumeArtifact is the uploaded resume handed to the question generator.
type ResumeArtifact struct {
	FileName string
	MIMEType string
	Data     []byte
}

type QuestionRequest struct {
	Category catalog.InterviewCategory
	Resume   ResumeArtifact
	Count    int
}

// LLMService generates interview questions and scores spoken answers.
type LLMService interface {
	Provider() string
	Model() string
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error)
	ScoreAnswer(ctx context.Context, question, answer string) (feedback string, score float64, err error)
}

// NewLLMService picks the provider named by LLM_PROVIDER.
func NewLLMService(cfg *config.Config) (LLMService, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		return NewOpenAILLMService(cfg), nil
	case "gemini", "":
		return NewGeminiLLMService(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLM.Provider)
	}
}

func buildQuestionPrompt(req QuestionRequest, resumeText string) string {
	var b strings.Builder
	b.WriteString("You are an experienced interviewer running a spoken mock interview.\n")
	fmt.Fprintf(&b, "Interview category: %s.\n", req.Category.Name)
	if req.Category.Focus != "" {
		fmt.Fprintf(&b, "Focus areas: %s.\n", req.Category.Focus)
	}
	if resumeText != "" {
		b.WriteString("\nCandidate resume:\n---\n")
		b.WriteString(resumeText)
		b.WriteString("\n---\n")
	} else {
		b.WriteString("The candidate's resume is attached.\n")
	}
	fmt.Fprintf(&b, "\nWrite exactly %d interview questions tailored to this candidate and category.\n", req.Count)
	b.WriteString("Each question must be answerable aloud in under a minute.\n")
	b.WriteString("Return one question per line, numbered \"1.\", \"2.\" and so on, with no other text.\n")
	return b.String()
}

func buildScoringPrompt(question, answer string) string {
	var b strings.Builder
	b.WriteString("You are an interview coach evaluating a spoken answer from a mock interview.\n")
	b.WriteString("The answer was transcribed from speech, so ignore filler words and transcription noise.\n\n")
	b.WriteString("Question:\n---\n")
	b.WriteString(question)
	b.WriteString("\n---\n\nCandidate's Answer:\n---\n")
	b.WriteString(answer)
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, `Please provide your evaluation in two distinct parts:
1. Score: A numerical score from 0 to %.0f reflecting relevance, depth and clarity.
2. Feedback: Two or three sentences: what was good, what was missing, one concrete improvement.

Format your response strictly as:
Score: [Your Numerical Score Here]
Feedback:
[Your Feedback Here]
`, MaxAnswerScore)
	return b.String()
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\(?\d+[.):]|Q\d+[.):]?)\s*`)

// parseQuestionList extracts up to max questions from a numbered or bulleted list.
func parseQuestionList(raw string, max int) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hadMarker := listMarker.MatchString(line)
		q := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		q = strings.Trim(q, "*\"")
		if q == "" {
			continue
		}
		if !hadMarker && !strings.HasSuffix(q, "?") {
			// preamble such as "Here are your questions:"
			continue
		}
		questions = append(questions, q)
		if max > 0 && len(questions) == max {
			break
		}
	}
	return questions
}

func parseScoreAndFeedback(rawResponse string) (scoreStr string, feedbackStr string, err error) {
	scorePrefix := "Score:"
	feedbackPrefix := "Feedback:"

	scoreIndex := strings.Index(rawResponse, scorePrefix)
	feedbackIndex := strings.Index(rawResponse, feedbackPrefix)

	if scoreIndex == -1 {
		return "", rawResponse, fmt.Errorf("response does not contain 'Score:' prefix. Raw: %s", rawResponse)
	}

	endOfScoreLine := strings.Index(rawResponse[scoreIndex:], "\n")
	if endOfScoreLine == -1 {
		scoreStr = strings.TrimSpace(rawResponse[scoreIndex+len(scorePrefix):])
	} else {
		scoreStr = strings.TrimSpace(rawResponse[scoreIndex+len(scorePrefix) : scoreIndex+endOfScoreLine])
	}

	if feedbackIndex != -1 && feedbackIndex > scoreIndex {
		feedbackStr = strings.TrimSpace(rawResponse[feedbackIndex+len(feedbackPrefix):])
	} else if endOfScoreLine != -1 && len(rawResponse) > scoreIndex+endOfScoreLine+1 {
		feedbackStr = strings.TrimSpace(rawResponse[scoreIndex+endOfScoreLine+1:])
	}

	// "7/10" or "7 out of 10"
	scoreStr = strings.SplitN(scoreStr, "/", 2)[0]
	if parts := strings.Fields(scoreStr); len(parts) > 0 {
		scoreStr = parts[0]
	}
	return scoreStr, feedbackStr, nil
}

// scoreFromResponse parses a scoring reply and clamps the score into range.
func scoreFromResponse(raw string) (string, float64, error) {
	scoreStr, feedback, err := parseScoreAndFeedback(raw)
	if err != nil {
		return "", 0, err
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(scoreStr), 64)
	if err != nil {
		return feedback, 0, fmt.Errorf("could not parse score value ('%s') from AI response: %w", scoreStr, err)
	}
	if score > MaxAnswerScore {
		score = MaxAnswerScore
	}
	if score < 0 {
		score = 0
	}
	return feedback, score, nil
}

// resumeAsText returns the resume contents when they can be inlined into a prompt.
func resumeAsText(r ResumeArtifact) (string, bool) {
	if strings.HasPrefix(r.MIMEType, "text/") && utf8.Valid(r.Data) {
		return strings.TrimSpace(string(r.Data)), true
	}
	return "", false
}
