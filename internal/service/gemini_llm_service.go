package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/metrics"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

type geminiLLMService struct {
	client    *genai.GenerativeModel
	modelName string
}

func NewGeminiLLMService(cfg *config.Config) (LLMService, error) {
	modelName := cfg.LLM.GeminiModel
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if cfg.LLM.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Falling back to catalog questions and no AI feedback.")
		return &geminiLLMService{modelName: modelName}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.LLM.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiLLMService{client: client.GenerativeModel(modelName), modelName: modelName}, nil
}

func (s *geminiLLMService) Provider() string { return "gemini" }
func (s *geminiLLMService) Model() string    { return s.modelName }

func (s *geminiLLMService) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error) {
	if s.client == nil {
		return nil, ErrLLMUnavailable
	}

	var parts []genai.Part
	resumeText, inline := resumeAsText(req.Resume)
	if !inline && len(req.Resume.Data) > 0 {
		// Gemini reads PDFs and images natively
		parts = append(parts, genai.Blob{MIMEType: req.Resume.MIMEType, Data: req.Resume.Data})
	}
	parts = append(parts, genai.Text(buildQuestionPrompt(req, resumeText)))

	text, err := s.generate(ctx, "generate_questions", parts...)
	if err != nil {
		return nil, err
	}
	return parseQuestionList(text, req.Count), nil
}

func (s *geminiLLMService) ScoreAnswer(ctx context.Context, question, answer string) (string, float64, error) {
	if s.client == nil {
		return "", 0, ErrLLMUnavailable
	}
	text, err := s.generate(ctx, "score_answer", genai.Text(buildScoringPrompt(question, answer)))
	if err != nil {
		return "", 0, err
	}
	feedback, score, err := scoreFromResponse(text)
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", text).Msg("Failed to parse score and feedback from Gemini response")
		return "", 0, err
	}
	return feedback, score, nil
}

func (s *geminiLLMService) generate(ctx context.Context, operation string, parts ...genai.Part) (string, error) {
	start := time.Now()
	resp, err := s.client.GenerateContent(ctx, parts...)
	if err != nil {
		metrics.RecordLLMRequest("gemini", operation, "error", time.Since(start))
		log.Error().Err(err).Str("operation", operation).Msg("Gemini API error")
		return "", fmt.Errorf("gemini %s: %w", operation, err)
	}
	metrics.RecordLLMRequest("gemini", operation, "success", time.Since(start))

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return b.String(), nil
}
