package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/metrics"
	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog/log"
)

const openAIRequestTimeout = 60 * time.Second

type openAILLMService struct {
	client    *openaigo.Client
	modelName string
}

// NewOpenAILLMService talks to any OpenAI-compatible chat completions endpoint.
func NewOpenAILLMService(cfg *config.Config) LLMService {
	modelName := strings.TrimSpace(cfg.LLM.OpenAIModel)
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	if strings.TrimSpace(cfg.LLM.OpenAIApiKey) == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set. Falling back to catalog questions and no AI feedback.")
		return &openAILLMService{modelName: modelName}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.LLM.OpenAIApiKey)),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
		option.WithMaxRetries(2),
		option.WithRequestTimeout(openAIRequestTimeout),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.LLM.OpenAIBaseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openaigo.NewClient(opts...)
	return &openAILLMService{client: &client, modelName: modelName}
}

func (s *openAILLMService) Provider() string { return "openai" }
func (s *openAILLMService) Model() string    { return s.modelName }

func (s *openAILLMService) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error) {
	if s.client == nil {
		return nil, ErrLLMUnavailable
	}
	resumeText, inline := resumeAsText(req.Resume)
	if !inline {
		// chat completions cannot read binary attachments
		resumeText = fmt.Sprintf("(resume %q uploaded as %s; contents not available, ask general questions for the category)",
			req.Resume.FileName, req.Resume.MIMEType)
	}
	text, err := s.complete(ctx, "generate_questions",
		"You write concise spoken interview questions.",
		buildQuestionPrompt(req, resumeText))
	if err != nil {
		return nil, err
	}
	return parseQuestionList(text, req.Count), nil
}

func (s *openAILLMService) ScoreAnswer(ctx context.Context, question, answer string) (string, float64, error) {
	if s.client == nil {
		return "", 0, ErrLLMUnavailable
	}
	text, err := s.complete(ctx, "score_answer",
		"You are a fair and specific interview coach.",
		buildScoringPrompt(question, answer))
	if err != nil {
		return "", 0, err
	}
	feedback, score, err := scoreFromResponse(text)
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", text).Msg("Failed to parse score and feedback from OpenAI response")
		return "", 0, err
	}
	return feedback, score, nil
}

func (s *openAILLMService) complete(ctx context.Context, operation, system, user string) (string, error) {
	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(s.modelName),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(system),
			openaigo.UserMessage(user),
		},
	})
	if err != nil {
		metrics.RecordLLMRequest("openai", operation, "error", time.Since(start))
		log.Error().Err(err).Str("operation", operation).Msg("OpenAI API error")
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}
	metrics.RecordLLMRequest("openai", operation, "success", time.Since(start))

	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned empty choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai returned no text content")
	}
	return content, nil
}
