// Package piston runs source code on a Piston execution service.
package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/metrics"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Language is a runtime offered to users, with the name shown on attempts.
type Language struct {
	ID          string
	DisplayName string
}

var Languages = []Language{
	{ID: "javascript", DisplayName: "JavaScript (Node.js)"},
	{ID: "python", DisplayName: "Python (3.8.1)"},
	{ID: "java", DisplayName: "Java (OpenJDK)"},
	{ID: "cpp", DisplayName: "C++ (GCC 9.2.0)"},
}

// DisplayName returns the display name for a language id, or the id itself if unknown.
func DisplayName(id string) string {
	for _, l := range Languages {
		if l.ID == id {
			return l.DisplayName
		}
	}
	return id
}

type Request struct {
	Language string
	Code     string
	Stdin    string
}

type Result struct {
	Stdout   string
	Stderr   string
	Output   string
	ExitCode int
}

// Executor runs one program to completion.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	sem        *semaphore.Weighted
}

func NewClient(cfg *config.Config) *Client {
	rps := cfg.Piston.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}
	parallel := cfg.Piston.MaxParallel
	if parallel <= 0 {
		parallel = 3
	}
	timeout := cfg.Piston.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.Piston.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		sem:     semaphore.NewWeighted(int64(parallel)),
	}
}

type executeFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type executeRequest struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []executeFile `json:"files"`
	Stdin    string        `json:"stdin"`
}

type executeResponse struct {
	Message string `json:"message"`
	Run     struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Output string `json:"output"`
		Code   *int   `json:"code"`
	} `json:"run"`
}

// Execute waits for a rate-limit token and a free slot, then runs the program.
func (c *Client) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for execution slot: %w", err)
	}
	defer c.sem.Release(1)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limit: %w", err)
	}

	body, err := json.Marshal(executeRequest{
		Language: req.Language,
		Version:  "*",
		Files:    []executeFile{{Name: "main", Content: req.Code}},
		Stdin:    req.Stdin,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordCodeExecution(req.Language, "error")
		return nil, fmt.Errorf("piston request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.RecordCodeExecution(req.Language, "error")
		return nil, fmt.Errorf("reading piston response: %w", err)
	}

	var parsed executeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.RecordCodeExecution(req.Language, "error")
		return nil, fmt.Errorf("decoding piston response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordCodeExecution(req.Language, "error")
		log.Warn().Int("status", resp.StatusCode).Str("message", parsed.Message).Msg("Piston rejected execution")
		return nil, fmt.Errorf("piston returned status %d: %s", resp.StatusCode, parsed.Message)
	}

	result := &Result{
		Stdout: parsed.Run.Stdout,
		Stderr: parsed.Run.Stderr,
		Output: parsed.Run.Output,
	}
	if parsed.Run.Code != nil {
		result.ExitCode = *parsed.Run.Code
	}
	metrics.RecordCodeExecution(req.Language, "success")
	return result, nil
}
