package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/config"
)

// GeminiService is the single process-wide LLM client. Create it once at
// startup and inject it everywhere; the underlying genai client is safe for
// concurrent use.
type GeminiService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	embedModel  string
	temperature float32
	callTimeout time.Duration
	logger      *zap.Logger
}

func NewGeminiService(cfg config.GeminiConfig, logger *zap.Logger) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   cfg.Model,
		embedModel:  cfg.EmbedModel,
		temperature: cfg.Temperature,
		callTimeout: cfg.CallTimeout,
		logger:      logger.With(zap.String("ai_model", cfg.Model)),
	}, nil
}

// GenerateText implements GeminiService. Every call carries the configured
// deadline so a hung request surfaces as context.DeadlineExceeded instead of
// blocking its worker.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	temperature := g.temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genCfg)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("gemini call deadline exceeded: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", len(text)),
	)

	return text, nil
}

// GenerateTextWithRetry retries transport-level failures. Malformed but
// successfully returned responses are not its concern; the extraction and
// matching stages handle those with a corrective re-prompt.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateText(ctx, prompt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxRetries {
			g.logger.Warn("gemini call failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate overlong input, the embedding model caps its context
	if len(text) > 40000 {
		text = text[:40000]
	}

	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
