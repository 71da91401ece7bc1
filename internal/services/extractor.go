package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

// StructuredExtractor turns raw resume text into a candidate record via one
// LLM call with a fixed prompt. A response that fails schema validation is
// re-prompted exactly once with the malformed output quoted back; a second
// failure surfaces as a parse error for that resume only.
type StructuredExtractor interface {
	ExtractRecord(ctx context.Context, resumeText, fallbackName string) (*models.CandidateRecord, error)
}

type geminiExtractor struct {
	llm        GeminiService
	prompts    *PromptBuilder
	maxRetries int
	logger     *zap.Logger
}

func NewStructuredExtractor(llm GeminiService, maxRetries int, logger *zap.Logger) StructuredExtractor {
	return &geminiExtractor{
		llm:        llm,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// ExtractRecord implements StructuredExtractor.
func (e *geminiExtractor) ExtractRecord(ctx context.Context, resumeText, fallbackName string) (*models.CandidateRecord, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("empty resume text")
	}

	prompt := e.prompts.BuildExtractionPrompt(resumeText)

	var record models.CandidateRecord
	err := callWithCorrection(ctx, e.llm, e.prompts, e.logger, prompt, e.maxRetries, func(raw string) error {
		return decodeCandidateRecord(raw, &record)
	})
	if err != nil {
		return nil, err
	}

	if record.Name == "" {
		record.Name = fallbackName
	}

	return &record, nil
}

func decodeCandidateRecord(raw string, record *models.CandidateRecord) error {
	var decoded models.CandidateRecord
	if err := json.Unmarshal([]byte(extractJSON(raw)), &decoded); err != nil {
		return fmt.Errorf("failed to unmarshal candidate record: %w", err)
	}

	if len(decoded.Skills) == 0 && len(decoded.Experience) == 0 && len(decoded.Education) == 0 {
		return fmt.Errorf("candidate record is empty: no skills, experience or education")
	}

	*record = decoded
	return nil
}

// callWithCorrection runs one LLM call and validates the response with
// decode. A malformed response gets exactly one corrective re-prompt before
// the validation error is returned. Transport-level failures are already
// retried inside the client.
func callWithCorrection(
	ctx context.Context,
	llm GeminiService,
	prompts *PromptBuilder,
	logger *zap.Logger,
	prompt string,
	maxTransportRetries int,
	decode func(raw string) error,
) error {
	raw, err := llm.GenerateTextWithRetry(ctx, prompt, maxTransportRetries)
	if err != nil {
		return err
	}

	parseErr := decode(raw)
	if parseErr == nil {
		return nil
	}

	logger.Warn("malformed LLM response, re-prompting once",
		zap.Error(parseErr),
		zap.Int("response_length", len(raw)),
	)

	corrective := prompts.BuildCorrectivePrompt(prompt, raw, parseErr)
	raw, err = llm.GenerateTextWithRetry(ctx, corrective, maxTransportRetries)
	if err != nil {
		return err
	}

	if parseErr = decode(raw); parseErr != nil {
		return fmt.Errorf("response still malformed after corrective re-prompt: %w", parseErr)
	}

	return nil
}

// extractJSON strips markdown fences and surrounding prose from an LLM
// response that should contain a single JSON object or array.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
