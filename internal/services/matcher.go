package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

// Criterion weights for the composite score. Skills and experience carry
// 40% each, education 20%. The composite is always computed here from the
// per-criterion values, never taken from the LLM, so a fixed set of
// criterion scores ranks identically on every run.
const (
	WeightSkills     = 0.40
	WeightExperience = 0.40
	WeightEducation  = 0.20
)

// Candidates below this score get improvement suggestions derived from
// their gaps when the LLM supplied none.
const suggestionThreshold = 50

// Matcher scores one candidate record against the job description. It runs
// two LLM passes: a matching pass producing aligned qualifications and gaps,
// then a scoring pass producing per-criterion scores and rationale. Each
// pass re-prompts once on malformed output before failing.
type Matcher interface {
	Match(ctx context.Context, jd models.JobDescription, record *models.CandidateRecord) (*models.MatchResult, error)
}

type geminiMatcher struct {
	llm        GeminiService
	prompts    *PromptBuilder
	maxRetries int
	logger     *zap.Logger
}

func NewMatcher(llm GeminiService, maxRetries int, logger *zap.Logger) Matcher {
	return &geminiMatcher{
		llm:        llm,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

type matchingResponse struct {
	Matches []string `json:"matches"`
	Gaps    []string `json:"gaps"`
}

type scoringResponse struct {
	SkillsMatch         *float64 `json:"skills_match"`
	ExperienceRelevance *float64 `json:"experience_relevance"`
	EducationFit        *float64 `json:"education_fit"`
	Reasons             []string `json:"reasons"`
	Suggestions         []string `json:"suggestions"`
}

// Match implements Matcher.
func (m *geminiMatcher) Match(ctx context.Context, jd models.JobDescription, record *models.CandidateRecord) (*models.MatchResult, error) {
	if record == nil {
		return nil, fmt.Errorf("candidate record is required")
	}

	// Pass 1: aligned qualifications and gaps
	var matching matchingResponse
	matchPrompt := m.prompts.BuildMatchingPrompt(jd.RawText, record)
	err := callWithCorrection(ctx, m.llm, m.prompts, m.logger, matchPrompt, m.maxRetries, func(raw string) error {
		return decodeMatchingResponse(raw, &matching)
	})
	if err != nil {
		return nil, err
	}

	// Pass 2: per-criterion scores
	var scoring scoringResponse
	scorePrompt := m.prompts.BuildScoringPrompt(jd.RawText, record, matching.Matches, matching.Gaps)
	err = callWithCorrection(ctx, m.llm, m.prompts, m.logger, scorePrompt, m.maxRetries, func(raw string) error {
		return decodeScoringResponse(raw, &scoring)
	})
	if err != nil {
		return nil, err
	}

	criteria := map[string]float64{
		models.CriterionSkills:     *scoring.SkillsMatch,
		models.CriterionExperience: *scoring.ExperienceRelevance,
		models.CriterionEducation:  *scoring.EducationFit,
	}

	result := &models.MatchResult{
		Candidate:    record,
		OverallScore: ComputeOverallScore(criteria),
		Criteria:     criteria,
		Rationale:    strings.Join(scoring.Reasons, "\n"),
		Matches:      matching.Matches,
		Gaps:         matching.Gaps,
		Suggestions:  scoring.Suggestions,
	}

	if result.OverallScore < suggestionThreshold && len(result.Suggestions) == 0 {
		result.Suggestions = suggestionsFromGaps(matching.Gaps)
	}

	return result, nil
}

// decodeMatchingResponse assigns only on a fully successful decode, so a
// partially-decoded malformed response cannot leak fields into the result of
// the corrective pass.
func decodeMatchingResponse(raw string, matching *matchingResponse) error {
	var decoded matchingResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &decoded); err != nil {
		return fmt.Errorf("failed to unmarshal matching response: %w", err)
	}

	*matching = decoded
	return nil
}

func decodeScoringResponse(raw string, scoring *scoringResponse) error {
	var decoded scoringResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &decoded); err != nil {
		return fmt.Errorf("failed to unmarshal scoring response: %w", err)
	}

	for name, score := range map[string]*float64{
		models.CriterionSkills:     decoded.SkillsMatch,
		models.CriterionExperience: decoded.ExperienceRelevance,
		models.CriterionEducation:  decoded.EducationFit,
	} {
		if score == nil {
			return fmt.Errorf("missing criterion score %q", name)
		}
		if math.IsNaN(*score) || *score < 0 || *score > 100 {
			return fmt.Errorf("criterion score %q out of range: %v", name, *score)
		}
	}

	*scoring = decoded
	return nil
}

// ComputeOverallScore derives the composite score from per-criterion scores
// with the fixed weights, clamped to [0,100].
func ComputeOverallScore(criteria map[string]float64) float64 {
	score := WeightSkills*criteria[models.CriterionSkills] +
		WeightExperience*criteria[models.CriterionExperience] +
		WeightEducation*criteria[models.CriterionEducation]

	return math.Min(100, math.Max(0, score))
}

func suggestionsFromGaps(gaps []string) []string {
	if len(gaps) == 0 {
		return []string{"Consider gaining more relevant experience"}
	}

	if len(gaps) > 3 {
		gaps = gaps[:3]
	}

	suggestions := make([]string, 0, len(gaps))
	for _, gap := range gaps {
		suggestions = append(suggestions, "Develop skills/experience in: "+gap)
	}
	return suggestions
}
