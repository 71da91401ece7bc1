package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

// Cardinality bounds for one screening. The cap also bounds the worker pool,
// which keeps concurrent LLM traffic within the API's practical rate limits.
const (
	MinResumes = 1
	MaxResumes = 10
)

// ResumeFile points at one stored resume PDF.
type ResumeFile struct {
	Name string
	Path string
}

// Screener runs the full pipeline for one screening: per-resume
// extract -> parse -> match on a bounded pool, then ranking. A resume
// failing at any stage never aborts the others; it lands in the failure
// report instead.
type Screener interface {
	Screen(ctx context.Context, jd models.JobDescription, resumes []ResumeFile) (*models.ScreeningReport, error)
}

type screener struct {
	pdfParser PDFParserService
	extractor StructuredExtractor
	matcher   Matcher
	logger    *zap.Logger
}

func NewScreener(
	pdfParser PDFParserService,
	extractor StructuredExtractor,
	matcher Matcher,
	logger *zap.Logger,
) Screener {
	return &screener{
		pdfParser: pdfParser,
		extractor: extractor,
		matcher:   matcher,
		logger:    logger,
	}
}

type resumeOutcome struct {
	result  *models.MatchResult
	failure *StageError
}

// Screen implements Screener.
func (s *screener) Screen(ctx context.Context, jd models.JobDescription, resumes []ResumeFile) (*models.ScreeningReport, error) {
	if len(resumes) < MinResumes || len(resumes) > MaxResumes {
		return nil, ErrCardinality
	}

	jobs := make(chan int)
	outcomes := make([]resumeOutcome, len(resumes))

	workers := len(resumes)
	if workers > MaxResumes {
		workers = MaxResumes
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = s.processResume(ctx, jd, resumes[idx])
			}
		}()
	}

	for idx := range resumes {
		jobs <- idx
	}
	close(jobs)

	// Ranking only runs once every resume has reached a terminal state
	wg.Wait()

	successes := make([]models.MatchResult, 0, len(resumes))
	failures := make([]models.ResumeFailure, 0)

	for _, outcome := range outcomes {
		if outcome.failure != nil {
			failures = append(failures, models.ResumeFailure{
				Resume: outcome.failure.Resume,
				Stage:  outcome.failure.Stage,
				Kind:   string(outcome.failure.Kind),
				Error:  outcome.failure.Err.Error(),
			})
			continue
		}
		successes = append(successes, *outcome.result)
	}

	return &models.ScreeningReport{
		Ranked:   Rank(successes),
		Failures: failures,
	}, nil
}

func (s *screener) processResume(ctx context.Context, jd models.JobDescription, resume ResumeFile) resumeOutcome {
	logger := s.logger.With(zap.String("resume", resume.Name))

	text, err := s.pdfParser.ExtractText(resume.Path)
	if err != nil {
		logger.Warn("resume extraction failed", zap.Error(err))
		return resumeOutcome{failure: NewStageError(KindExtraction, resume.Name, StageExtract, err)}
	}

	record, err := s.extractor.ExtractRecord(ctx, CleanText(text), candidateNameFromFile(resume.Name))
	if err != nil {
		logger.Warn("structured extraction failed", zap.Error(err))
		return resumeOutcome{failure: NewStageError(classifyLLMError(err, KindParse), resume.Name, StageParse, err)}
	}

	result, err := s.matcher.Match(ctx, jd, record)
	if err != nil {
		logger.Warn("matching failed", zap.Error(err))
		return resumeOutcome{failure: NewStageError(classifyLLMError(err, KindScoring), resume.Name, StageMatch, err)}
	}

	result.Resume = resume.Name

	logger.Info("resume screened",
		zap.Float64("overall_score", result.OverallScore),
		zap.String("fit", models.FitLabel(result.OverallScore)),
	)

	return resumeOutcome{result: result}
}

// classifyLLMError maps a timed-out call to the timeout kind; everything
// else keeps the stage's own kind.
func classifyLLMError(err error, fallback ErrorKind) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return fallback
}

func candidateNameFromFile(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
