package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

// Worker consumes queued screenings and runs them through the pipeline.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(screeningID uuid.UUID)
}

type worker struct {
	screeningRepo repositories.ScreeningRepository
	docRepo       repositories.DocumentRepository
	screener      Screener
	pdfParser     PDFParserService
	index         CandidateIndex
	logger        *zap.Logger
	jobQueue      chan uuid.UUID
	concurrency   int
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

func NewWorker(
	screeningRepo repositories.ScreeningRepository,
	docRepo repositories.DocumentRepository,
	screener Screener,
	pdfParser PDFParserService,
	index CandidateIndex,
	concurrency int,
	logger *zap.Logger,
) Worker {
	return &worker{
		screeningRepo: screeningRepo,
		docRepo:       docRepo,
		screener:      screener,
		pdfParser:     pdfParser,
		index:         index,
		logger:        logger,
		jobQueue:      make(chan uuid.UUID, 100),
		concurrency:   concurrency,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting screening workers", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("screening workers stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(screeningID uuid.UUID) {
	select {
	case w.jobQueue <- screeningID:
		w.logger.Debug("screening enqueued", zap.String("screening_id", screeningID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue screening",
			zap.String("screening_id", screeningID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case screeningID := <-w.jobQueue:
			logger := w.logger.With(
				zap.Int("worker_id", workerID),
				zap.String("screening_id", screeningID.String()),
			)
			if err := w.processScreening(ctx, screeningID); err != nil {
				logger.Error("screening failed", zap.Error(err))
			} else {
				logger.Info("screening completed")
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.screeningRepo.FindPendingJobs(10)
			if err != nil {
				w.logger.Warn("failed to fetch pending screenings", zap.Error(err))
				continue
			}

			for _, screening := range pending {
				w.EnqueueJob(screening.ID)
			}
		}
	}
}

func (w *worker) processScreening(ctx context.Context, screeningID uuid.UUID) error {
	if err := w.screeningRepo.UpdateStatus(screeningID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	screening, err := w.screeningRepo.FindByID(screeningID)
	if err != nil {
		w.screeningRepo.UpdateError(screeningID, err.Error())
		return fmt.Errorf("failed to load screening: %w", err)
	}

	docs, err := w.docRepo.FindResumesByScreeningID(screeningID)
	if err != nil {
		w.screeningRepo.UpdateError(screeningID, err.Error())
		return fmt.Errorf("failed to load resume documents: %w", err)
	}

	resumes := make([]ResumeFile, 0, len(docs))
	resumePaths := make(map[string]string, len(docs))
	for _, doc := range docs {
		resumes = append(resumes, ResumeFile{Name: doc.OriginalFileName, Path: doc.FilePath})
		resumePaths[doc.OriginalFileName] = doc.FilePath
	}

	jd := models.JobDescription{RawText: screening.JDText}

	report, err := w.screener.Screen(ctx, jd, resumes)
	if err != nil {
		w.screeningRepo.UpdateError(screeningID, err.Error())
		return fmt.Errorf("pipeline failed: %w", err)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		w.screeningRepo.UpdateError(screeningID, err.Error())
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := w.screeningRepo.UpdateReport(screeningID, string(reportJSON)); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	// Best-effort: feed successful candidates into the search index. An
	// indexing failure never fails the completed screening.
	w.indexCandidates(ctx, screeningID, report, resumePaths)

	return nil
}

func (w *worker) indexCandidates(ctx context.Context, screeningID uuid.UUID, report *models.ScreeningReport, resumePaths map[string]string) {
	for _, result := range report.Ranked {
		path, ok := resumePaths[result.Resume]
		if !ok {
			continue
		}

		text, err := w.pdfParser.ExtractText(path)
		if err != nil {
			w.logger.Warn("skipping index, resume no longer readable",
				zap.String("resume", result.Resume), zap.Error(err))
			continue
		}

		if err := w.index.IndexCandidate(ctx, screeningID.String(), result, CleanText(text)); err != nil {
			w.logger.Warn("failed to index candidate",
				zap.String("resume", result.Resume), zap.Error(err))
		}
	}
}
