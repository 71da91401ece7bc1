package main

import (
	"context"
	"encoding/json"
	"log"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

// Rebuilds the Qdrant candidate index from every completed screening in the
// database. Run after wiping the collection or changing the embedding model.
func main() {
	cfg := config.Load()

	zlog, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	docRepo := repositories.NewDocumentRepository(db)

	geminiService, err := services.NewGeminiService(cfg.Gemini, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize Gemini client", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		zlog.Fatal("failed to initialize Qdrant", zap.Error(err))
	}

	if err := qdrantService.InitCollection(); err != nil {
		zlog.Fatal("failed to initialize collection", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()
	index := services.NewCandidateIndex(geminiService, qdrantService, zlog)

	var screenings []models.Screening
	if err := db.Where("status = ?", models.StatusCompleted).Find(&screenings).Error; err != nil {
		zlog.Fatal("failed to load completed screenings", zap.Error(err))
	}

	ctx := context.Background()
	indexed := 0

	for _, screening := range screenings {
		if screening.ReportJSON == nil {
			continue
		}

		var report models.ScreeningReport
		if err := json.Unmarshal([]byte(*screening.ReportJSON), &report); err != nil {
			zlog.Warn("skipping screening with unreadable report",
				zap.String("screening_id", screening.ID.String()), zap.Error(err))
			continue
		}

		if err := qdrantService.DeleteByScreening(ctx, screening.ID.String()); err != nil {
			zlog.Warn("failed to clear old points",
				zap.String("screening_id", screening.ID.String()), zap.Error(err))
		}

		docs, err := docRepo.FindResumesByScreeningID(screening.ID)
		if err != nil {
			zlog.Warn("failed to load resume documents",
				zap.String("screening_id", screening.ID.String()), zap.Error(err))
			continue
		}

		paths := make(map[string]string, len(docs))
		for _, doc := range docs {
			paths[doc.OriginalFileName] = doc.FilePath
		}

		for _, result := range report.Ranked {
			path, ok := paths[result.Resume]
			if !ok {
				continue
			}

			text, err := pdfParser.ExtractText(path)
			if err != nil {
				zlog.Warn("resume no longer readable",
					zap.String("resume", result.Resume), zap.Error(err))
				continue
			}

			if err := index.IndexCandidate(ctx, screening.ID.String(), result, services.CleanText(text)); err != nil {
				zlog.Warn("failed to index candidate",
					zap.String("resume", result.Resume), zap.Error(err))
				continue
			}
			indexed++
		}
	}

	zlog.Info("reindex complete",
		zap.Int("screenings", len(screenings)),
		zap.Int("candidates_indexed", indexed),
	)
}
