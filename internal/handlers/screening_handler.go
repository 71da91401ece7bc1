package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type ScreeningHandler struct {
	screeningRepo  repositories.ScreeningRepository
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	pdfParser      services.PDFParserService
	worker         services.Worker
	maxFileSize    int64
}

func NewScreeningHandler(
	screeningRepo repositories.ScreeningRepository,
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	worker services.Worker,
	maxFileSize int64,
) *ScreeningHandler {
	return &ScreeningHandler{
		screeningRepo:  screeningRepo,
		docRepo:        docRepo,
		storageService: storageService,
		pdfParser:      pdfParser,
		worker:         worker,
		maxFileSize:    maxFileSize,
	}
}

// HandleSubmit handles POST /screenings. Cardinality and JD validation run
// here, before anything is stored or queued: a rejected request does no
// per-resume processing at all.
func (h *ScreeningHandler) HandleSubmit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	jdText, jdFile, err := h.resolveJD(form)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resumeFiles := form.File["resumes"]
	if len(resumeFiles) < services.MinResumes || len(resumeFiles) > services.MaxResumes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.ErrCardinality.Error(),
			"kind":  string(services.KindCardinality),
		})
	}

	for _, file := range resumeFiles {
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("resume %q too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}
	}

	screening := &models.Screening{
		ID:          uuid.New(),
		Status:      models.StatusQueued,
		JDText:      jdText,
		ResumeCount: len(resumeFiles),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.screeningRepo.Create(screening); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create screening",
		})
	}

	var savedFiles []string

	if jdFile != nil {
		filename, err := h.storeDocument(screening.ID, jdFile, models.DocumentTypeJD, 0)
		if err != nil {
			h.abortSubmission(screening.ID, savedFiles, err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to store JD file: %v", err),
			})
		}
		savedFiles = append(savedFiles, filename)
	}

	for idx, file := range resumeFiles {
		filename, err := h.storeDocument(screening.ID, file, models.DocumentTypeResume, idx)
		if err != nil {
			h.abortSubmission(screening.ID, savedFiles, err.Error())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to store resume %q: %v", file.Filename, err),
			})
		}
		savedFiles = append(savedFiles, filename)
	}

	h.worker.EnqueueJob(screening.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.SubmitResponse{
		ID:          screening.ID.String(),
		Status:      string(models.StatusQueued),
		ResumeCount: screening.ResumeCount,
	})
}

// HandleGetResult handles GET /screenings/:id.
func (h *ScreeningHandler) HandleGetResult(c *fiber.Ctx) error {
	idParam := c.Params("id")
	screeningID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	screening, err := h.screeningRepo.FindByID(screeningID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Screening not found",
		})
	}

	response := models.ScreeningResultResponse{
		ID:     screening.ID.String(),
		Status: string(screening.Status),
	}

	if screening.Status == models.StatusCompleted && screening.ReportJSON != nil {
		var report models.ScreeningReport
		if err := json.Unmarshal([]byte(*screening.ReportJSON), &report); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to decode stored report",
			})
		}

		response.Ranked = rankedEntries(report.Ranked)
		response.Failures = report.Failures
	}

	if screening.Status == models.StatusFailed {
		response.ErrorMessage = screening.ErrorMessage
	}

	return c.JSON(response)
}

// storeDocument saves one uploaded file to disk and records it. It returns
// the generated filename so an aborted submission can remove it again.
func (h *ScreeningHandler) storeDocument(screeningID uuid.UUID, file *multipart.FileHeader, fileType models.DocumentType, sortOrder int) (string, error) {
	filename, filePath, err := h.storageService.SaveFile(file, fileType)
	if err != nil {
		return "", err
	}

	doc := models.Document{
		ID:               uuid.New(),
		ScreeningID:      screeningID,
		Filename:         filename,
		OriginalFileName: file.Filename,
		FileType:         fileType,
		FilePath:         filePath,
		SortOrder:        sortOrder,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(&doc); err != nil {
		h.storageService.DeleteFile(filename)
		return "", fmt.Errorf("failed to save document record: %w", err)
	}

	return filename, nil
}

// abortSubmission rolls back a half-stored submission. The screening is
// marked failed, never left queued: the pending-job poller must not hand a
// partial resume set to the worker after the client was told the request
// failed.
func (h *ScreeningHandler) abortSubmission(screeningID uuid.UUID, savedFiles []string, cause string) {
	for _, filename := range savedFiles {
		h.storageService.DeleteFile(filename)
	}
	h.docRepo.DeleteByScreeningID(screeningID)
	h.screeningRepo.UpdateError(screeningID, cause)
}

// resolveJD accepts either a pasted job_description text field or a jd PDF
// upload, in that order of precedence. When the JD arrives as a PDF, the
// file header is returned as well so it gets persisted with the screening.
func (h *ScreeningHandler) resolveJD(form *multipart.Form) (string, *multipart.FileHeader, error) {
	if values, ok := form.Value["job_description"]; ok && len(values) > 0 {
		if text := strings.TrimSpace(values[0]); text != "" {
			return text, nil, nil
		}
	}

	jdFiles, ok := form.File["jd"]
	if !ok || len(jdFiles) == 0 {
		return "", nil, fmt.Errorf("a job description is required: provide 'job_description' text or a 'jd' PDF")
	}

	jdFile := jdFiles[0]
	if jdFile.Size > h.maxFileSize {
		return "", nil, fmt.Errorf("JD file too large. Max size: %d bytes", h.maxFileSize)
	}

	src, err := jdFile.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open JD file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read JD file: %w", err)
	}

	text, err := h.pdfParser.ExtractTextFromBytes(data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract JD text: %w", err)
	}

	return services.CleanText(text), jdFile, nil
}

func rankedEntries(ranked models.RankedResults) []models.RankedEntry {
	entries := make([]models.RankedEntry, 0, len(ranked))
	for idx, result := range ranked {
		entries = append(entries, models.RankedEntry{
			Rank:         idx + 1,
			Resume:       result.Resume,
			Candidate:    result.Candidate,
			OverallScore: result.OverallScore,
			FitLabel:     models.FitLabel(result.OverallScore),
			Criteria:     result.Criteria,
			Rationale:    result.Rationale,
			Matches:      result.Matches,
			Gaps:         result.Gaps,
			Suggestions:  result.Suggestions,
		})
	}
	return entries
}
