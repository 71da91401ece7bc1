package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type fakeScreeningRepo struct {
	created    []*models.Screening
	screenings map[uuid.UUID]*models.Screening
	failed     map[uuid.UUID]string
}

func (f *fakeScreeningRepo) Create(screening *models.Screening) error {
	f.created = append(f.created, screening)
	return nil
}

func (f *fakeScreeningRepo) FindByID(id uuid.UUID) (*models.Screening, error) {
	if screening, ok := f.screenings[id]; ok {
		return screening, nil
	}
	return nil, fmt.Errorf("screening not found")
}

func (f *fakeScreeningRepo) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	return nil
}
func (f *fakeScreeningRepo) UpdateReport(id uuid.UUID, reportJSON string) error { return nil }

func (f *fakeScreeningRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	if f.failed == nil {
		f.failed = map[uuid.UUID]string{}
	}
	f.failed[id] = errorMsg
	return nil
}

func (f *fakeScreeningRepo) FindPendingJobs(limit int) ([]models.Screening, error) {
	return nil, nil
}

type fakeDocRepo struct {
	created []*models.Document
}

func (f *fakeDocRepo) Create(document *models.Document) error {
	f.created = append(f.created, document)
	return nil
}

func (f *fakeDocRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	return nil, fmt.Errorf("not found")
}

func (f *fakeDocRepo) FindResumesByScreeningID(screeningID uuid.UUID) ([]models.Document, error) {
	return nil, nil
}

func (f *fakeDocRepo) DeleteByScreeningID(screeningID uuid.UUID) error {
	kept := f.created[:0]
	for _, doc := range f.created {
		if doc.ScreeningID != screeningID {
			kept = append(kept, doc)
		}
	}
	f.created = kept
	return nil
}

// fakeStorage saves files with generated names; failAt makes the n-th save
// fail to exercise the abort path.
type fakeStorage struct {
	saved   int
	failAt  int
	deleted []string
}

func (f *fakeStorage) SaveFile(file *multipart.FileHeader, fileType models.DocumentType) (string, string, error) {
	f.saved++
	if f.failAt > 0 && f.saved == f.failAt {
		return "", "", fmt.Errorf("disk full")
	}
	name := fmt.Sprintf("%s_%d.pdf", fileType, f.saved)
	return name, "/uploads/" + name, nil
}

func (f *fakeStorage) GetFilePath(filename string) string { return "/uploads/" + filename }

func (f *fakeStorage) DeleteFile(filename string) error {
	f.deleted = append(f.deleted, filename)
	return nil
}

func (f *fakeStorage) EnsureUploadDir() error { return nil }

type fakePDFParser struct{}

func (f *fakePDFParser) ExtractText(path string) (string, error) { return "text", nil }
func (f *fakePDFParser) ExtractTextFromBytes(data []byte) (string, error) {
	return "jd text from pdf", nil
}

type fakeWorker struct {
	enqueued []uuid.UUID
}

func (f *fakeWorker) Start(ctx context.Context) {}

func (f *fakeWorker) Stop() {}

func (f *fakeWorker) EnqueueJob(screeningID uuid.UUID) {
	f.enqueued = append(f.enqueued, screeningID)
}

func newTestApp(screeningRepo *fakeScreeningRepo, docRepo *fakeDocRepo, storage *fakeStorage, worker *fakeWorker) *fiber.App {
	handler := NewScreeningHandler(
		screeningRepo,
		docRepo,
		storage,
		&fakePDFParser{},
		worker,
		5242880,
	)

	app := fiber.New()
	app.Post("/api/v1/screenings", handler.HandleSubmit)
	app.Get("/api/v1/screenings/:id", handler.HandleGetResult)
	return app
}

func multipartRequest(t *testing.T, jdText string, resumeCount int) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if jdText != "" {
		require.NoError(t, writer.WriteField("job_description", jdText))
	}

	for i := 0; i < resumeCount; i++ {
		part, err := writer.CreateFormFile("resumes", fmt.Sprintf("resume_%d.pdf", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fake resume body"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func multipartRequestWithJDFile(t *testing.T, resumeCount int) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("jd", "role.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake jd body"))
	require.NoError(t, err)

	for i := 0; i < resumeCount; i++ {
		part, err := writer.CreateFormFile("resumes", fmt.Sprintf("resume_%d.pdf", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fake resume body"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleSubmitAcceptsValidRequest(t *testing.T) {
	screeningRepo := &fakeScreeningRepo{}
	docRepo := &fakeDocRepo{}
	worker := &fakeWorker{}
	app := newTestApp(screeningRepo, docRepo, &fakeStorage{}, worker)

	resp, err := app.Test(multipartRequest(t, "Backend engineer JD", 3))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Len(t, screeningRepo.created, 1)
	assert.Equal(t, "Backend engineer JD", screeningRepo.created[0].JDText)
	assert.Equal(t, 3, screeningRepo.created[0].ResumeCount)
	require.Len(t, docRepo.created, 3)
	// Submission order preserved for tie-breaking
	for i, doc := range docRepo.created {
		assert.Equal(t, i, doc.SortOrder)
	}
	assert.Len(t, worker.enqueued, 1)
}

func TestHandleSubmitRejectsZeroResumes(t *testing.T) {
	screeningRepo := &fakeScreeningRepo{}
	worker := &fakeWorker{}
	app := newTestApp(screeningRepo, &fakeDocRepo{}, &fakeStorage{}, worker)

	resp, err := app.Test(multipartRequest(t, "Backend engineer JD", 0))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, string(services.KindCardinality), payload["kind"])

	// Rejected before any processing
	assert.Empty(t, screeningRepo.created)
	assert.Empty(t, worker.enqueued)
}

func TestHandleSubmitRejectsElevenResumes(t *testing.T) {
	screeningRepo := &fakeScreeningRepo{}
	worker := &fakeWorker{}
	app := newTestApp(screeningRepo, &fakeDocRepo{}, &fakeStorage{}, worker)

	resp, err := app.Test(multipartRequest(t, "Backend engineer JD", 11))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, screeningRepo.created)
	assert.Empty(t, worker.enqueued)
}

func TestHandleSubmitRequiresJD(t *testing.T) {
	app := newTestApp(&fakeScreeningRepo{}, &fakeDocRepo{}, &fakeStorage{}, &fakeWorker{})

	resp, err := app.Test(multipartRequest(t, "", 2))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleSubmitStoresJDFileAsDocument(t *testing.T) {
	screeningRepo := &fakeScreeningRepo{}
	docRepo := &fakeDocRepo{}
	worker := &fakeWorker{}
	app := newTestApp(screeningRepo, docRepo, &fakeStorage{}, worker)

	resp, err := app.Test(multipartRequestWithJDFile(t, 2))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Len(t, screeningRepo.created, 1)
	assert.Equal(t, "jd text from pdf", screeningRepo.created[0].JDText)

	require.Len(t, docRepo.created, 3)
	assert.Equal(t, models.DocumentTypeJD, docRepo.created[0].FileType)
	assert.Equal(t, "role.pdf", docRepo.created[0].OriginalFileName)
	assert.Equal(t, models.DocumentTypeResume, docRepo.created[1].FileType)
	assert.Equal(t, models.DocumentTypeResume, docRepo.created[2].FileType)
	assert.Len(t, worker.enqueued, 1)
}

func TestHandleSubmitRollsBackWhenResumeSaveFails(t *testing.T) {
	screeningRepo := &fakeScreeningRepo{}
	docRepo := &fakeDocRepo{}
	storage := &fakeStorage{failAt: 2}
	worker := &fakeWorker{}
	app := newTestApp(screeningRepo, docRepo, storage, worker)

	resp, err := app.Test(multipartRequest(t, "Backend engineer JD", 3))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// The screening must not stay queued: the pending-job poller would pick
	// it up and screen a partial resume set.
	require.Len(t, screeningRepo.created, 1)
	_, markedFailed := screeningRepo.failed[screeningRepo.created[0].ID]
	assert.True(t, markedFailed)

	// Already-persisted documents and files are rolled back
	assert.Empty(t, docRepo.created)
	assert.Contains(t, storage.deleted, "resume_1.pdf")
	assert.Empty(t, worker.enqueued)
}

func TestHandleGetResultCompleted(t *testing.T) {
	report := models.ScreeningReport{
		Ranked: models.RankedResults{
			{Resume: "a.pdf", OverallScore: 82, Candidate: &models.CandidateRecord{Name: "A"}},
			{Resume: "b.pdf", OverallScore: 45, Candidate: &models.CandidateRecord{Name: "B"}},
		},
		Failures: []models.ResumeFailure{
			{Resume: "c.pdf", Stage: "extract", Kind: "extraction_error", Error: "unreadable PDF"},
		},
	}
	reportJSON, err := json.Marshal(report)
	require.NoError(t, err)
	reportStr := string(reportJSON)

	id := uuid.New()
	screeningRepo := &fakeScreeningRepo{screenings: map[uuid.UUID]*models.Screening{
		id: {
			ID:         id,
			Status:     models.StatusCompleted,
			ReportJSON: &reportStr,
		},
	}}
	app := newTestApp(screeningRepo, &fakeDocRepo{}, &fakeStorage{}, &fakeWorker{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+id.String(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result models.ScreeningResultResponse
	require.NoError(t, json.Unmarshal(raw, &result))

	require.Len(t, result.Ranked, 2)
	assert.Equal(t, 1, result.Ranked[0].Rank)
	assert.Equal(t, "Strong Fit", result.Ranked[0].FitLabel)
	assert.Equal(t, "Weak Fit", result.Ranked[1].FitLabel)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "extraction_error", result.Failures[0].Kind)
}

func TestHandleGetResultInvalidID(t *testing.T) {
	app := newTestApp(&fakeScreeningRepo{}, &fakeDocRepo{}, &fakeStorage{}, &fakeWorker{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/screenings/not-a-uuid", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
