package services

import (
	"context"
	"fmt"
	"sync"

	"alfredoptarigan/resume-screener/internal/models"
)

// fakeGemini returns scripted responses in order. An entry with a non-nil
// err simulates a transport failure.
type fakeGemini struct {
	mu      sync.Mutex
	script  []fakeReply
	prompts []string
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeGemini) next(prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if len(f.script) == 0 {
		return "", fmt.Errorf("fakeGemini: script exhausted after %d calls", len(f.prompts))
	}

	reply := f.script[0]
	f.script = f.script[1:]
	return reply.text, reply.err
}

func (f *fakeGemini) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.next(prompt)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error) {
	return f.next(prompt)
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeParser serves canned text per path.
type fakeParser struct {
	texts map[string]string
	errs  map[string]error
}

func (f *fakeParser) ExtractText(path string) (string, error) {
	if err, ok := f.errs[path]; ok {
		return "", err
	}
	if text, ok := f.texts[path]; ok {
		return text, nil
	}
	return "", fmt.Errorf("no text for %s", path)
}

func (f *fakeParser) ExtractTextFromBytes(data []byte) (string, error) {
	return "", fmt.Errorf("not implemented")
}

// fakeExtractor counts invocations and can fail for chosen resume texts.
type fakeExtractor struct {
	mu    sync.Mutex
	count int
	fail  map[string]error
}

func (f *fakeExtractor) ExtractRecord(ctx context.Context, resumeText, fallbackName string) (*models.CandidateRecord, error) {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()

	if err, ok := f.fail[resumeText]; ok {
		return nil, err
	}

	return &models.CandidateRecord{
		Name:   fallbackName,
		Skills: []string{"Go"},
	}, nil
}

func (f *fakeExtractor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// fakeMatcher counts invocations and returns a fixed score per candidate
// name, or an error.
type fakeMatcher struct {
	mu     sync.Mutex
	count  int
	scores map[string]float64
	fail   map[string]error
}

func (f *fakeMatcher) Match(ctx context.Context, jd models.JobDescription, record *models.CandidateRecord) (*models.MatchResult, error) {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()

	if err, ok := f.fail[record.Name]; ok {
		return nil, err
	}

	score := f.scores[record.Name]
	return &models.MatchResult{
		Candidate:    record,
		OverallScore: score,
		Criteria: map[string]float64{
			models.CriterionSkills:     score,
			models.CriterionExperience: score,
			models.CriterionEducation:  score,
		},
	}, nil
}

func (f *fakeMatcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}
