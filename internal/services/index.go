package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	indexChunkSize    = 1500
	indexChunkOverlap = 150
	snippetLength     = 240
)

// CandidateIndex embeds screened resumes into the vector store and answers
// semantic queries over past candidates. Indexing is best-effort: failures
// are logged and never fail the screening that produced the candidate.
type CandidateIndex interface {
	IndexCandidate(ctx context.Context, screeningID string, result models.MatchResult, resumeText string) error
	Search(ctx context.Context, query string, limit int) ([]models.CandidateSearchHit, error)
}

type candidateIndex struct {
	llm     GeminiService
	qdrant  QdrantService
	chunker TextChunker
	logger  *zap.Logger
}

func NewCandidateIndex(llm GeminiService, qdrant QdrantService, logger *zap.Logger) CandidateIndex {
	return &candidateIndex{
		llm:     llm,
		qdrant:  qdrant,
		chunker: NewTextChunker(),
		logger:  logger,
	}
}

// IndexCandidate implements CandidateIndex.
func (c *candidateIndex) IndexCandidate(ctx context.Context, screeningID string, result models.MatchResult, resumeText string) error {
	candidate := result.Resume
	if result.Candidate != nil && result.Candidate.Name != "" {
		candidate = result.Candidate.Name
	}

	var skills string
	if result.Candidate != nil {
		skills = strings.Join(result.Candidate.Skills, ", ")
	}

	chunks := c.chunker.ChunkText(resumeText, indexChunkSize, indexChunkOverlap)
	for _, chunk := range chunks {
		embedding, err := c.llm.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed resume chunk: %w", err)
		}

		err = c.qdrant.UpsertCandidateChunk(ctx, CandidatePoint{
			ScreeningID:  screeningID,
			Candidate:    candidate,
			OverallScore: result.OverallScore,
			Skills:       skills,
			Text:         chunk,
			Embedding:    embedding,
		})
		if err != nil {
			return fmt.Errorf("failed to index resume chunk: %w", err)
		}
	}

	c.logger.Debug("candidate indexed",
		zap.String("screening_id", screeningID),
		zap.String("candidate", candidate),
		zap.Int("chunks", len(chunks)),
	)

	return nil
}

// Search implements CandidateIndex.
func (c *candidateIndex) Search(ctx context.Context, query string, limit int) ([]models.CandidateSearchHit, error) {
	embedding, err := c.llm.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := c.qdrant.SearchCandidates(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.CandidateSearchHit, 0, len(hits))
	for _, hit := range hits {
		var skills []string
		if hit.Skills != "" {
			skills = strings.Split(hit.Skills, ", ")
		}

		results = append(results, models.CandidateSearchHit{
			ScreeningID:  hit.ScreeningID,
			Candidate:    hit.Candidate,
			OverallScore: hit.OverallScore,
			Skills:       skills,
			Similarity:   hit.Similarity,
			Snippet:      snippet(hit.Text),
		})
	}

	return results, nil
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "..."
}
