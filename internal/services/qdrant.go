package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantService stores embeddings of screened resumes so past candidates
// can be searched semantically. It is strictly auxiliary: screening results
// never depend on it.
type QdrantService interface {
	InitCollection() error
	UpsertCandidateChunk(ctx context.Context, point CandidatePoint) error
	SearchCandidates(ctx context.Context, queryEmbedding []float32, limit int) ([]CandidateHit, error)
	DeleteByScreening(ctx context.Context, screeningID string) error
}

// CandidatePoint is one resume chunk plus its screening metadata.
type CandidatePoint struct {
	ScreeningID  string
	Candidate    string
	OverallScore float64
	Skills       string
	Text         string
	Embedding    []float32
}

// CandidateHit is one search result from the candidate index.
type CandidateHit struct {
	ScreeningID  string
	Candidate    string
	OverallScore float64
	Skills       string
	Text         string
	Similarity   float32
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC client talks to port 6334 unless the URL says otherwise
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 output size
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// UpsertCandidateChunk implements QdrantService.
func (q *qdrantService) UpsertCandidateChunk(ctx context.Context, point CandidatePoint) error {
	pointID := uuid.New()

	p := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(point.Embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"screening_id":  point.ScreeningID,
			"candidate":     point.Candidate,
			"overall_score": point.OverallScore,
			"skills":        point.Skills,
			"text":          point.Text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{p},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchCandidates implements QdrantService.
func (q *qdrantService) SearchCandidates(ctx context.Context, queryEmbedding []float32, limit int) ([]CandidateHit, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var hits []CandidateHit
	for _, point := range searchResult {
		payload := point.Payload

		hit := CandidateHit{
			Similarity:   point.Score,
			ScreeningID:  payloadString(payload, "screening_id"),
			Candidate:    payloadString(payload, "candidate"),
			Skills:       payloadString(payload, "skills"),
			Text:         payloadString(payload, "text"),
			OverallScore: payloadFloat(payload, "overall_score"),
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// DeleteByScreening implements QdrantService. Used when a screening's
// candidates get reindexed.
func (q *qdrantService) DeleteByScreening(ctx context.Context, screeningID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("screening_id", screeningID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}

	return nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if value, ok := payload[key]; ok {
		if val, ok := value.GetKind().(*qdrant.Value_StringValue); ok {
			return val.StringValue
		}
	}
	return ""
}

func payloadFloat(payload map[string]*qdrant.Value, key string) float64 {
	if value, ok := payload[key]; ok {
		if val, ok := value.GetKind().(*qdrant.Value_DoubleValue); ok {
			return val.DoubleValue
		}
	}
	return 0
}
