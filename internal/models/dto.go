package models

type SubmitResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ResumeCount int    `json:"resume_count"`
}

type RankedEntry struct {
	Rank         int                `json:"rank"`
	Resume       string             `json:"resume"`
	Candidate    *CandidateRecord   `json:"candidate"`
	OverallScore float64            `json:"overall_score"`
	FitLabel     string             `json:"fit_label"`
	Criteria     map[string]float64 `json:"per_criterion_scores"`
	Rationale    string             `json:"rationale"`
	Matches      []string           `json:"matches,omitempty"`
	Gaps         []string           `json:"gaps,omitempty"`
	Suggestions  []string           `json:"suggestions,omitempty"`
}

type ScreeningResultResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Ranked       []RankedEntry   `json:"ranked,omitempty"`
	Failures     []ResumeFailure `json:"failures,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

type CandidateSearchHit struct {
	ScreeningID  string   `json:"screening_id"`
	Candidate    string   `json:"candidate"`
	OverallScore float64  `json:"overall_score"`
	Skills       []string `json:"skills,omitempty"`
	Similarity   float32  `json:"similarity"`
	Snippet      string   `json:"snippet,omitempty"`
}

type CandidateSearchResponse struct {
	Query   string               `json:"query"`
	Results []CandidateSearchHit `json:"results"`
}
