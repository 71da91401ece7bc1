package models

// JobDescription is the hiring requirements text a screening runs against.
// It is read-only once the screening has been submitted.
type JobDescription struct {
	RawText string `json:"raw_text"`
}

type ExperienceEntry struct {
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	Description string `json:"description,omitempty"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
}

// CandidateRecord is the structured representation of one resume, produced
// by the structured extraction stage. Immutable after creation.
type CandidateRecord struct {
	Name       string            `json:"name"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
}

// Fixed matching criteria. The matcher prompts for a 0-100 score on each and
// the composite score is computed locally from these, never taken from the
// LLM, so the same criterion scores always rank the same way.
const (
	CriterionSkills     = "skills_match"
	CriterionExperience = "experience_relevance"
	CriterionEducation  = "education_fit"
)

// MatchResult is the scored comparison of one candidate against the JD.
type MatchResult struct {
	Resume       string             `json:"resume"`
	Candidate    *CandidateRecord   `json:"candidate"`
	OverallScore float64            `json:"overall_score"`
	Criteria     map[string]float64 `json:"per_criterion_scores"`
	Rationale    string             `json:"rationale"`
	Matches      []string           `json:"matches,omitempty"`
	Gaps         []string           `json:"gaps,omitempty"`
	Suggestions  []string           `json:"suggestions,omitempty"`
}

// FitLabel buckets an overall score the way the results table displays it.
func FitLabel(score float64) string {
	switch {
	case score >= 70:
		return "Strong Fit"
	case score >= 50:
		return "Moderate Fit"
	default:
		return "Weak Fit"
	}
}

// RankedResults is ordered by overall score descending; equal scores keep
// their original submission order.
type RankedResults []MatchResult

// ResumeFailure reports one resume that dropped out of the pipeline, with
// the stage it failed at and the error kind.
type ResumeFailure struct {
	Resume string `json:"resume"`
	Stage  string `json:"stage"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

// ScreeningReport is the terminal artifact of one screening run: ranked
// successes plus every per-resume failure. len(Ranked)+len(Failures) always
// equals the number of submitted resumes.
type ScreeningReport struct {
	Ranked   RankedResults   `json:"ranked"`
	Failures []ResumeFailure `json:"failures"`
}
