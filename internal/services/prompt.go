package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt creates the prompt that turns raw resume text into a
// structured candidate record.
func (pb *PromptBuilder) BuildExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume parser. Extract key information from the resume text and return it as JSON.

Extract the following:
- name: The candidate's full name (empty string if not stated)
- skills: List of technical and professional skills
- experience: List of work experiences with title, duration and a short description
- education: List of educational qualifications with degree and institution

Return ONLY valid JSON in this exact format:
{
  "name": "Full Name",
  "skills": ["skill1", "skill2"],
  "experience": [
    {"title": "Job Title", "duration": "Years", "description": "What they did"}
  ],
  "education": [
    {"degree": "Degree Name", "institution": "School Name"}
  ]
}

Do not include explanations, markdown, or text before or after the JSON.

Resume text:
%s`, resumeText)
}

// BuildMatchingPrompt creates the prompt comparing a candidate record to the
// job description, producing aligned qualifications and gaps.
func (pb *PromptBuilder) BuildMatchingPrompt(jd string, record *models.CandidateRecord) string {
	return fmt.Sprintf(`You are an expert recruiter. Compare the candidate's resume data to the job description.

Identify:
1. Matching qualifications (skills, experience, education that align)
2. Gaps (missing requirements from the JD)

Return ONLY valid JSON in this format:
{
  "matches": ["match1", "match2"],
  "gaps": ["gap1", "gap2"]
}

Job Description:
%s

Candidate Data:
%s`, jd, formatRecord(record))
}

// BuildScoringPrompt creates the prompt that scores the candidate per
// criterion. The composite score is computed locally from these values,
// which is why the prompt never asks for a total.
func (pb *PromptBuilder) BuildScoringPrompt(jd string, record *models.CandidateRecord, matches, gaps []string) string {
	return fmt.Sprintf(`You are an expert recruiter. Score the candidate's fit for the job on each criterion from 0 to 100.

Criteria:
- skills_match: alignment of the candidate's skills with the job requirements
- experience_relevance: relevance of work experience to the role
- education_fit: how well the education matches the requirements

Return ONLY valid JSON in this format:
{
  "skills_match": 80,
  "experience_relevance": 75,
  "education_fit": 60,
  "reasons": [
    "Strong match: 8/10 required skills present",
    "Relevant experience in similar role",
    "Gap: Missing certification X"
  ],
  "suggestions": ["Acquire skill Y", "Gain experience in Z"]
}

Provide 3-5 concise reasons and suggestions.

Job Description:
%s

Matches:
%s

Gaps:
%s

Candidate Data:
%s`, jd, bulletList(matches), bulletList(gaps), formatRecord(record))
}

// BuildCorrectivePrompt re-prompts after a malformed response, quoting the
// bad output and the validation error. Used at most once per call site.
func (pb *PromptBuilder) BuildCorrectivePrompt(originalPrompt, badResponse string, parseErr error) string {
	return fmt.Sprintf(`%s

Your previous response could not be parsed: %v

Previous response:
%s

Respond again with ONLY the valid JSON object in the required format. No markdown, no commentary.`,
		originalPrompt, parseErr, badResponse)
}

func formatRecord(record *models.CandidateRecord) string {
	var sb strings.Builder

	if record.Name != "" {
		sb.WriteString("Name: " + record.Name + "\n")
	}

	sb.WriteString("Skills: " + strings.Join(record.Skills, ", ") + "\n")

	sb.WriteString("Experience:\n")
	for _, exp := range record.Experience {
		sb.WriteString(fmt.Sprintf("- %s (%s)", exp.Title, exp.Duration))
		if exp.Description != "" {
			sb.WriteString(": " + exp.Description)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Education:\n")
	for _, edu := range record.Education {
		sb.WriteString(fmt.Sprintf("- %s, %s\n", edu.Degree, edu.Institution))
	}

	return sb.String()
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}

	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
	return sb.String()
}
