package services

import (
	"fmt"
	"strings"
)

const criteriaExtractionSystemPrompt = `You read job descriptions and turn them into ranking criteria for candidate screening.

You will receive the plain text of a job description. Do two things:
1. Reproduce the document's textual content as faithfully as you can.
2. List the distinct criteria a recruiter would rank candidates by: skills, certifications, years or kind of experience, education and other qualifications. Include any ranking criteria the document states explicitly.

Reply with a single JSON object using exactly this shape:
{
  "extracted_content": "<the document text>",
  "criteria": ["<criterion 1>", "<criterion 2>"]
}

Rules:
- Only list criteria that the document states or clearly implies.
- Keep each criterion short, one requirement per entry.
- Return valid JSON only, with no text before or after it.`

const resumeScoringSystemPrompt = `You evaluate resumes against a fixed list of ranking criteria.

For every criterion give an integer score from 0 to 5:
- 0 means the resume shows no evidence of the criterion.
- 5 means the resume shows exceptional evidence for it.
Also extract the candidate's full name from the resume.

Reply with a single JSON object using exactly this shape:
{
  "candidate_name": "<candidate full name>",
  "scores": {
    "<criterion exactly as written>": <integer 0-5>
  },
  "total_score": <sum of the scores>
}

Use every criterion text verbatim as a key in "scores", and no other keys.
Return valid JSON only, with no commentary.`

const resumeSuggestionSystemPrompt = `You help candidates improve their resumes for a specific role.

You will receive the plain text of a resume and the job's ranking criteria. Review the resume and report:
1. Skills the criteria require that the resume does not show.
2. Skills the resume mentions too thinly, each with a concrete suggestion for strengthening it.
3. Changes to layout, structure and presentation that would make the resume stronger.

Reply with a single JSON object using exactly this shape:
{
  "missing_skills": ["<skill>"],
  "weak_areas": [
    {"skill": "<skill>", "suggestion": "<specific, actionable advice>"}
  ],
  "format_suggestions": ["<suggestion>"]
}

Return valid JSON only, with no commentary.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt returns the system and user prompts for criteria extraction.
func (pb *PromptBuilder) BuildExtractionPrompt(documentText string) (string, string) {
	user := fmt.Sprintf(`Extract the content of this job description and identify its key ranking criteria such as skills, certifications, experience and qualifications.

JOB DESCRIPTION:
%s`, documentText)

	return criteriaExtractionSystemPrompt, user
}

// BuildScoringPrompt returns the system and user prompts for scoring one
// resume. rubricContext is optional guidance retrieved from the rubric
// knowledge base.
func (pb *PromptBuilder) BuildScoringPrompt(criteria []string, resumeText, rubricContext string) (string, string) {
	var user strings.Builder
	fmt.Fprintf(&user, "CRITERIA:\n%s\n\n", FormatCriteriaList(criteria))
	if rubricContext != "" {
		fmt.Fprintf(&user, "SCORING GUIDANCE:\n%s\n\n", rubricContext)
	}
	fmt.Fprintf(&user, "RESUME:\n%s", resumeText)

	return resumeScoringSystemPrompt, user.String()
}

// BuildSuggestionPrompt returns the system and user prompts for resume improvement advice.
func (pb *PromptBuilder) BuildSuggestionPrompt(criteria []string, resumeText string) (string, string) {
	user := fmt.Sprintf(`JOB CRITERIA:
%s

RESUME:
%s`, FormatCriteriaList(criteria), resumeText)

	return resumeSuggestionSystemPrompt, user
}

// BuildRubricQuery returns the text embedded to look up scoring guidance.
func (pb *PromptBuilder) BuildRubricQuery(criteria []string) string {
	return "Scoring guidelines for: " + strings.Join(criteria, "; ")
}

// FormatCriteriaList renders criteria as a bulleted list.
func FormatCriteriaList(criteria []string) string {
	lines := make([]string, len(criteria))
	for i, c := range criteria {
		lines[i] = "- " + c
	}
	return strings.Join(lines, "\n")
}

// FormatRAGContext joins retrieved rubric chunks into one guidance block.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Guidance %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
