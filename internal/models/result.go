package models

type ExtractCriteriaResponse struct {
	Criteria []string `json:"criteria"`
}

type SuggestionsResponse struct {
	Suggestions []ResumeSuggestion `json:"suggestions"`
	Failures    []ScoringFailure   `json:"failures"`
}

type RunResponse struct {
	ID             string              `json:"id"`
	Kind           string              `json:"kind"`
	Status         string              `json:"status"`
	Criteria       []string            `json:"criteria"`
	FileCount      int                 `json:"file_count"`
	SucceededCount int                 `json:"succeeded_count"`
	FailedCount    int                 `json:"failed_count"`
	ErrorMessage   *string             `json:"error_message,omitempty"`
	Candidates     []CandidateResponse `json:"candidates"`
	CreatedAt      string              `json:"created_at"`
}

type CandidateResponse struct {
	FileName      string            `json:"file_name"`
	CandidateName string            `json:"candidate_name,omitempty"`
	Scores        map[string]int    `json:"scores,omitempty"`
	TotalScore    *int              `json:"total_score,omitempty"`
	Suggestions   *ResumeSuggestion `json:"suggestions,omitempty"`
	ErrorMessage  *string           `json:"error_message,omitempty"`
}
