package models

// ResumeRecord is one scored candidate. Scores holds exactly one entry per
// criterion of the request and TotalScore is their sum.
type ResumeRecord struct {
	CandidateName string         `json:"candidate_name"`
	FileName      string         `json:"file_name"`
	Scores        map[string]int `json:"scores"`
	TotalScore    int            `json:"total_score"`
}

// ScoreFor returns the score recorded for criterion, or 0 when absent.
func (r *ResumeRecord) ScoreFor(criterion string) int {
	return r.Scores[criterion]
}

// ScoringFailure identifies a resume that could not be processed.
type ScoringFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// Report is the scored output of one request, rows in upload order.
type Report struct {
	Criteria []string         `json:"criteria"`
	Records  []ResumeRecord   `json:"records"`
	Failures []ScoringFailure `json:"failures,omitempty"`
}

// FailedFileNames lists the failed uploads in the order they were submitted.
func (r *Report) FailedFileNames() []string {
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.FileName)
	}
	return names
}

type WeakArea struct {
	Skill      string `json:"skill"`
	Suggestion string `json:"suggestion"`
}

// ResumeSuggestion holds improvement advice for one resume.
type ResumeSuggestion struct {
	FileName          string     `json:"file_name"`
	MissingSkills     []string   `json:"missing_skills"`
	WeakAreas         []WeakArea `json:"weak_areas"`
	FormatSuggestions []string   `json:"format_suggestions"`
}
