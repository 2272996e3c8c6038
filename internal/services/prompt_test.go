package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildScoringPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	system, user := pb.BuildScoringPrompt([]string{"Go", "AWS"}, "Jane Doe, Go developer", "")
	assert.Equal(t, resumeScoringSystemPrompt, system)
	assert.Equal(t, "CRITERIA:\n- Go\n- AWS\n\nRESUME:\nJane Doe, Go developer", user)
	assert.NotContains(t, user, "SCORING GUIDANCE")

	_, user = pb.BuildScoringPrompt([]string{"Go"}, "resume", "be strict")
	assert.Contains(t, user, "SCORING GUIDANCE:\nbe strict\n\nRESUME:\nresume")
}

func TestBuildExtractionAndSuggestionPrompts(t *testing.T) {
	pb := NewPromptBuilder()

	system, user := pb.BuildExtractionPrompt("Senior Go engineer")
	assert.Equal(t, criteriaExtractionSystemPrompt, system)
	assert.Contains(t, user, "JOB DESCRIPTION:\nSenior Go engineer")

	system, user = pb.BuildSuggestionPrompt([]string{"Go"}, "my resume")
	assert.Equal(t, resumeSuggestionSystemPrompt, system)
	assert.Equal(t, "JOB CRITERIA:\n- Go\n\nRESUME:\nmy resume", user)
}

func TestBuildRubricQuery(t *testing.T) {
	assert.Equal(t, "Scoring guidelines for: Go; AWS", NewPromptBuilder().BuildRubricQuery([]string{"Go", "AWS"}))
}

func TestFormatRAGContextEmpty(t *testing.T) {
	assert.Equal(t, "", FormatRAGContext(nil))
}
