package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/models"
)

func TestSuggestImprovements(t *testing.T) {
	stub := replyByResume(map[string]string{
		"resume-a": `{
			"missing_skills": ["Terraform", " "],
			"weak_areas": [{"skill": "Go", "suggestion": "Quantify the services you built."}, {"skill": "", "suggestion": ""}],
			"format_suggestions": ["Move education below experience."]
		}`,
		"resume-b": "not json at all",
	})
	suggester := NewResumeSuggester(stub, startWorker(t, 2, 4), 0.2, zaptest.NewLogger(t))

	docs := []*models.Document{
		{FileName: "a.pdf", Text: "resume-a"},
		{FileName: "b.pdf", Text: "resume-b"},
	}
	resp := suggester.SuggestImprovements(context.Background(), docs, []string{"Go", "Terraform"})

	require.Len(t, resp.Suggestions, 1)
	s := resp.Suggestions[0]
	assert.Equal(t, "a.pdf", s.FileName)
	assert.Equal(t, []string{"Terraform"}, s.MissingSkills)
	assert.Equal(t, []models.WeakArea{{Skill: "Go", Suggestion: "Quantify the services you built."}}, s.WeakAreas)
	assert.Equal(t, []string{"Move education below experience."}, s.FormatSuggestions)

	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "b.pdf", resp.Failures[0].FileName)
	assert.Contains(t, resp.Failures[0].Error, "malformed suggestions")

	for _, req := range stub.Requests() {
		assert.Equal(t, llm.OperationSuggest, req.Operation)
		assert.Equal(t, float32(0.2), req.Temperature)
		assert.Contains(t, req.UserPrompt, "- Terraform")
	}
}

func TestSuggestImprovementsEmptyLists(t *testing.T) {
	suggester := NewResumeSuggester(stubReply(`{}`), startWorker(t, 1, 1), 0, zaptest.NewLogger(t))

	resp := suggester.SuggestImprovements(context.Background(),
		[]*models.Document{{FileName: "a.pdf", Text: "x"}}, []string{"Go"})

	require.Len(t, resp.Suggestions, 1)
	assert.NotNil(t, resp.Suggestions[0].MissingSkills)
	assert.NotNil(t, resp.Suggestions[0].WeakAreas)
	assert.NotNil(t, resp.Suggestions[0].FormatSuggestions)
	assert.Empty(t, resp.Failures)
}
