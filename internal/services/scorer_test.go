package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/resume-ranker/internal/config"
	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/testutil"
)

// replyByResume answers with the reply whose key appears in the user prompt.
func replyByResume(replies map[string]string) *testutil.StubLLM {
	return &testutil.StubLLM{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (string, error) {
			for marker, reply := range replies {
				if strings.Contains(req.UserPrompt, marker) {
					if reply == "" {
						return "", errors.New("upstream reset")
					}
					return reply, nil
				}
			}
			return "", errors.New("unexpected prompt")
		},
	}
}

type fixedRubric string

func (f fixedRubric) Retrieve(context.Context, []string) string { return string(f) }

func TestScoreResumesSumsAndKeepsOrder(t *testing.T) {
	stub := replyByResume(map[string]string{
		"resume-a": `{"candidate_name":"Alice","scores":{"Go":5,"AWS":3},"total_score":99}`,
		"resume-b": `{"candidate_name":"Bob","scores":{"Go":2,"AWS":4},"total_score":6}`,
	})
	scorer := NewResumeScorer(stub, startWorker(t, 2, 4), nil, 0, zaptest.NewLogger(t))

	docs := []*models.Document{
		{FileName: "a.pdf", Text: "resume-a"},
		{FileName: "b.docx", Text: "resume-b"},
	}
	report := scorer.ScoreResumes(context.Background(), docs, []string{"Go", "AWS"})

	require.Len(t, report.Records, 2)
	assert.Empty(t, report.Failures)
	assert.Equal(t, []string{"Go", "AWS"}, report.Criteria)

	assert.Equal(t, "Alice", report.Records[0].CandidateName)
	assert.Equal(t, "a.pdf", report.Records[0].FileName)
	assert.Equal(t, 8, report.Records[0].TotalScore, "total is recomputed from the scores")
	assert.Equal(t, "Bob", report.Records[1].CandidateName)
	assert.Equal(t, 6, report.Records[1].TotalScore)
}

func TestScoreResumesIsolatesFailures(t *testing.T) {
	stub := replyByResume(map[string]string{
		"resume-a": `{"candidate_name":"Alice","scores":{"Go":5}}`,
		"resume-b": "",
		"resume-c": `{"candidate_name":"Carol","scores":{"Go":1}}`,
	})
	scorer := NewResumeScorer(stub, startWorker(t, 3, 4), nil, 0, zaptest.NewLogger(t))

	docs := []*models.Document{
		{FileName: "a.pdf", Text: "resume-a"},
		{FileName: "b.pdf", Text: "resume-b"},
		{FileName: "c.pdf", Text: "resume-c"},
	}
	report := scorer.ScoreResumes(context.Background(), docs, []string{"Go"})

	require.Len(t, report.Records, 2)
	assert.Equal(t, "Alice", report.Records[0].CandidateName)
	assert.Equal(t, "Carol", report.Records[1].CandidateName)
	assert.Equal(t, []string{"b.pdf"}, report.FailedFileNames())
}

func TestScoreResumeMatchesKeysLoosely(t *testing.T) {
	stub := stubReply(`{"candidate_name":"Dana","scores":{"kubernetes  administration":3.6,"GO":2}}`)
	scorer := NewResumeScorer(stub, startWorker(t, 1, 1), nil, 0, zaptest.NewLogger(t))

	rec, err := scorer.ScoreResume(context.Background(),
		&models.Document{FileName: "dana.pdf", Text: "x"},
		[]string{"Kubernetes Administration", "Go"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Kubernetes Administration": 4, "Go": 2}, rec.Scores)
	assert.Equal(t, 6, rec.TotalScore)
}

func TestScoreResumeMissingCriterion(t *testing.T) {
	stub := stubReply(`{"candidate_name":"Eve","scores":{"Go":4}}`)
	scorer := NewResumeScorer(stub, startWorker(t, 1, 1), nil, 0, zaptest.NewLogger(t))

	_, err := scorer.ScoreResume(context.Background(),
		&models.Document{FileName: "eve.pdf", Text: "x"},
		[]string{"Go", "Rust"})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidModelReply, appErr.Code)
	assert.ErrorContains(t, err, "Rust")
}

func TestScoreResumeRejectsOutOfRangeScore(t *testing.T) {
	stub := stubReply(`{"candidate_name":"Eve","scores":{"Go":1e20}}`)
	scorer := NewResumeScorer(stub, startWorker(t, 1, 1), nil, 0, zaptest.NewLogger(t))

	_, err := scorer.ScoreResume(context.Background(),
		&models.Document{FileName: "eve.pdf", Text: "x"},
		[]string{"Go"})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidModelReply, appErr.Code)
	assert.ErrorContains(t, err, "out of range")
}

func TestScoreResumeFallsBackToFileStem(t *testing.T) {
	stub := stubReply(`{"candidate_name":"  ","scores":{"Go":1}}`)
	scorer := NewResumeScorer(stub, startWorker(t, 1, 1), nil, 0, zaptest.NewLogger(t))

	rec, err := scorer.ScoreResume(context.Background(),
		&models.Document{FileName: "frank_cv.docx", Text: "x"}, []string{"Go"})
	require.NoError(t, err)
	assert.Equal(t, "frank_cv", rec.CandidateName)
}

func TestScoreResumeIncludesRubricGuidance(t *testing.T) {
	stub := stubReply(`{"candidate_name":"Gina","scores":{"Go":3}}`)
	scorer := NewResumeScorer(stub, startWorker(t, 1, 1), fixedRubric("Award 5 only for production Go."), 0, zaptest.NewLogger(t))

	_, err := scorer.ScoreResume(context.Background(), &models.Document{FileName: "g.pdf", Text: "x"}, []string{"Go"})
	require.NoError(t, err)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, llm.OperationScoreResume, reqs[0].Operation)
	assert.Contains(t, reqs[0].UserPrompt, "SCORING GUIDANCE:\nAward 5 only for production Go.")
}

func TestMatchScores(t *testing.T) {
	scores, err := matchScores([]string{"A", "B"}, map[string]float64{"A": 1, "b": 2.4, "extra": 5})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, scores)

	_, err = matchScores([]string{"A"}, nil)
	assert.Error(t, err)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e6 + 1, -2e9} {
		_, err = matchScores([]string{"A"}, map[string]float64{"A": v})
		assert.ErrorContains(t, err, "out of range", "value %v", v)
	}

	scores, err = matchScores([]string{"A"}, map[string]float64{"A": -1e6})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": -1000000}, scores)
}

func TestScoreResumesRejectedPromptsDoNotTripBreaker(t *testing.T) {
	stub := &testutil.StubLLM{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (string, error) {
			if strings.Contains(req.UserPrompt, "oversized") {
				return "", &llm.ProviderError{Provider: "stub", StatusCode: http.StatusBadRequest, Message: "context_length_exceeded"}
			}
			return `{"candidate_name":"Valid","scores":{"Go":4}}`, nil
		},
	}
	resilient := llm.NewResilientService(stub, llm.ResilienceOptions{
		RetryBaseDelay: time.Millisecond,
		Breaker: config.BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			MinRequests:  5,
			FailureRatio: 0.6,
			Interval:     time.Minute,
			Timeout:      time.Minute,
		},
	}, zaptest.NewLogger(t))
	scorer := NewResumeScorer(resilient, startWorker(t, 1, 10), nil, 0, zaptest.NewLogger(t))

	var docs []*models.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, &models.Document{FileName: fmt.Sprintf("big-%d.pdf", i), Text: "oversized"})
	}
	for i := 0; i < 3; i++ {
		docs = append(docs, &models.Document{FileName: fmt.Sprintf("ok-%d.pdf", i), Text: "resume"})
	}

	report := scorer.ScoreResumes(context.Background(), docs, []string{"Go"})

	require.Len(t, report.Records, 3)
	require.Len(t, report.Failures, 5)
	for _, f := range report.Failures {
		assert.True(t, strings.HasPrefix(f.FileName, "big-"))
		assert.NotContains(t, f.Error, "temporarily unavailable")
	}
}

func TestScoreResumeSendsPageImagesForScannedResume(t *testing.T) {
	stub := stubReply(`{"candidate_name":"Scanned Sam","scores":{"Go":3}}`)
	scorer := NewResumeScorer(stub, startWorker(t, 1, 1), nil, 0, zaptest.NewLogger(t))

	doc := &models.Document{
		FileName: "scan.pdf",
		Format:   models.FormatPDF,
		Images:   []models.PageImage{{Page: 1, MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}},
	}
	record, err := scorer.ScoreResume(context.Background(), doc, []string{"Go"})
	require.NoError(t, err)
	assert.Equal(t, "Scanned Sam", record.CandidateName)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].UserPrompt, scannedDocumentNote)
	assert.Equal(t, []llm.Image{{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}}, reqs[0].Images)
}
