package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/testutil"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    models.DocumentFormat
		wantErr bool
	}{
		{"resume.pdf", models.FormatPDF, false},
		{"RESUME.PDF", models.FormatPDF, false},
		{"jd.Docx", models.FormatDOCX, false},
		{"notes.txt", "", true},
		{"legacy.doc", "", true},
		{"no-extension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDOCX(t *testing.T) {
	loader := NewDocumentLoader(zaptest.NewLogger(t))
	data := testutil.BuildDOCX(t, "Senior Go Engineer", "  ", "Must know Kubernetes & Postgres")

	doc, err := loader.Load("job.docx", data)
	require.NoError(t, err)

	assert.Equal(t, models.FormatDOCX, doc.Format)
	assert.Equal(t, "job.docx", doc.FileName)
	assert.Contains(t, doc.Text, "Senior Go Engineer")
	assert.Contains(t, doc.Text, "Must know Kubernetes & Postgres")
	assert.NotContains(t, doc.Text, "\n\n")
}

func TestLoadPDF(t *testing.T) {
	loader := NewDocumentLoader(zaptest.NewLogger(t))
	data := testutil.BuildPDF(t, "Jane Doe", "Backend Engineer")

	doc, err := loader.Load("jane.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, models.FormatPDF, doc.Format)
	assert.Equal(t, 1, doc.PageCount)
	assert.Contains(t, doc.Text, "Jane Doe")
	assert.Contains(t, doc.Text, "Backend Engineer")
}

func TestLoadFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume_spooled.pdf")
	require.NoError(t, os.WriteFile(path, testutil.BuildPDF(t, "John Smith"), 0o644))

	loader := NewDocumentLoader(zaptest.NewLogger(t))
	doc, err := loader.LoadFile(path, "John Smith.PDF")
	require.NoError(t, err)
	assert.Equal(t, "John Smith.PDF", doc.FileName)
	assert.Equal(t, "John Smith", doc.Stem())
	assert.Contains(t, doc.Text, "John Smith")
}

func TestLoadScannedPDFFallsBackToPageImages(t *testing.T) {
	loader := NewDocumentLoader(zaptest.NewLogger(t))
	scan := testutil.BuildJPEG(t, 40, 20)

	doc, err := loader.Load("scanned.pdf", testutil.BuildImagePDF(t, scan, 40, 20))
	require.NoError(t, err)

	assert.Empty(t, doc.Text)
	assert.Equal(t, 1, doc.PageCount)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, 1, doc.Images[0].Page)
	assert.Equal(t, "image/jpeg", doc.Images[0].MIMEType)
	assert.Equal(t, scan, doc.Images[0].Data)
}

func TestLoadRejectsUnsupportedBeforeParsing(t *testing.T) {
	loader := NewDocumentLoader(zaptest.NewLogger(t))

	_, err := loader.LoadFile("/definitely/not/here.txt", "resume.txt")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnsupportedFormat, appErr.Code)
}

func TestLoadCorruptFiles(t *testing.T) {
	loader := NewDocumentLoader(zaptest.NewLogger(t))

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"garbage pdf", "cv.pdf", []byte("this is not a pdf at all")},
		{"truncated pdf", "cv.pdf", testutil.BuildPDF(t, "Jane")[:60]},
		{"garbage docx", "cv.docx", []byte("PK not really a zip")},
		{"empty docx", "cv.docx", testutil.BuildDOCX(t)},
		{"blank pdf", "cv.pdf", testutil.BuildPDF(t, "   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := loader.Load(tt.file, tt.data)
			assert.Nil(t, doc)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCorruptFile), "got %v", err)
		})
	}
}

func TestCleanText(t *testing.T) {
	in := "\n  Line one  \n\n\n\tLine two\n   \nLine three\n"
	assert.Equal(t, "Line one\nLine two\nLine three", CleanText(in))
	assert.Equal(t, "", CleanText(" \n\t\n"))
}
