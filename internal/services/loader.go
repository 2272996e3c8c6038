package services

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/metrics"
	"alfredoptarigan/resume-ranker/internal/models"
)

// maxPageImages caps the images taken from a PDF without a text layer.
const maxPageImages = 20

var imageMIMETypes = map[string]string{
	"jpg": "image/jpeg",
	"png": "image/png",
}

// DocumentLoader converts uploaded PDF and DOCX files to plain text. PDFs
// without a text layer fall back to their embedded page images.
type DocumentLoader interface {
	LoadFile(path, fileName string) (*models.Document, error)
	Load(fileName string, data []byte) (*models.Document, error)
}

type documentLoader struct {
	logger *zap.Logger
}

func NewDocumentLoader(logger *zap.Logger) DocumentLoader {
	// keep pdfcpu from creating a config directory under $HOME
	api.DisableConfigDir()
	return &documentLoader{logger: logger}
}

// DetectFormat picks the parser from the file extension, case-insensitively.
func DetectFormat(fileName string) (models.DocumentFormat, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return models.FormatPDF, nil
	case ".docx":
		return models.FormatDOCX, nil
	default:
		return "", apperrors.NewUnsupportedFormatError(fileName, ext)
	}
}

// LoadFile reads a spooled upload from disk. fileName is the name the client sent.
func (l *documentLoader) LoadFile(path, fileName string) (*models.Document, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat upload: %w", err)
	}

	return l.load(fileName, format, f, info.Size())
}

// Load parses an in-memory file.
func (l *documentLoader) Load(fileName string, data []byte) (*models.Document, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	return l.load(fileName, format, bytes.NewReader(data), int64(len(data)))
}

func (l *documentLoader) load(fileName string, format models.DocumentFormat, r fileReader, size int64) (doc *models.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = apperrors.NewCorruptFileError(apperrors.ErrCodeCorruptFile, fileName, fmt.Errorf("parser panic: %v", rec))
		}
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		metrics.DocumentsLoaded.WithLabelValues(string(format), outcome).Inc()
	}()

	var (
		text  string
		pages int
	)
	switch format {
	case models.FormatPDF:
		text, pages, err = extractPDFText(r, size)
	case models.FormatDOCX:
		text, err = extractDOCXText(r)
	}
	if err != nil {
		l.logger.Warn("⚠️ Failed to parse document",
			zap.String("file_name", fileName),
			zap.String("format", string(format)),
			zap.Error(err))
		return nil, apperrors.NewCorruptFileError(apperrors.ErrCodeCorruptFile, fileName, err)
	}

	text = CleanText(text)

	var images []models.PageImage
	if text == "" && format == models.FormatPDF {
		var imgErr error
		images, imgErr = extractPDFImages(io.NewSectionReader(r, 0, size))
		if imgErr != nil {
			l.logger.Warn("⚠️ Failed to read PDF page images",
				zap.String("file_name", fileName),
				zap.Error(imgErr))
		}
	}
	if text == "" && len(images) == 0 {
		return nil, apperrors.NewCorruptFileError(apperrors.ErrCodeEmptyDocument, fileName,
			fmt.Errorf("no text content found in %s", format))
	}

	l.logger.Debug("📄 Document loaded",
		zap.String("file_name", fileName),
		zap.String("format", string(format)),
		zap.Int("pages", pages),
		zap.Int("chars", len(text)),
		zap.Int("images", len(images)))

	return &models.Document{
		FileName:  fileName,
		Format:    format,
		Text:      text,
		PageCount: pages,
		Images:    images,
	}, nil
}

type fileReader interface {
	io.Reader
	io.ReaderAt
}

func extractPDFText(r io.ReaderAt, size int64) (string, int, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable pages are skipped
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), totalPage, nil
}

// extractPDFImages returns the JPEG and PNG images drawn on the pages in
// page order. Other encodings and thumbnails are skipped.
func extractPDFImages(rs io.ReadSeeker) ([]models.PageImage, error) {
	pages, err := api.ExtractImagesRaw(rs, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF images: %w", err)
	}

	var found []model.Image
	for _, page := range pages {
		for _, img := range page {
			if _, ok := imageMIMETypes[img.FileType]; ok && !img.Thumb {
				found = append(found, img)
			}
		}
	}
	slices.SortFunc(found, func(a, b model.Image) int {
		if a.PageNr != b.PageNr {
			return a.PageNr - b.PageNr
		}
		return a.ObjNr - b.ObjNr
	})
	if len(found) > maxPageImages {
		found = found[:maxPageImages]
	}

	images := make([]models.PageImage, 0, len(found))
	for _, img := range found {
		data, err := io.ReadAll(img)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s on page %d: %w", img.Name, img.PageNr, err)
		}
		images = append(images, models.PageImage{
			Page:     img.PageNr,
			MIMEType: imageMIMETypes[img.FileType],
			Data:     data,
		})
	}
	return images, nil
}

func extractDOCXText(r io.Reader) (string, error) {
	text, _, err := docconv.ConvertDocx(r)
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	return text, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleanedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
