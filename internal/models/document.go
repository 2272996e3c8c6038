package models

import (
	"path/filepath"
	"strings"
)

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
)

// Document is the content extracted from one uploaded file. Images is only
// set for PDFs without a text layer, such as scanned resumes.
type Document struct {
	FileName  string         `json:"file_name"`
	Format    DocumentFormat `json:"format"`
	Text      string         `json:"text"`
	PageCount int            `json:"page_count,omitempty"`
	Images    []PageImage    `json:"-"`
}

// PageImage is an image embedded in a document page.
type PageImage struct {
	Page     int
	MIMEType string
	Data     []byte
}

// Stem returns the file name without directory or extension.
func (d *Document) Stem() string {
	base := filepath.Base(d.FileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
