package services

import (
	"alfredoptarigan/resume-ranker/internal/llm"
	"alfredoptarigan/resume-ranker/internal/models"
)

const scannedDocumentNote = "(This document has no text layer. Its pages are attached as images.)"

// documentBody is the document text used in prompts.
func documentBody(doc *models.Document) string {
	if doc.Text == "" && len(doc.Images) > 0 {
		return scannedDocumentNote
	}
	return doc.Text
}

// visionInput converts a document's page images for a model request.
func visionInput(doc *models.Document) []llm.Image {
	if len(doc.Images) == 0 {
		return nil
	}
	images := make([]llm.Image, len(doc.Images))
	for i, img := range doc.Images {
		images[i] = llm.Image{MIMEType: img.MIMEType, Data: img.Data}
	}
	return images
}
