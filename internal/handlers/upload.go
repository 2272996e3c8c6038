package handlers

import (
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

// DocumentIntake turns multipart uploads into loaded documents. Each upload
// is spooled to the upload directory, converted to text and removed.
type DocumentIntake struct {
	storageService services.StorageService
	loader         services.DocumentLoader
	maxFileSize    int64
	maxFiles       int
	logger         *zap.Logger
}

func NewDocumentIntake(
	storageService services.StorageService,
	loader services.DocumentLoader,
	maxFileSize int64,
	maxFiles int,
	logger *zap.Logger,
) *DocumentIntake {
	return &DocumentIntake{
		storageService: storageService,
		loader:         loader,
		maxFileSize:    maxFileSize,
		maxFiles:       maxFiles,
		logger:         logger,
	}
}

// SingleFile loads the one document uploaded under field.
func (d *DocumentIntake) SingleFile(c *fiber.Ctx, field, kind string) (*models.Document, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeMissingFile,
			fmt.Sprintf("'%s' file is required", field), err)
	}
	return d.load(file, kind)
}

// Files loads every document uploaded under field, in upload order. The
// first document that cannot be loaded fails the whole request.
func (d *DocumentIntake) Files(form *multipart.Form, field, kind string) ([]*models.Document, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeMissingFile,
			fmt.Sprintf("at least one file is required in '%s'", field), nil)
	}
	if d.maxFiles > 0 && len(files) > d.maxFiles {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeTooManyFiles,
			fmt.Sprintf("too many files: %d uploaded, max %d", len(files), d.maxFiles), nil)
	}

	// Reject bad extensions before any content is read.
	for _, file := range files {
		if _, err := services.DetectFormat(file.Filename); err != nil {
			return nil, err
		}
	}

	docs := make([]*models.Document, 0, len(files))
	for _, file := range files {
		doc, err := d.load(file, kind)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (d *DocumentIntake) load(file *multipart.FileHeader, kind string) (*models.Document, error) {
	if d.maxFileSize > 0 && file.Size > d.maxFileSize {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s is too large. Max size: %d bytes", file.Filename, d.maxFileSize), nil).
			WithContext("file_name", file.Filename)
	}

	stored, err := d.storageService.SaveFile(file, kind)
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.NewInternalError(apperrors.ErrCodeStorageFailed,
			fmt.Sprintf("failed to save %s", file.Filename), err)
	}
	defer func() {
		if err := d.storageService.DeleteFile(stored.Name); err != nil {
			d.logger.Warn("⚠️ Failed to remove spooled upload", zap.String("path", stored.Path), zap.Error(err))
		}
	}()

	return d.loader.LoadFile(stored.Path, file.Filename)
}
