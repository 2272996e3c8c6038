package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/models"
)

type CandidateResultRepository interface {
	CreateBatch(results []models.CandidateResult) error
}

type candidateResultRepository struct {
	db *gorm.DB
}

func NewCandidateResultRepository(db *gorm.DB) CandidateResultRepository {
	return &candidateResultRepository{db: db}
}

func (r *candidateResultRepository) CreateBatch(results []models.CandidateResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(results, 100).Error; err != nil {
		return fmt.Errorf("failed to create candidate results: %w", err)
	}
	return nil
}
