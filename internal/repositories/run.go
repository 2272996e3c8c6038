package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-ranker/internal/models"
)

var ErrRunNotFound = errors.New("scoring run not found")

type RunRepository interface {
	Create(run *models.ScoringRun) error
	FindByID(id uuid.UUID) (*models.ScoringRun, error)
	Finish(id uuid.UUID, status models.RunStatus, succeeded, failed int) error
	UpdateCriteria(id uuid.UUID, criteria string) error
	UpdateError(id uuid.UUID, errorMsg string) error
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(run *models.ScoringRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create scoring run: %w", err)
	}
	return nil
}

func (r *runRepository) FindByID(id uuid.UUID) (*models.ScoringRun, error) {
	var run models.ScoringRun
	err := r.db.
		Preload("Candidates", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to find scoring run: %w", err)
	}
	return &run, nil
}

func (r *runRepository) Finish(id uuid.UUID, status models.RunStatus, succeeded, failed int) error {
	result := r.db.Model(&models.ScoringRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"succeeded_count": succeeded,
			"failed_count":    failed,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to finish scoring run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *runRepository) UpdateCriteria(id uuid.UUID, criteria string) error {
	result := r.db.Model(&models.ScoringRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"criteria":   criteria,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update scoring run criteria: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *runRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.ScoringRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.RunStatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update scoring run error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}
