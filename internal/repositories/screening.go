package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type ScreeningRepository interface {
	Create(screening *models.Screening) error
	FindByID(id uuid.UUID) (*models.Screening, error)
	UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error
	UpdateReport(id uuid.UUID, reportJSON string) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.Screening, error)
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) Create(screening *models.Screening) error {
	if err := r.db.Create(screening).Error; err != nil {
		return fmt.Errorf("failed to create screening: %w", err)
	}
	return nil
}

func (r *screeningRepository) FindByID(id uuid.UUID) (*models.Screening, error) {
	var screening models.Screening
	if err := r.db.Where("id = ?", id).First(&screening).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("screening not found")
		}
		return nil, fmt.Errorf("failed to find screening: %w", err)
	}
	return &screening, nil
}

func (r *screeningRepository) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

// UpdateReport stores the marshaled screening report and marks the
// screening completed.
func (r *screeningRepository) UpdateReport(id uuid.UUID, reportJSON string) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.StatusCompleted,
			"report_json": reportJSON,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update report: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

func (r *screeningRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

func (r *screeningRepository) FindPendingJobs(limit int) ([]models.Screening, error) {
	var screenings []models.Screening
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&screenings).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return screenings, nil
}
