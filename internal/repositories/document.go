package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	FindResumesByScreeningID(screeningID uuid.UUID) ([]models.Document, error)
	DeleteByScreeningID(screeningID uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(document *models.Document) error {
	if err := d.db.Create(&document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// FindByID implements DocumentRepository.
func (d *documentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := d.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("document not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// FindResumesByScreeningID returns a screening's resume documents in
// submission order.
func (d *documentRepository) FindResumesByScreeningID(screeningID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := d.db.
		Where("screening_id = ? AND file_type = ?", screeningID, models.DocumentTypeResume).
		Order("sort_order ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find resume documents: %w", err)
	}

	return docs, nil
}

// DeleteByScreeningID removes every document of a screening. Used when a
// submission is aborted partway through storing its files.
func (d *documentRepository) DeleteByScreeningID(screeningID uuid.UUID) error {
	err := d.db.
		Where("screening_id = ?", screeningID).
		Delete(&models.Document{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	return nil
}
