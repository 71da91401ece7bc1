package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentTypeJD     DocumentType = "jd"
	DocumentTypeResume DocumentType = "resume"
)

type Document struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ScreeningID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"screening_id"`
	Filename         string       `gorm:"type:text" json:"filename"`
	OriginalFileName string       `gorm:"type:text" json:"original_filename"`
	FileType         DocumentType `gorm:"type:text" json:"file_type"`
	FilePath         string       `gorm:"type:text" json:"file_path"`
	// SortOrder preserves the submission order of resumes; ranking ties are
	// broken by it.
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
