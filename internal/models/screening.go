package models

import (
	"time"

	"github.com/google/uuid"
)

type ScreeningStatus string

const (
	StatusQueued     ScreeningStatus = "queued"
	StatusProcessing ScreeningStatus = "processing"
	StatusCompleted  ScreeningStatus = "completed"
	StatusFailed     ScreeningStatus = "failed"
)

type Screening struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Status      ScreeningStatus `gorm:"not null;default:'queued'" json:"status"`
	JDText      string          `gorm:"type:text;not null" json:"jd_text"`
	ResumeCount int             `gorm:"not null" json:"resume_count"`
	// ReportJSON holds the marshaled ScreeningReport once the run completes.
	ReportJSON   *string   `gorm:"type:jsonb" json:"-"`
	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Documents []Document `gorm:"foreignKey:ScreeningID" json:"-"`
}

func (Screening) TableName() string {
	return "screenings"
}
