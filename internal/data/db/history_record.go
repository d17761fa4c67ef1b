package db

import (
	"time"
)

// DiagnosisRecord stores the outcome of one endpoint diagnosis run.
type DiagnosisRecord struct {
	ID             uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	BaseURL        string    `gorm:"column:base_url;index:idx_diagnosis_base_url;not null" json:"base_url"`
	Host           string    `gorm:"column:host" json:"host"`
	Model          string    `gorm:"column:model;index:idx_diagnosis_model" json:"model"`
	Conclusion     string    `gorm:"column:conclusion;type:text" json:"conclusion"`
	ModelSupported string    `gorm:"column:model_supported" json:"model_supported"`
	SupportSource  string    `gorm:"column:support_source" json:"support_source"`
	SucceededCount int       `gorm:"column:succeeded_count" json:"succeeded_count"`
	CreatedAt      time.Time `gorm:"column:created_at;index:idx_diagnosis_created_at" json:"created_at"`
}

// TableName overrides the default table name
func (DiagnosisRecord) TableName() string {
	return "diagnosis_history"
}
