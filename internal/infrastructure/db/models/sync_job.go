package models

import "time"

type SyncJob struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	JobID        int64   `gorm:"not null;index"`
	LocationID   string  `gorm:"type:text;not null;index"`
	Status       string  `gorm:"type:text;not null"`
	Message      string  `gorm:"type:text"`
	Result       *string `gorm:"type:text"`
	SuccessCount int64   `gorm:"not null;default:0"`
	FailureCount int64   `gorm:"not null;default:0"`
	TotalRecords int64   `gorm:"not null;default:0"`
	FileName     string  `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SyncJob) TableName() string {
	return "sync_jobs"
}
