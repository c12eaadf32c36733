package models

import "time"

// UploadQueueJob is one durable queue entry per uploaded file. Rows are
// deleted on success and retained with status failed for operator
// inspection; there is no automatic requeue.
type UploadQueueJob struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	FileName      string  `gorm:"type:text;not null"`
	FilePath      string  `gorm:"type:text;not null"`
	Mappings      string  `gorm:"type:text;not null"`
	LocationID    string  `gorm:"type:text;not null"`
	Tags          string  `gorm:"type:text;not null;default:'[]'"`
	Status        string  `gorm:"type:text;not null;default:queued"`
	FailureReason *string `gorm:"type:text"`
	ClaimedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (UploadQueueJob) TableName() string {
	return "upload_queue_jobs"
}
