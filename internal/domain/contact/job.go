package contact

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// UploadJob is the durable record of one upload's lifecycle. JobID is
// the queue job identifier; the most recently created row per JobID is
// authoritative.
type UploadJob struct {
	ID           int64
	JobID        int64
	LocationID   string
	Status       JobStatus
	Message      string
	Result       *string
	SuccessCount int64
	FailureCount int64
	TotalRecords int64
	FileName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobUpdate carries a partial job-store update. Nil fields retain their
// prior values.
type JobUpdate struct {
	Status       *JobStatus
	Message      *string
	Result       *string
	SuccessCount *int64
	FailureCount *int64
	TotalRecords *int64
	FileName     *string
	LocationID   *string
}

// UploadPayload is the producer→consumer queue contract. Mappings
// travels as a serialized JSON string; the consumer parses it.
type UploadPayload struct {
	FileName   string   `json:"fileName"`
	FilePath   string   `json:"filePath"`
	Mappings   string   `json:"mappings"`
	LocationID string   `json:"locationId"`
	Tags       []string `json:"tags"`
}

// QueuedUpload is an upload payload claimed from the durable queue.
type QueuedUpload struct {
	ID int64
	UploadPayload
}

// ProgressEvent is a transient live-progress update broadcast to a
// location's subscribers. It is never persisted; the job store mirrors
// the latest state for anyone reconnecting late.
type ProgressEvent struct {
	Progress     int       `json:"progress"`
	Status       JobStatus `json:"status"`
	Message      string    `json:"message,omitempty"`
	Result       any       `json:"result,omitempty"`
	SuccessCount *int64    `json:"successCount,omitempty"`
	FailureCount *int64    `json:"failureCount,omitempty"`
	TotalRecords *int64    `json:"totalRecords,omitempty"`
}
