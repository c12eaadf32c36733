package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

// SyncJobRepository is the durable job store. The most recently created
// row per queue job id is authoritative; partial updates touch only the
// provided fields and create the row when none exists yet.
type SyncJobRepository struct {
	db *gorm.DB
}

func NewSyncJobRepository(db *gorm.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

func (r *SyncJobRepository) Create(ctx context.Context, job domain.UploadJob) error {
	row := models.SyncJob{
		JobID:        job.JobID,
		LocationID:   job.LocationID,
		Status:       string(job.Status),
		Message:      job.Message,
		Result:       job.Result,
		SuccessCount: job.SuccessCount,
		FailureCount: job.FailureCount,
		TotalRecords: job.TotalRecords,
		FileName:     job.FileName,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create sync job: %w", err)
	}
	return nil
}

// FindLatestByJobID returns the authoritative row for a queue job id,
// or nil when none exists.
func (r *SyncJobRepository) FindLatestByJobID(ctx context.Context, jobID int64) (*domain.UploadJob, error) {
	var row models.SyncJob
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find sync job %d: %w", jobID, err)
	}
	job := toDomainJob(row)
	return &job, nil
}

// UpsertByJobID applies a partial update to the latest row for jobID,
// creating the row from the supplied fields when absent. The processor's
// steps may observe the job before its enqueue-time row lands, so a
// missing row is never an error.
func (r *SyncJobRepository) UpsertByJobID(ctx context.Context, jobID int64, update domain.JobUpdate) error {
	existing, err := r.FindLatestByJobID(ctx, jobID)
	if err != nil {
		return err
	}

	if existing == nil {
		row := models.SyncJob{JobID: jobID}
		applyToModel(&row, update)
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert-create sync job %d: %w", jobID, err)
		}
		return nil
	}

	fields := updateFields(update)
	if len(fields) == 0 {
		return nil
	}
	err = r.db.WithContext(ctx).
		Model(&models.SyncJob{}).
		Where("id = ?", existing.ID).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("update sync job %d: %w", jobID, err)
	}
	return nil
}

func (r *SyncJobRepository) ListRecent(ctx context.Context, locationID string, limit int) ([]domain.UploadJob, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.SyncJob
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list sync jobs for %s: %w", locationID, err)
	}

	jobs := make([]domain.UploadJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, toDomainJob(row))
	}
	return jobs, nil
}

func updateFields(update domain.JobUpdate) map[string]any {
	fields := make(map[string]any)
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if update.Message != nil {
		fields["message"] = *update.Message
	}
	if update.Result != nil {
		fields["result"] = *update.Result
	}
	if update.SuccessCount != nil {
		fields["success_count"] = *update.SuccessCount
	}
	if update.FailureCount != nil {
		fields["failure_count"] = *update.FailureCount
	}
	if update.TotalRecords != nil {
		fields["total_records"] = *update.TotalRecords
	}
	if update.FileName != nil {
		fields["file_name"] = *update.FileName
	}
	if update.LocationID != nil {
		fields["location_id"] = *update.LocationID
	}
	return fields
}

func applyToModel(row *models.SyncJob, update domain.JobUpdate) {
	if update.Status != nil {
		row.Status = string(*update.Status)
	}
	if update.Message != nil {
		row.Message = *update.Message
	}
	if update.Result != nil {
		row.Result = update.Result
	}
	if update.SuccessCount != nil {
		row.SuccessCount = *update.SuccessCount
	}
	if update.FailureCount != nil {
		row.FailureCount = *update.FailureCount
	}
	if update.TotalRecords != nil {
		row.TotalRecords = *update.TotalRecords
	}
	if update.FileName != nil {
		row.FileName = *update.FileName
	}
	if update.LocationID != nil {
		row.LocationID = *update.LocationID
	}
}

func toDomainJob(row models.SyncJob) domain.UploadJob {
	return domain.UploadJob{
		ID:           row.ID,
		JobID:        row.JobID,
		LocationID:   row.LocationID,
		Status:       domain.JobStatus(row.Status),
		Message:      row.Message,
		Result:       row.Result,
		SuccessCount: row.SuccessCount,
		FailureCount: row.FailureCount,
		TotalRecords: row.TotalRecords,
		FileName:     row.FileName,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
