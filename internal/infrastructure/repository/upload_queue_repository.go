package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
)

// UploadQueueRepository is the durable upload queue. Claiming uses
// FOR UPDATE SKIP LOCKED so at most one worker holds a given job.
// Completed jobs are deleted; failed jobs are retained with a reason
// and never requeued automatically.
type UploadQueueRepository struct {
	pool *pgxpool.Pool
}

func NewUploadQueueRepository(pool *pgxpool.Pool) *UploadQueueRepository {
	return &UploadQueueRepository{pool: pool}
}

func (r *UploadQueueRepository) Enqueue(ctx context.Context, payload domain.UploadPayload) (int64, error) {
	tags, err := json.Marshal(payload.Tags)
	if err != nil {
		return 0, fmt.Errorf("marshal tags: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx, `
INSERT INTO upload_queue_jobs (file_name, file_path, mappings, location_id, tags, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'queued', NOW(), NOW())
RETURNING id
`, payload.FileName, payload.FilePath, payload.Mappings, payload.LocationID, string(tags)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("enqueue upload job: %w", err)
	}
	return id, nil
}

// ClaimNext atomically claims the next queued job, or returns nil when
// the queue is empty.
func (r *UploadQueueRepository) ClaimNext(ctx context.Context) (*domain.QueuedUpload, error) {
	var (
		job  domain.QueuedUpload
		tags string
	)
	err := r.pool.QueryRow(ctx, `
UPDATE upload_queue_jobs
SET status = 'processing', claimed_at = NOW(), updated_at = NOW()
WHERE id = (
    SELECT id FROM upload_queue_jobs
    WHERE status = 'queued'
    ORDER BY id
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING id, file_name, file_path, mappings, location_id, tags
`).Scan(&job.ID, &job.FileName, &job.FilePath, &job.Mappings, &job.LocationID, &tags)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim upload job: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &job.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags for job %d: %w", job.ID, err)
	}
	return &job, nil
}

// Delete removes a successfully processed job from the queue.
func (r *UploadQueueRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM upload_queue_jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete upload job %d: %w", id, err)
	}
	return nil
}

// MarkFailed retains a failed job for operator inspection.
func (r *UploadQueueRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE upload_queue_jobs
SET status = 'failed', failure_reason = $2, updated_at = NOW()
WHERE id = $1
`, id, reason)
	if err != nil {
		return fmt.Errorf("mark upload job %d failed: %w", id, err)
	}
	return nil
}
