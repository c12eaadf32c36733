package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/repository"
)

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	createSQL := `
    CREATE TABLE IF NOT EXISTS upload_queue_jobs (
      id BIGSERIAL PRIMARY KEY,
      file_name TEXT NOT NULL,
      file_path TEXT NOT NULL,
      mappings TEXT NOT NULL,
      location_id TEXT NOT NULL,
      tags TEXT NOT NULL DEFAULT '[]',
      status TEXT NOT NULL DEFAULT 'queued',
      failure_reason TEXT,
      claimed_at TIMESTAMPTZ,
      created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
      updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    `
	if _, err := pool.Exec(context.Background(), createSQL); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := pool.Exec(context.Background(), "DELETE FROM upload_queue_jobs"); err != nil {
		t.Fatalf("failed to cleanup upload_queue_jobs: %v", err)
	}
	return pool
}

func testPayload(name string) domain.UploadPayload {
	return domain.UploadPayload{
		FileName:   name,
		FilePath:   "uploads/" + name,
		Mappings:   `{"Phone 1":"phone"}`,
		LocationID: "loc-1",
		Tags:       []string{"vip", "spring-2026"},
	}
}

func TestUploadQueueClaimLifecycleIntegration(t *testing.T) {
	pool := openTestPool(t)
	repo := repository.NewUploadQueueRepository(pool)
	ctx := context.Background()

	firstID, err := repo.Enqueue(ctx, testPayload("a.csv"))
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	secondID, err := repo.Enqueue(ctx, testPayload("b.csv"))
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if secondID <= firstID {
		t.Fatalf("expected increasing ids, got %d then %d", firstID, secondID)
	}

	job, err := repo.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if job == nil || job.ID != firstID {
		t.Fatalf("expected oldest job claimed first, got %+v", job)
	}
	if job.FileName != "a.csv" || job.Mappings != `{"Phone 1":"phone"}` {
		t.Fatalf("unexpected payload: %+v", job)
	}
	if len(job.Tags) != 2 || job.Tags[0] != "vip" {
		t.Fatalf("unexpected tags: %v", job.Tags)
	}

	// A claimed job is invisible to other claimers.
	second, err := repo.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if second == nil || second.ID != secondID {
		t.Fatalf("expected second job, got %+v", second)
	}
	empty, err := repo.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if empty != nil {
		t.Fatalf("expected empty queue, got %+v", empty)
	}

	if err := repo.Delete(ctx, firstID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.MarkFailed(ctx, secondID, "Processing failed: parse csv"); err != nil {
		t.Fatalf("mark failed errored: %v", err)
	}

	var status, reason string
	err = pool.QueryRow(ctx,
		"SELECT status, failure_reason FROM upload_queue_jobs WHERE id = $1", secondID,
	).Scan(&status, &reason)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if status != "failed" || reason == "" {
		t.Fatalf("expected retained failed row, got %q %q", status, reason)
	}
}

func TestUploadQueueClaimEmptyIntegration(t *testing.T) {
	pool := openTestPool(t)
	repo := repository.NewUploadQueueRepository(pool)

	job, err := repo.ClaimNext(context.Background())
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil on empty queue, got %+v", job)
	}
}
