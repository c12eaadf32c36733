package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
)

type StartUploadInput struct {
	LocationID string
	FileName   string
	FilePath   string
	Mappings   string
	Tags       string
}

type StartUploadOutput struct {
	JobID  int64  `json:"job_id"`
	Status string `json:"status"`
}

type StartUpload interface {
	Execute(ctx context.Context, in StartUploadInput) (StartUploadOutput, error)
}

type uploadEnqueuer interface {
	Enqueue(ctx context.Context, payload domain.UploadPayload) (int64, error)
}

type jobCreator interface {
	Create(ctx context.Context, job domain.UploadJob) error
}

type locationSource interface {
	GetLocation(ctx context.Context, locationID string) (tenant.Location, error)
}

type mappingProvisioner interface {
	Provision(ctx context.Context, accessToken, locationID string, mapping domain.Mapping, tags []domain.TagRef) (domain.Mapping, error)
}

type startUpload struct {
	locations   locationSource
	provisioner mappingProvisioner
	queue       uploadEnqueuer
	jobs        jobCreator
	log         *slog.Logger
}

func NewStartUpload(locations locationSource, provisioner mappingProvisioner, queue uploadEnqueuer, jobs jobCreator, logger *slog.Logger) StartUpload {
	return &startUpload{
		locations:   locations,
		provisioner: provisioner,
		queue:       queue,
		jobs:        jobs,
		log:         logger,
	}
}

// Execute accepts one uploaded CSV: it validates the mapping and tag
// documents, provisions upstream fields/tags synchronously, enqueues
// the durable job, and creates the pending job-store row so the job id
// resolves immediately after the response returns. Provisioning
// failures abort the whole flow; nothing partially provisioned is ever
// queued.
func (uc *startUpload) Execute(ctx context.Context, in StartUploadInput) (StartUploadOutput, error) {
	var mapping domain.Mapping
	if err := json.Unmarshal([]byte(in.Mappings), &mapping); err != nil {
		return StartUploadOutput{}, fmt.Errorf("%w: %v", ErrInvalidMappings, err)
	}
	var tags []domain.TagRef
	if err := json.Unmarshal([]byte(in.Tags), &tags); err != nil {
		return StartUploadOutput{}, fmt.Errorf("%w: %v", ErrInvalidTags, err)
	}

	location, err := uc.locations.GetLocation(ctx, in.LocationID)
	if err != nil {
		return StartUploadOutput{}, err
	}

	resolved, err := uc.provisioner.Provision(ctx, location.AccessToken, in.LocationID, mapping, tags)
	if err != nil {
		return StartUploadOutput{}, err
	}

	resolvedJSON, err := json.Marshal(resolved)
	if err != nil {
		return StartUploadOutput{}, fmt.Errorf("marshal resolved mappings: %w", err)
	}
	tagNames := make([]string, 0, len(tags))
	for _, tag := range tags {
		tagNames = append(tagNames, tag.Name)
	}

	jobID, err := uc.queue.Enqueue(ctx, domain.UploadPayload{
		FileName:   in.FileName,
		FilePath:   in.FilePath,
		Mappings:   string(resolvedJSON),
		LocationID: in.LocationID,
		Tags:       tagNames,
	})
	if err != nil {
		return StartUploadOutput{}, fmt.Errorf("%w: %v", ErrEnqueueUpload, err)
	}

	// The processor self-heals a missing row, so a create failure only
	// costs visibility until the first processing update.
	if err := uc.jobs.Create(ctx, domain.UploadJob{
		JobID:      jobID,
		LocationID: in.LocationID,
		Status:     domain.JobStatusPending,
		Message:    "Upload queued",
		FileName:   in.FileName,
	}); err != nil {
		uc.log.Error("create job record failed", "job_id", jobID, "err", err)
	}

	uc.log.Info("upload queued", "job_id", jobID, "location_id", in.LocationID, "file", in.FileName)
	return StartUploadOutput{JobID: jobID, Status: "queued"}, nil
}
