package upload

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
	"golang.org/x/sync/errgroup"
)

// Progress checkpoint bands: row parsing reports within 10–30%, the
// submission heartbeat scales done/total into 30–80%, then 85% once all
// submissions settle, 95% before cleanup, 100% on completion.
const (
	progressParseStart    = 10
	progressParseCeiling  = 30
	progressSubmitBand    = 50
	progressSubmitCeiling = 80
	progressSettled       = 85
	progressCleanup       = 95
	progressDone          = 100
)

type WorkerConfig struct {
	Workers           int
	PollInterval      time.Duration
	UploadConcurrency int
	ParseReportEvery  int
	HeartbeatInterval time.Duration
}

type uploadQueue interface {
	ClaimNext(ctx context.Context) (*domain.QueuedUpload, error)
	Delete(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

type workerJobStore interface {
	UpsertByJobID(ctx context.Context, jobID int64, update domain.JobUpdate) error
}

type contactUpserter interface {
	UpsertContact(ctx context.Context, accessToken, locationID string, payload map[string]any) (string, error)
}

type uploadFiles interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// Worker consumes queued uploads: it stream-parses the CSV, submits
// every normalized contact under a bounded concurrency limit, and keeps
// the job store and progress subscribers current throughout.
type Worker struct {
	queue     uploadQueue
	jobs      workerJobStore
	crm       contactUpserter
	files     uploadFiles
	progress  progressPublisher
	locations locationSource
	cfg       WorkerConfig
	log       *slog.Logger

	once sync.Once
}

func NewWorker(queue uploadQueue, jobs workerJobStore, crm contactUpserter, files uploadFiles, progress progressPublisher, locations locationSource, cfg WorkerConfig, logger *slog.Logger) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.UploadConcurrency <= 0 {
		cfg.UploadConcurrency = 3
	}
	if cfg.UploadConcurrency > 10 {
		cfg.UploadConcurrency = 10
	}
	if cfg.ParseReportEvery <= 0 {
		cfg.ParseReportEvery = 10
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = time.Second
	}

	return &Worker{
		queue:     queue,
		jobs:      jobs,
		crm:       crm,
		files:     files,
		progress:  progress,
		locations: locations,
		cfg:       cfg,
		log:       logger,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		for i := 0; i < w.cfg.Workers; i++ {
			go w.workerLoop(ctx)
		}
	})
}

func (w *Worker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.queue.ClaimNext(ctx)
		if err != nil {
			w.log.Error("claim next upload job failed", "err", err)
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}
		if job == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if err := w.ProcessJob(ctx, *job); err != nil {
			w.log.Error("process upload job failed", "job_id", job.ID, "err", err)
		}
	}
}

// ProcessJob runs one upload end to end. Per-contact submission
// failures are counted, never fatal; only infrastructure failures
// (unreadable CSV, invalid mapping document, file cleanup) transition
// the job to failed. Once claimed, a job runs to completion or failure;
// there is no mid-job cancellation.
func (w *Worker) ProcessJob(ctx context.Context, job domain.QueuedUpload) error {
	emitter := newProgressEmitter(w.progress, job.LocationID)
	w.log.Debug("processing upload job", "job_id", job.ID, "file", job.FileName)

	startMsg := "Starting CSV processing"
	w.updateJob(ctx, job.ID, domain.JobUpdate{
		Status:     statusPtr(domain.JobStatusProcessing),
		Message:    &startMsg,
		FileName:   &job.FileName,
		LocationID: &job.LocationID,
	})
	emitter.status(0, domain.JobStatusProcessing, startMsg)

	var mapping domain.Mapping
	if err := json.Unmarshal([]byte(job.Mappings), &mapping); err != nil {
		return w.failJob(ctx, job, emitter, fmt.Errorf("parse mapping document: %w", err))
	}
	mapper, err := domain.NewRowMapper(mapping, job.Tags)
	if err != nil {
		return w.failJob(ctx, job, emitter, err)
	}

	location, err := w.locations.GetLocation(ctx, job.LocationID)
	if err != nil {
		return w.failJob(ctx, job, emitter, fmt.Errorf("load location: %w", err))
	}

	emitter.status(progressParseStart, domain.JobStatusProcessing, "Reading CSV file")
	contacts, err := w.parseCSV(ctx, job, mapper, emitter)
	if err != nil {
		return w.failJob(ctx, job, emitter, fmt.Errorf("parse csv: %w", err))
	}

	total := int64(len(contacts))
	startedMsg := fmt.Sprintf("Started processing of %d contacts", total)
	emitter.counts(progressParseCeiling, domain.JobStatusProcessing, startedMsg, 0, 0, total)
	w.updateJob(ctx, job.ID, domain.JobUpdate{
		Status:       statusPtr(domain.JobStatusProcessing),
		Message:      &startedMsg,
		TotalRecords: &total,
	})

	var success, failure atomic.Int64
	stopHeartbeat := w.startHeartbeat(emitter, &success, &failure, total)
	defer stopHeartbeat()

	g := new(errgroup.Group)
	g.SetLimit(w.cfg.UploadConcurrency)
	for _, c := range contacts {
		payload := c.Payload(job.LocationID)
		g.Go(func() error {
			if _, err := w.crm.UpsertContact(ctx, location.AccessToken, job.LocationID, payload); err != nil {
				w.log.Error("upsert contact failed", "job_id", job.ID, "err", err)
				failure.Add(1)
				// Isolated failure: siblings keep running.
				return nil
			}
			success.Add(1)
			return nil
		})
	}
	// Every submission settles before the job proceeds to cleanup.
	_ = g.Wait()
	stopHeartbeat()

	successTotal, failureTotal := success.Load(), failure.Load()
	w.log.Debug("submissions settled", "job_id", job.ID, "success", successTotal, "failure", failureTotal)

	settledMsg := fmt.Sprintf("CSV processed with %d records", total)
	emitter.counts(progressSettled, domain.JobStatusProcessing, settledMsg, successTotal, failureTotal, total)
	// Counts are persisted here so a failed cleanup still leaves them
	// in the final row.
	w.updateJob(ctx, job.ID, domain.JobUpdate{
		Status:       statusPtr(domain.JobStatusProcessing),
		Message:      &settledMsg,
		SuccessCount: &successTotal,
		FailureCount: &failureTotal,
		TotalRecords: &total,
	})

	cleanupMsg := "Cleaning up temporary files"
	emitter.counts(progressCleanup, domain.JobStatusProcessing, cleanupMsg, successTotal, failureTotal, total)
	w.updateJob(ctx, job.ID, domain.JobUpdate{
		Status:  statusPtr(domain.JobStatusProcessing),
		Message: &cleanupMsg,
	})
	if err := w.files.Remove(ctx, job.FilePath); err != nil {
		return w.failJob(ctx, job, emitter, fmt.Errorf("remove upload file: %w", err))
	}

	result := map[string]any{
		"processedCount": total,
		"successCount":   successTotal,
		"failureCount":   failureTotal,
		"totalRecords":   total,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return w.failJob(ctx, job, emitter, fmt.Errorf("marshal result: %w", err))
	}
	resultText := string(resultJSON)

	doneMsg := "Upload completed successfully"
	emitter.emit(domain.ProgressEvent{
		Progress:     progressDone,
		Status:       domain.JobStatusCompleted,
		Message:      doneMsg,
		Result:       result,
		SuccessCount: &successTotal,
		FailureCount: &failureTotal,
		TotalRecords: &total,
	})
	w.updateJob(ctx, job.ID, domain.JobUpdate{
		Status:       statusPtr(domain.JobStatusCompleted),
		Message:      &doneMsg,
		Result:       &resultText,
		SuccessCount: &successTotal,
		FailureCount: &failureTotal,
		TotalRecords: &total,
	})

	if err := w.queue.Delete(ctx, job.ID); err != nil {
		w.log.Error("delete completed queue job failed", "job_id", job.ID, "err", err)
	}
	w.log.Info("upload job completed", "job_id", job.ID, "success", successTotal, "failure", failureTotal, "total", total)
	return nil
}

// parseCSV streams the uploaded file row by row, normalizing each row
// inline. Only the normalized contacts accumulate in memory.
func (w *Worker) parseCSV(ctx context.Context, job domain.QueuedUpload, mapper *domain.RowMapper, emitter *progressEmitter) ([]domain.NormalizedContact, error) {
	f, err := w.files.Open(ctx, job.FilePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var contacts []domain.NormalizedContact
	rowCount := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		contacts = append(contacts, mapper.MapRow(row)...)
		rowCount++

		if rowCount%w.cfg.ParseReportEvery == 0 {
			pct := progressParseStart + rowCount/100
			if pct > progressParseCeiling {
				pct = progressParseCeiling
			}
			emitter.counts(pct, domain.JobStatusProcessing,
				fmt.Sprintf("Parsed %d rows from CSV", rowCount),
				0, 0, int64(len(contacts)))
		}
	}
	return contacts, nil
}

// startHeartbeat emits a best-effort progress tick each interval while
// submissions are in flight. The returned stop func is idempotent and
// does not return until the heartbeat goroutine has exited, so no tick
// fires after it.
func (w *Worker) startHeartbeat(emitter *progressEmitter, success, failure *atomic.Int64, total int64) (stop func()) {
	if total <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(w.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s, f := success.Load(), failure.Load()
				processed := s + f
				pct := progressParseCeiling + int(math.Round(float64(processed)/float64(total)*progressSubmitBand))
				if pct > progressSubmitCeiling {
					pct = progressSubmitCeiling
				}
				emitter.counts(pct, domain.JobStatusProcessing,
					fmt.Sprintf("Processing contacts (%d/%d)", processed, total),
					s, f, total)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}

func (w *Worker) failJob(ctx context.Context, job domain.QueuedUpload, emitter *progressEmitter, cause error) error {
	msg := fmt.Sprintf("Processing failed: %v", cause)
	w.log.Error("upload job failed", "job_id", job.ID, "err", cause)

	emitter.status(0, domain.JobStatusFailed, msg)
	// Partial update: previously persisted counts survive.
	w.updateJob(ctx, job.ID, domain.JobUpdate{
		Status:  statusPtr(domain.JobStatusFailed),
		Message: &msg,
	})
	if err := w.queue.MarkFailed(ctx, job.ID, msg); err != nil {
		w.log.Error("mark queue job failed", "job_id", job.ID, "err", err)
	}
	return cause
}

// updateJob is best-effort: a store hiccup never aborts processing.
func (w *Worker) updateJob(ctx context.Context, jobID int64, update domain.JobUpdate) {
	if err := w.jobs.UpsertByJobID(ctx, jobID, update); err != nil {
		w.log.Error("update job record failed", "job_id", jobID, "err", err)
	}
}

func statusPtr(status domain.JobStatus) *domain.JobStatus {
	return &status
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
