package upload

import (
	"sync"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
)

type progressPublisher interface {
	Publish(locationID string, event domain.ProgressEvent)
}

// progressEmitter publishes one job's progress events, clamping the
// percentage to its high-water mark so the emitted sequence never
// decreases: a failure event reports the last reached percentage
// instead of resetting. Safe for use from the heartbeat goroutine.
type progressEmitter struct {
	publisher  progressPublisher
	locationID string

	mu   sync.Mutex
	last int
}

func newProgressEmitter(publisher progressPublisher, locationID string) *progressEmitter {
	return &progressEmitter{publisher: publisher, locationID: locationID}
}

func (e *progressEmitter) emit(event domain.ProgressEvent) {
	e.mu.Lock()
	if event.Progress < e.last {
		event.Progress = e.last
	} else {
		e.last = event.Progress
	}
	e.mu.Unlock()

	e.publisher.Publish(e.locationID, event)
}

func (e *progressEmitter) status(progress int, status domain.JobStatus, message string) {
	e.emit(domain.ProgressEvent{Progress: progress, Status: status, Message: message})
}

func (e *progressEmitter) counts(progress int, status domain.JobStatus, message string, success, failure, total int64) {
	e.emit(domain.ProgressEvent{
		Progress:     progress,
		Status:       status,
		Message:      message,
		SuccessCount: &success,
		FailureCount: &failure,
		TotalRecords: &total,
	})
}
