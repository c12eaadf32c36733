package echo

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
)

// recentJobLimit matches the dashboard widget, which shows the last
// five uploads per location.
const recentJobLimit = 5

type jobLister interface {
	ListRecent(ctx context.Context, locationID string, limit int) ([]domain.UploadJob, error)
}

type JobHandler struct {
	jobs jobLister
}

type jobResponse struct {
	JobID        int64           `json:"job_id"`
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	Result       json.RawMessage `json:"result,omitempty"`
	SuccessCount int64           `json:"success_count"`
	FailureCount int64           `json:"failure_count"`
	TotalRecords int64           `json:"total_records"`
	FileName     string          `json:"file_name"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewJobHandler(jobs jobLister) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) ListJobs(c echo.Context) error {
	jobs, err := h.jobs.ListRecent(c.Request().Context(), c.Param("locationId"), recentJobLimit)
	if err != nil {
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to list jobs")
	}

	out := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp := jobResponse{
			JobID:        job.JobID,
			Status:       string(job.Status),
			Message:      job.Message,
			SuccessCount: job.SuccessCount,
			FailureCount: job.FailureCount,
			TotalRecords: job.TotalRecords,
			FileName:     job.FileName,
			CreatedAt:    job.CreatedAt,
		}
		if job.Result != nil {
			resp.Result = json.RawMessage(*job.Result)
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
