package echo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
)

func TestJobHandlerListJobs(t *testing.T) {
	t.Parallel()

	result := `{"successCount":8}`
	e := newTestServer(testDeps{jobs: &fakeJobLister{jobs: []domain.UploadJob{
		{JobID: 2, Status: domain.JobStatusCompleted, Result: &result, SuccessCount: 8, FailureCount: 2, TotalRecords: 10},
		{JobID: 1, Status: domain.JobStatusFailed, Message: "Processing failed: parse csv"},
	}}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/loc-1/jobs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	if len(got.Data) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(got.Data))
	}
	if got.Data[0]["status"] != "completed" || got.Data[0]["success_count"] != float64(8) {
		t.Fatalf("unexpected first job: %#v", got.Data[0])
	}
	resultObj, ok := got.Data[0]["result"].(map[string]any)
	if !ok || resultObj["successCount"] != float64(8) {
		t.Fatalf("expected embedded result json, got %#v", got.Data[0]["result"])
	}
	if _, present := got.Data[1]["result"]; present {
		t.Fatalf("expected no result on failed job, got %#v", got.Data[1]["result"])
	}
}

func TestJobHandlerListJobsEmpty(t *testing.T) {
	t.Parallel()

	e := newTestServer(testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/loc-1/jobs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	if len(got.Data) != 0 {
		t.Fatalf("expected no jobs, got %d", len(got.Data))
	}
}
