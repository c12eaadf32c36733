package echo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
)

func TestCatalogHandlerListCustomFields(t *testing.T) {
	t.Parallel()

	e := newTestServer(testDeps{catalog: &fakeCatalogSource{
		fields: json.RawMessage(`{"customFields":[{"fieldKey":"contact.phone_type"}]}`),
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/loc-1/custom-fields", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "contact.phone_type") {
		t.Fatalf("expected upstream payload passed through, got: %q", rec.Body.String())
	}
}

func TestCatalogHandlerUnknownLocation(t *testing.T) {
	t.Parallel()

	e := newTestServer(testDeps{locations: &fakeLocationGetter{err: tenant.ErrLocationNotFound}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/missing/tags", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
