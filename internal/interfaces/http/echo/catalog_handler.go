package echo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/crm"
)

type catalogSource interface {
	ListCustomFields(ctx context.Context, accessToken, locationID string) (json.RawMessage, error)
	ListTags(ctx context.Context, accessToken, locationID string) (json.RawMessage, error)
}

type locationGetter interface {
	GetLocation(ctx context.Context, locationID string) (tenant.Location, error)
}

// CatalogHandler proxies a location's custom field and tag catalogs so
// the mapping UI can offer existing targets.
type CatalogHandler struct {
	crm       catalogSource
	locations locationGetter
}

func NewCatalogHandler(crm catalogSource, locations locationGetter) *CatalogHandler {
	return &CatalogHandler{crm: crm, locations: locations}
}

func (h *CatalogHandler) ListCustomFields(c echo.Context) error {
	return h.proxy(c, h.crm.ListCustomFields)
}

func (h *CatalogHandler) ListTags(c echo.Context) error {
	return h.proxy(c, h.crm.ListTags)
}

func (h *CatalogHandler) proxy(c echo.Context, fetch func(ctx context.Context, accessToken, locationID string) (json.RawMessage, error)) error {
	locationID := c.Param("locationId")

	location, err := h.locations.GetLocation(c.Request().Context(), locationID)
	if err != nil {
		if errors.Is(err, tenant.ErrLocationNotFound) {
			return errJSON(c, http.StatusNotFound, "not_found", "location not found")
		}
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to load location")
	}

	out, err := fetch(c.Request().Context(), location.AccessToken, locationID)
	if err != nil {
		var apiErr *crm.APIError
		if errors.As(err, &apiErr) {
			return errJSON(c, apiErr.StatusCode, "upstream_error", apiErr.Message)
		}
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to fetch catalog")
	}
	return c.JSONBlob(http.StatusOK, out)
}
