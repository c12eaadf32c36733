package echo

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/contact-sync/internal/application/upload"
	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/crm"
)

type uploadSaver interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, string, error)
	Remove(ctx context.Context, path string) error
}

type UploadHandler struct {
	useCase app.StartUpload
	files   uploadSaver
}

func NewUploadHandler(useCase app.StartUpload, files uploadSaver) *UploadHandler {
	return &UploadHandler{useCase: useCase, files: files}
}

// Upload accepts one multipart CSV together with its mapping and tag
// documents and answers 202 once the job is queued.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "missing_file", "a csv file is required")
	}
	mappings := c.FormValue("mappings")
	if mappings == "" {
		return errJSON(c, http.StatusBadRequest, "missing_mappings", "a mappings document is required")
	}
	tags := c.FormValue("tags")
	if tags == "" {
		tags = "[]"
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "bad_file", "could not read the uploaded file")
	}
	defer src.Close()

	name, path, err := h.files.Save(c.Request().Context(), fileHeader.Filename, src)
	if err != nil {
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to store the uploaded file")
	}

	out, err := h.useCase.Execute(c.Request().Context(), app.StartUploadInput{
		LocationID: c.Param("locationId"),
		FileName:   name,
		FilePath:   path,
		Mappings:   mappings,
		Tags:       tags,
	})
	if err != nil {
		// The stored file is useless once the job is rejected.
		_ = h.files.Remove(c.Request().Context(), path)
		switch {
		case errors.Is(err, app.ErrInvalidMappings):
			return errJSON(c, http.StatusBadRequest, "invalid_mappings", "mappings must be a JSON object of column to field")
		case errors.Is(err, app.ErrInvalidTags):
			return errJSON(c, http.StatusBadRequest, "invalid_tags", "tags must be a JSON array of tag references")
		case errors.Is(err, tenant.ErrLocationNotFound):
			return errJSON(c, http.StatusNotFound, "not_found", "location not found")
		}
		var apiErr *crm.APIError
		if errors.As(err, &apiErr) {
			return errJSON(c, apiErr.StatusCode, "upstream_error", apiErr.Message)
		}
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to queue the upload")
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}
