package echo

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/contact-sync/internal/application/automation"
	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/crm"
)

type workflowExecutor interface {
	Execute(ctx context.Context, event app.WorkflowEvent, action app.Action) (app.Result, error)
}

type WorkflowHandler struct {
	workflows workflowExecutor
}

func NewWorkflowHandler(workflows workflowExecutor) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

func (h *WorkflowHandler) MarkDND(c echo.Context) error {
	return h.run(c, app.ActionDND)
}

func (h *WorkflowHandler) Delete(c echo.Context) error {
	return h.run(c, app.ActionDelete)
}

func (h *WorkflowHandler) run(c echo.Context, action app.Action) error {
	var event app.WorkflowEvent
	if err := c.Bind(&event); err != nil {
		return errJSON(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if event.Location.ID == "" || event.FirstName == "" {
		return errJSON(c, http.StatusBadRequest, "bad_request", "location.id and first_name are required")
	}

	result, err := h.workflows.Execute(c.Request().Context(), event, action)
	if err != nil {
		if errors.Is(err, tenant.ErrLocationNotFound) {
			return errJSON(c, http.StatusNotFound, "not_found", "location not found")
		}
		var apiErr *crm.APIError
		if errors.As(err, &apiErr) {
			return errJSON(c, apiErr.StatusCode, "upstream_error", apiErr.Message)
		}
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to run workflow action")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: result})
}
