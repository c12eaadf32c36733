package echo

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/contact-sync/internal/application/auth"
	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/crm"
)

// callbackPage closes the OAuth popup once the install completes.
const callbackPage = `<html>
  <body>
    <script>window.close();</script>
    <p>If the tab did not close, please close it manually.</p>
  </body>
</html>`

type installService interface {
	CompleteInstall(ctx context.Context, code string) error
	HandleInstallEvent(ctx context.Context, event app.InstallEvent) error
	RefreshToken(ctx context.Context, id string, scope app.TokenScope) (string, error)
}

type OAuthHandler struct {
	auth installService
}

func NewOAuthHandler(auth installService) *OAuthHandler {
	return &OAuthHandler{auth: auth}
}

func (h *OAuthHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return errJSON(c, http.StatusBadRequest, "missing_code", "an authorization code is required")
	}

	if err := h.auth.CompleteInstall(c.Request().Context(), code); err != nil {
		var apiErr *crm.APIError
		if errors.As(err, &apiErr) {
			return errJSON(c, http.StatusBadRequest, "oauth_error", apiErr.Message)
		}
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to complete the install")
	}
	return c.HTML(http.StatusOK, callbackPage)
}

func (h *OAuthHandler) AppInstalled(c echo.Context) error {
	var event app.InstallEvent
	if err := c.Bind(&event); err != nil {
		return errJSON(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	if err := h.auth.HandleInstallEvent(c.Request().Context(), event); err != nil {
		if errors.Is(err, tenant.ErrCompanyNotFound) {
			return errJSON(c, http.StatusNotFound, "not_found", "company not found")
		}
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to record the install")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: map[string]string{"status": "ok"}})
}

func (h *OAuthHandler) RefreshCompanyToken(c echo.Context) error {
	return h.refresh(c, app.ScopeAgency)
}

func (h *OAuthHandler) RefreshLocationToken(c echo.Context) error {
	return h.refresh(c, app.ScopeLocation)
}

func (h *OAuthHandler) refresh(c echo.Context, scope app.TokenScope) error {
	accessToken, err := h.auth.RefreshToken(c.Request().Context(), c.Param("id"), scope)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrCompanyNotFound), errors.Is(err, tenant.ErrLocationNotFound):
			return errJSON(c, http.StatusNotFound, "not_found", "agency or location not found")
		case errors.Is(err, app.ErrMissingRefreshToken):
			return errJSON(c, http.StatusNotFound, "not_found", "refresh token missing")
		}
		var apiErr *crm.APIError
		if errors.As(err, &apiErr) {
			return errJSON(c, apiErr.StatusCode, "upstream_error", apiErr.Message)
		}
		return errJSON(c, http.StatusInternalServerError, "internal_error", "failed to refresh the token")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: map[string]string{"access_token": accessToken}})
}
