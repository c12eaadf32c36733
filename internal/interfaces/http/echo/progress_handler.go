package echo

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
)

type progressSubscriber interface {
	Subscribe(locationID string) (<-chan domain.ProgressEvent, func())
}

type ProgressHandler struct {
	broadcaster progressSubscriber
}

func NewProgressHandler(broadcaster progressSubscriber) *ProgressHandler {
	return &ProgressHandler{broadcaster: broadcaster}
}

// Stream serves a location's live progress events over SSE. The stream
// stays open until the client disconnects; events published while no
// one is connected are not replayed.
func (h *ProgressHandler) Stream(c echo.Context) error {
	locationID := c.Param("locationId")

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events, cancel := h.broadcaster.Subscribe(locationID)
	defer cancel()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: job-progress\ndata: %s\n\n", data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
