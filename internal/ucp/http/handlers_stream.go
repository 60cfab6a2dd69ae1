package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httpapi "github.com/payos-hq/payos-sandbox/internal/api/http"
	"github.com/payos-hq/payos-sandbox/internal/ucp/domain"
)

// StreamSettlementEvents streams settlement status transitions using
// Server-Sent Events (SSE). The stream closes itself once the
// settlement reaches a terminal status.
func (h *Handler) StreamSettlementEvents(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.CodeInvalidRequest, "settlement ID is required", nil)
		return
	}

	settlement, err := h.settlements.GetSettlement(c.Request.Context(), id)
	if err != nil {
		httpapi.FailFromError(c, err)
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		httpapi.Fail(c, http.StatusInternalServerError, httpapi.CodeInternalError, "streaming unsupported", nil)
		return
	}

	// Send initial settlement state
	initialData, _ := json.Marshal(gin.H{"settlement": settlement.Redacted()})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", string(initialData))
	flusher.Flush()

	if domain.IsTerminal(settlement.Status) {
		return
	}

	ctx := c.Request.Context()

	// Keep-alive pings
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	// Poll for updates
	pollTicker := time.NewTicker(250 * time.Millisecond)
	defer pollTicker.Stop()

	lastUpdatedAt := settlement.UpdatedAt

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-pollTicker.C:
			updated, err := h.settlements.GetSettlement(ctx, id)
			if err != nil {
				continue
			}

			if updated.UpdatedAt.After(lastUpdatedAt) {
				lastUpdatedAt = updated.UpdatedAt

				eventData, _ := json.Marshal(gin.H{"settlement": updated.Redacted()})
				fmt.Fprintf(c.Writer, "event: update\ndata: %s\n\n", string(eventData))
				flusher.Flush()
			}

			if domain.IsTerminal(updated.Status) {
				eventData, _ := json.Marshal(gin.H{"settlement_id": id, "status": updated.Status})
				fmt.Fprintf(c.Writer, "event: final\ndata: %s\n\n", string(eventData))
				flusher.Flush()
				return
			}
		}
	}
}
