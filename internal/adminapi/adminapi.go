// Package adminapi implements the small HTTP surface a browser client
// uses before it ever opens a WebSocket: generating a fresh room code and
// a liveness banner (§4.5).
package adminapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RoseWrightdev/rtc-signal/internal/logging"
	"github.com/RoseWrightdev/rtc-signal/internal/room"
)

// Handler serves the admin HTTP endpoints.
type Handler struct {
	registry *room.Registry
}

// NewHandler constructs a Handler around the shared room Registry — the
// same registry instance the Coordinator uses, so a generated code is
// immediately joinable.
func NewHandler(registry *room.Registry) *Handler {
	return &Handler{registry: registry}
}

// GenerateCode handles GET /generate-code: draws an unused room code,
// pre-creates the (empty) room under it, and returns the code as a plain
// text body.
func (h *Handler) GenerateCode(c *gin.Context) {
	code, err := h.registry.Generate()
	if err != nil {
		logging.Warn(c.Request.Context(), "code generation failed")
		c.String(http.StatusServiceUnavailable, "resource exhausted")
		return
	}
	c.String(http.StatusOK, string(code))
}

// Index handles GET /: a minimal plain-text banner confirming the
// service is reachable.
func (h *Handler) Index(c *gin.Context) {
	c.String(http.StatusOK, "rtc-signal: 1:1 WebRTC signaling rendezvous server")
}
