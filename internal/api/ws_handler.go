package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/phrazzld/slotswap-api/internal/redact"
)

// NotificationServer takes over an authenticated request as a live
// notification connection.
type NotificationServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

// NotificationHandler handles GET /ws
type NotificationHandler struct {
	server NotificationServer
	logger *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(server NotificationServer, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		server: server,
		logger: logger.With(slog.String("component", "notification_handler")),
	}
}

// Connect upgrades the request to a websocket for the authenticated user.
func (h *NotificationHandler) Connect(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	// On failure the upgrader has already replied to the client.
	if err := h.server.Serve(w, r, userID); err != nil {
		log.Debug("websocket connection not established",
			redact.Attr(err),
			slog.String("user_id", userID.String()))
	}
}
