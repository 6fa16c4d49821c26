package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/services/notifications"
)

const (
	streamWriteWait    = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// NotificationService defines the notification operations needed by the HTTP handlers.
type NotificationService interface {
	List(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context) (<-chan models.Notification, func(), error)
}

var _ NotificationService = (*notifications.Service)(nil)

// NotificationHandlers serves the caller's notifications.
type NotificationHandlers struct {
	notifications  NotificationService
	originPatterns []string
}

// NewNotificationHandlers creates the notification handler set. originPatterns
// are the websocket origins accepted besides the request's own host.
func NewNotificationHandlers(svc NotificationService, originPatterns []string) *NotificationHandlers {
	return &NotificationHandlers{notifications: svc, originPatterns: originPatterns}
}

// Routes mounts the handlers on r.
func (h *NotificationHandlers) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stream", h.Stream)
	r.Put("/{id}/read", h.MarkRead)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /api/notifications.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.notifications.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]NotificationResponse, 0, len(items))
	for i := range items {
		out = append(out, newNotificationResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newNotificationResponse(n))
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream handles GET /api/notifications/stream. It upgrades to a websocket
// and pushes each new notification for the caller as a JSON message until
// either side closes. Client messages are ignored.
func (h *NotificationHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	events, cancel, err := h.notifications.Subscribe(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		log.Printf("notification stream: accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ctx := conn.CloseRead(r.Context())
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case n, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := writeTimeout(ctx, func(ctx context.Context) error {
				return wsjson.Write(ctx, conn, newNotificationResponse(&n))
			}); err != nil {
				log.Printf("notification stream: write: %v", err)
				return
			}
		case <-ticker.C:
			if err := writeTimeout(ctx, conn.Ping); err != nil {
				return
			}
		}
	}
}

func writeTimeout(ctx context.Context, write func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteWait)
	defer cancel()
	return write(ctx)
}
