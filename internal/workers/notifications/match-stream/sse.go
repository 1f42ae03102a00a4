// internal/workers/notifications/match-stream/sse.go
package matchstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chatnil-workers/internal/common/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type SubscriberSource interface {
	Subscriber(ctx context.Context, userID string) (*Subscriber, error)
}

// Handler serves the match stream over server-sent events.
type Handler struct {
	users  SubscriberSource
	poller *Poller
	logger logger.Logger
}

func NewHandler(users SubscriberSource, poller *Poller, log logger.Logger) *Handler {
	return &Handler{users: users, poller: poller, logger: log}
}

// Routes mounts GET /stream?userId=...
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stream", h.Stream)
	return r
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "userId is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	log := h.logger.With(map[string]interface{}{
		"userId":       userID,
		"connectionId": uuid.New().String(),
	})

	emit := func(ev Event) error {
		if err := WriteEvent(w, ev); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	ctx := r.Context()
	sub, err := h.users.Subscriber(ctx, userID)
	if err != nil {
		log.Error("subscriber lookup failed", map[string]interface{}{"error": err})
		_ = emit(Event{Name: EventError, Data: ErrorPayload{Message: "Internal server error"}})
		return
	}
	if sub == nil {
		_ = emit(Event{Name: EventError, Data: ErrorPayload{Message: "User not found"}})
		return
	}

	log.Info("match stream opened", map[string]interface{}{"role": sub.Role})
	if err := h.poller.Run(ctx, *sub, emit); err != nil {
		log.Debug("match stream write failed", map[string]interface{}{"error": err})
	}
	log.Info("match stream closed", nil)
}

// WriteEvent writes ev as one SSE frame: "event: name\ndata: json\n\n".
func WriteEvent(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
