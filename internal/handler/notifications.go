package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

// NoticeSource streams the notices addressed to one viewer.
type NoticeSource interface {
	Subscribe(ctx context.Context, viewerID string) <-chan model.Notice
}

// NotificationHandler streams notices as server-sent events.
type NotificationHandler struct {
	source    NoticeSource
	keepAlive time.Duration
}

// NewNotificationHandler constructs a NotificationHandler. A comment line is
// written every keepAlive to hold idle connections open.
func NewNotificationHandler(source NoticeSource, keepAlive time.Duration) *NotificationHandler {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &NotificationHandler{source: source, keepAlive: keepAlive}
}

// Stream handles GET /notifications
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	ctx := r.Context()
	viewer := ViewerID(ctx)
	notices := h.source.Subscribe(ctx, viewer)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.ErrorErr(log.CatNotify, "streaming unsupported", err, "viewer", viewer)
		return
	}
	log.Debug(log.CatNotify, "stream opened", "viewer", viewer)
	defer log.Debug(log.CatNotify, "stream closed", "viewer", viewer)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case n, ok := <-notices:
			if !ok {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				log.ErrorErr(log.CatNotify, "encode notice", err, "viewer", viewer)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: notice\ndata: %s\n\n", n.ID, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
