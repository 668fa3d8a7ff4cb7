package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/attaboy/fairway/internal/domain"
)

// StreamGroup handles GET .../stream as server-sent events: one "group" event
// with the current document, then one per committed version. A slow client
// skips intermediate versions and always receives the latest.
func (h *ScoringHandler) StreamGroup(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondError(w, domain.ErrInternal("streaming unsupported", nil))
		return
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ctx := r.Context()
	latest := make(chan *domain.Group, 1)
	cancel, err := h.svc.Subscribe(ctx, groupRef(r), func(g *domain.Group) {
		for {
			select {
			case latest <- g:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var sent int64
	for {
		select {
		case <-ctx.Done():
			return
		case g := <-latest:
			// The initial read can race the first notification.
			if g.Version <= sent {
				continue
			}
			sent = g.Version
			data, err := json.Marshal(g)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: group\ndata: %s\n\n", g.Version, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
