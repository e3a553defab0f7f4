package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/odvcencio/textgrid/pkg/errors"
)

const eventKeepAlive = 15 * time.Second

// handleEventStream streams telemetry events as server-sent events until
// the client disconnects or the server shuts down.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, http.StatusInternalServerError,
			errors.New(errors.ErrCodeInternal, "streaming unsupported"))
		return
	}

	ch, id := s.hub.SubscribeWithID()
	defer s.hub.Unsubscribe(id)
	metricEventSubscribers.Inc()
	defer metricEventSubscribers.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": connected %s\n\n", requestID(r.Context()))
	flusher.Flush()

	ping := time.NewTicker(eventKeepAlive)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
