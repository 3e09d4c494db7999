package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecopath/ecopath/internal/events"
)

const heartbeatInterval = 30 * time.Second

// EventsStreamHandler streams bus events to clients as Server-Sent Events
type EventsStreamHandler struct {
	bus       *events.Bus
	done      chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus:  bus,
		done: make(chan struct{}),
		log:  log.With().Str("component", "events_stream").Logger(),
	}
}

// Close ends every open stream. http.Server.Shutdown does not wait for
// long-lived responses, so the server calls this on shutdown.
func (h *EventsStreamHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ServeHTTP handles GET /api/events/stream. ?types=A,B limits the stream to those event types.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	var allowedTypes map[events.EventType]bool
	if typesFilter := r.URL.Query().Get("types"); typesFilter != "" {
		allowedTypes = make(map[events.EventType]bool)
		for _, t := range strings.Split(typesFilter, ",") {
			allowedTypes[events.EventType(strings.ToUpper(strings.TrimSpace(t)))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	// Comment line so clients see the stream open immediately
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		h.log.Warn().Err(err).Msg("Streaming not supported by response writer")
		return
	}

	h.log.Debug().Int("subscribers", h.bus.Subscribers()).Msg("Event stream opened")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Debug().Msg("Event stream closed by client")
			return

		case <-h.done:
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			if err := rc.Flush(); err != nil {
				return
			}

		case event, ok := <-ch:
			if !ok {
				return
			}
			if allowedTypes != nil && !allowedTypes[event.Type] {
				continue
			}

			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to encode event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
