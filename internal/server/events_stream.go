package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/widia-io/widia-flip-sub001/internal/events"
)

const (
	streamBuffer      = 100
	heartbeatInterval = 30 * time.Second
	wsWriteTimeout    = 10 * time.Second
)

// EventsStreamHandler pushes bus events to clients over SSE or a websocket.
type EventsStreamHandler struct {
	eventBus  *events.Bus
	log       zerolog.Logger
	heartbeat time.Duration
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus:  eventBus,
		log:       log.With().Str("component", "events_stream").Logger(),
		heartbeat: heartbeatInterval,
	}
}

// streamFilter narrows the stream by ?types=A,B and ?property_id=.
type streamFilter struct {
	types      []events.EventType
	propertyID string
}

func parseStreamFilter(r *http.Request) streamFilter {
	f := streamFilter{
		types:      events.AllEventTypes,
		propertyID: r.URL.Query().Get("property_id"),
	}
	if types := parseEventTypes(r.URL.Query().Get("types")); len(types) > 0 {
		f.types = types
	}
	return f
}

// parseEventTypes reads a comma-separated type list. Blank entries and repeats
// are dropped; nil means no filter was given.
func parseEventTypes(raw string) []events.EventType {
	var types []events.EventType
	seen := make(map[events.EventType]bool)
	for _, part := range strings.Split(raw, ",") {
		t := events.EventType(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	return types
}

// subscribe returns a buffered channel fed by the bus and the function that detaches it.
// Events are dropped rather than blocking the publisher when a client falls behind.
func (h *EventsStreamHandler) subscribe(f streamFilter) (<-chan *events.Event, func()) {
	ch := make(chan *events.Event, streamBuffer)
	unsubscribe := h.eventBus.SubscribeMany(f.types, func(event *events.Event) {
		if f.propertyID != "" && event.PropertyID() != f.propertyID {
			return
		}
		select {
		case ch <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	})
	return ch, unsubscribe
}

// ServeHTTP handles GET /api/events/stream requests (SSE).
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	filter := parseStreamFilter(r)
	eventChan, unsubscribe := h.subscribe(filter)
	defer unsubscribe()

	h.log.Info().
		Int("types", len(filter.types)).
		Str("property_id", filter.propertyID).
		Msg("Client connected to event stream")

	fmt.Fprintf(w, "data: %s\n\n", encodeMessage(map[string]interface{}{
		"type":    "connected",
		"message": "Connected to event stream",
	}))
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-eventChan:
			fmt.Fprintf(w, "data: %s\n\n", encodeEvent(event))
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "data: %s\n\n", encodeMessage(map[string]interface{}{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			}))
			flusher.Flush()
		}
	}
}

// ServeWebSocket handles GET /api/events/ws. The stream is one-way; anything
// the client sends is discarded.
func (h *EventsStreamHandler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	filter := parseStreamFilter(r)
	eventChan, unsubscribe := h.subscribe(filter)
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())
	h.log.Info().Str("property_id", filter.propertyID).Msg("Websocket client connected")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		var payload []byte
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Websocket client disconnected")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-eventChan:
			payload = encodeEvent(event)
		case <-heartbeat.C:
			if err := conn.Ping(ctx); err != nil {
				h.log.Debug().Err(err).Msg("Websocket ping failed")
				return
			}
			continue
		}

		if err := writeWS(ctx, conn, payload); err != nil {
			h.log.Debug().Err(err).Msg("Websocket write failed")
			return
		}
	}
}

func writeWS(ctx context.Context, conn *websocket.Conn, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func encodeEvent(event *events.Event) []byte {
	return encodeMessage(map[string]interface{}{
		"type":      string(event.Type),
		"module":    event.Module,
		"timestamp": event.Timestamp.Format(time.RFC3339Nano),
		"data":      event.Data,
	})
}

func encodeMessage(msg map[string]interface{}) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		return []byte(`{"type":"error","message":"failed to encode event"}`)
	}
	return data
}
