package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/easelhq/easel/pkg/domain"
)

// Subscriber channels buffer this many events before deliveries to that
// subscriber are dropped.
const streamBuffer = 16

// StreamManager fans lifecycle events out to SSE subscribers. Create one,
// wire its Hooks into the binding, and hand it to NewHandler via WithStreams.
type StreamManager struct {
	mu     sync.RWMutex
	global map[chan string]struct{}
	scoped map[domain.SurfaceID]map[chan string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		global: make(map[chan string]struct{}),
		scoped: make(map[domain.SurfaceID]map[chan string]struct{}),
	}
}

// Hooks returns lifecycle hooks that broadcast every event to subscribers.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	broadcast := func(_ context.Context, e *domain.SurfaceEvent) {
		sm.Broadcast(e)
	}
	return domain.LifecycleHooks{
		OnSurfaceStart:  broadcast,
		OnSurfaceUpdate: broadcast,
		OnSurfaceStop:   broadcast,
		OnViolation:     broadcast,
	}
}

// Subscribe registers for events of every surface.
func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	sm.global[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.global[ch]; ok {
			delete(sm.global, ch)
			close(ch)
		}
	}
}

// SubscribeSurface registers for events of one surface only.
func (sm *StreamManager) SubscribeSurface(id domain.SurfaceID) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	if _, ok := sm.scoped[id]; !ok {
		sm.scoped[id] = make(map[chan string]struct{})
	}
	sm.scoped[id][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.scoped[id]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(sm.scoped, id)
			}
		}
	}
}

// Broadcast delivers one event to every matching subscriber. Full subscriber
// buffers drop the event rather than block the lifecycle call.
func (sm *StreamManager) Broadcast(e *domain.SurfaceEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("SSE: Event marshal failed", "err", err)
		return
	}
	msg := string(data)

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.global {
		select {
		case ch <- msg:
		default:
			slog.Warn("SSE: Client buffer full, dropping event", "surface", e.Surface)
		}
	}
	for ch := range sm.scoped[e.Surface] {
		select {
		case ch <- msg:
		default:
			slog.Warn("SSE: Client buffer full, dropping event", "surface", e.Surface)
		}
	}
}

// subscribeEvents handles GET /events.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	ch, cancel := s.streams.Subscribe()
	s.serveStream(w, r, ch, cancel)
}

// subscribeSurfaceEvents handles GET /surfaces/{id}/events.
func (s *Server) subscribeSurfaceEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.surfaceID(w, r)
	if !ok {
		return
	}
	ch, cancel := s.streams.SubscribeSurface(id)
	s.serveStream(w, r, ch, cancel)
}

func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, ch chan string, cancel func()) {
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	filter := parseTypeFilter(r.URL.Query().Get("types"))

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: Client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !filter.keep(msg) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// typeFilter restricts a stream to selected event types. Nil means no
// filtering.
type typeFilter map[domain.EventType]struct{}

func parseTypeFilter(raw string) typeFilter {
	if raw == "" {
		return nil
	}
	f := make(typeFilter)
	for _, part := range strings.Split(raw, ",") {
		switch strings.TrimSpace(part) {
		case "started":
			f[domain.EventSurfaceStarted] = struct{}{}
		case "updated":
			f[domain.EventSurfaceUpdated] = struct{}{}
		case "stopped":
			f[domain.EventSurfaceStopped] = struct{}{}
		case "violations":
			f[domain.EventViolation] = struct{}{}
		}
	}
	return f
}

// keep deserializes the payload to read its type, which has a cost per
// message; filtering could move into Broadcast if that ever shows up.
func (f typeFilter) keep(msg string) bool {
	if f == nil {
		return true
	}
	var e domain.SurfaceEvent
	if err := json.Unmarshal([]byte(msg), &e); err != nil {
		return true
	}
	_, ok := f[e.Type]
	return ok
}
