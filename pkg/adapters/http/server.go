// Package http exposes the surface lifecycle as a REST control plane:
// lifecycle operations over chi routes, lifecycle events over SSE, and an
// embedded OpenAPI document describing both.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/schema"
	"github.com/easelhq/easel/pkg/vm"
)

// Server carries the handler state. Lifecycle calls are issued under one
// execution-context instance owned by the server; callers that need their
// operations attributed to their own instance pass it via WithInstance.
type Server struct {
	binding ports.Binding
	catalog ports.ModuleCatalog
	inst    *vm.Instance
	streams *StreamManager
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithCatalog enables the /modules routes.
func WithCatalog(catalog ports.ModuleCatalog) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithStreams attaches a stream manager whose Hooks are already wired into
// the binding, so lifecycle events reach SSE subscribers.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.streams = streams
	}
}

// WithInstance sets the execution-context instance lifecycle calls are
// issued under.
func WithInstance(inst *vm.Instance) Option {
	return func(s *Server) {
		s.inst = inst
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the control-plane handler around a binding. The binding
// is typically a Guard, since HTTP clients issue requests concurrently and
// the lifecycle contract wants one order per surface.
func NewHandler(binding ports.Binding, opts ...Option) http.Handler {
	s := &Server{binding: binding}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.inst == nil {
		s.inst = vm.New(vm.WithLabel("http"))
	}
	if s.streams == nil {
		s.streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", s.getOpenAPI)
	r.Get("/swagger", s.getSwagger)
	r.Get("/events", s.subscribeEvents)
	r.Route("/surfaces", func(r chi.Router) {
		r.Get("/", s.listSurfaces)
		r.Post("/", s.startSurface)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSurface)
			r.Delete("/", s.stopSurface)
			r.Put("/props", s.setSurfaceProps)
			r.Get("/events", s.subscribeSurfaceEvents)
		})
	})
	r.Get("/modules", s.listModules)
	r.Get("/modules/{name}", s.getModule)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startSurfaceRequest struct {
	ID     domain.SurfaceID   `json:"id"`
	Module string             `json:"module"`
	Props  props.Value        `json:"props,omitempty"`
	Mode   domain.DisplayMode `json:"mode,omitempty"`
}

type setSurfacePropsRequest struct {
	Module string             `json:"module,omitempty"`
	Props  props.Value        `json:"props,omitempty"`
	Mode   domain.DisplayMode `json:"mode,omitempty"`
}

// startSurface handles POST /surfaces.
func (s *Server) startSurface(w http.ResponseWriter, r *http.Request) {
	var body startSurfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Start surface: invalid request body", "err", err)
		return
	}
	if body.Module == "" {
		http.Error(w, "Module is required", http.StatusBadRequest)
		return
	}

	if err := s.binding.StartSurface(r.Context(), s.inst, body.ID, body.Module, body.Props, body.Mode); err != nil {
		s.writeOpError(w, "Start", err)
		return
	}
	s.respondRecord(w, r, body.ID, http.StatusCreated)
}

// setSurfaceProps handles PUT /surfaces/{id}/props. The props tree replaces
// the previous one wholesale; an omitted mode means visible.
func (s *Server) setSurfaceProps(w http.ResponseWriter, r *http.Request) {
	id, ok := s.surfaceID(w, r)
	if !ok {
		return
	}
	var body setSurfacePropsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Set surface props: invalid request body", "err", err)
		return
	}

	if err := s.binding.SetSurfaceProps(r.Context(), s.inst, id, body.Module, body.Props, body.Mode); err != nil {
		s.writeOpError(w, "Set props", err)
		return
	}
	s.respondRecord(w, r, id, http.StatusOK)
}

// stopSurface handles DELETE /surfaces/{id}.
func (s *Server) stopSurface(w http.ResponseWriter, r *http.Request) {
	id, ok := s.surfaceID(w, r)
	if !ok {
		return
	}
	if err := s.binding.StopSurface(r.Context(), s.inst, id); err != nil {
		s.writeOpError(w, "Stop", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getSurface handles GET /surfaces/{id}.
func (s *Server) getSurface(w http.ResponseWriter, r *http.Request) {
	id, ok := s.surfaceID(w, r)
	if !ok {
		return
	}
	record, err := s.binding.Inspect(r.Context(), id)
	if err != nil {
		s.writeOpError(w, "Inspect", err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

// listSurfaces handles GET /surfaces.
func (s *Server) listSurfaces(w http.ResponseWriter, r *http.Request) {
	records, err := s.binding.List(r.Context())
	if err != nil {
		s.writeOpError(w, "List", err)
		return
	}
	if records == nil {
		records = []*domain.Surface{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

// listModules handles GET /modules.
func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "No module catalog configured", http.StatusNotFound)
		return
	}
	names, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeOpError(w, "List modules", err)
		return
	}
	modules := make([]any, 0, len(names))
	for _, name := range names {
		m, err := s.catalog.Resolve(r.Context(), name)
		if err != nil {
			// Catalog changed between List and Resolve; skip the gone one.
			continue
		}
		modules = append(modules, m)
	}
	s.writeJSON(w, http.StatusOK, modules)
}

// getModule handles GET /modules/{name}. An unknown name is a missing
// resource here, not an invalid mutation, so it maps to 404.
func (s *Server) getModule(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "No module catalog configured", http.StatusNotFound)
		return
	}
	m, err := s.catalog.Resolve(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, domain.ErrModuleUnknown) {
		http.Error(w, fmt.Sprintf("Resolve module error: %v", err), http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeOpError(w, "Resolve module", err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// getHealth handles GET /health.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) surfaceID(w http.ResponseWriter, r *http.Request) (domain.SurfaceID, bool) {
	id, err := domain.ParseSurfaceID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid surface id: %v", err), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// respondRecord answers a successful mutation with the resulting activity
// record. The record can be gone again by the time we look; the status code
// already told the client the operation went through.
func (s *Server) respondRecord(w http.ResponseWriter, r *http.Request, id domain.SurfaceID, status int) {
	record, err := s.binding.Inspect(r.Context(), id)
	if err != nil {
		w.WriteHeader(status)
		return
	}
	s.writeJSON(w, status, record)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// writeOpError maps lifecycle errors onto status codes. Precondition
// violations unwrap to their sentinel via errors.Is.
func (s *Server) writeOpError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	var agg *schema.AggregateError
	var single *schema.ValidationError
	switch {
	case errors.Is(err, domain.ErrSurfaceAlreadyStarted):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrModuleMismatch):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSurfaceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrModuleUnknown):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &agg), errors.As(err, &single):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInstanceClosed):
		status = http.StatusServiceUnavailable
	}

	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "status", status, "err", err)
	}
}
