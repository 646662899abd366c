// Package mcp exposes the surface lifecycle to MCP clients: lifecycle
// operations as tools, the surface table and module catalog as resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/easelhq/easel"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/vm"
)

// SurfaceResponse is the structured tool output for operations that yield an
// activity record. Props travel JSON-encoded so the schema stays primitive.
type SurfaceResponse struct {
	ID         int64  `json:"id" jsonschema_description:"Caller-allocated surface identifier"`
	Module     string `json:"module" jsonschema_description:"Module the surface renders"`
	Props      string `json:"props" jsonschema_description:"JSON-encoded props tree"`
	Mode       string `json:"mode" jsonschema_description:"Display mode: visible, suspended or hidden"`
	Generation uint64 `json:"generation" jsonschema_description:"Render count, 1 for the initial props"`
}

// StopResponse is the structured tool output for stop_surface.
type StopResponse struct {
	ID      int64 `json:"id"`
	Stopped bool  `json:"stopped"`
}

// Server exposes a Binding as an MCP server.
type Server struct {
	binding   ports.Binding
	catalog   ports.ModuleCatalog
	inst      *vm.Instance
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithCatalog enables the module catalog resource.
func WithCatalog(catalog ports.ModuleCatalog) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithInstance sets the execution-context instance tool calls are issued
// under.
func WithInstance(inst *vm.Instance) Option {
	return func(s *Server) {
		s.inst = inst
	}
}

// NewServer creates an MCP server around the binding.
func NewServer(binding ports.Binding, opts ...Option) *Server {
	s := &Server{binding: binding}
	for _, opt := range opts {
		opt(s)
	}
	if s.inst == nil {
		s.inst = vm.New(vm.WithLabel("mcp"))
	}
	s.mcpServer = server.NewMCPServer("easel-mcp", strings.TrimSpace(easel.Version))
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// gracefully when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_surface
	startTool := mcp.NewTool("start_surface",
		mcp.WithDescription("Start a surface: create it under a caller-allocated ID and render the module with the initial props. Starting an active ID is rejected."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Surface identifier allocated by the caller")),
		mcp.WithString("module", mcp.Required(), mcp.Description("Module name to render")),
		mcp.WithString("props", mcp.Description("JSON object of initial props (optional; null selects the module defaults)")),
		mcp.WithString("mode", mcp.Description("Display mode: visible, suspended or hidden (default visible)")),
		mcp.WithOutputSchema[SurfaceResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartSurface))

	// TOOL: set_surface_props
	setTool := mcp.NewTool("set_surface_props",
		mcp.WithDescription("Replace a surface's props wholesale and re-render it. The previous tree is discarded, never merged into."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Surface identifier")),
		mcp.WithString("props", mcp.Required(), mcp.Description("JSON object of replacement props")),
		mcp.WithString("module", mcp.Description("Module name; when present it must match the one the surface was started with")),
		mcp.WithString("mode", mcp.Description("Display mode: visible, suspended or hidden (default visible)")),
		mcp.WithOutputSchema[SurfaceResponse](),
	)
	s.mcpServer.AddTool(setTool, mcp.NewStructuredToolHandler(s.handleSetSurfaceProps))

	// TOOL: stop_surface
	stopTool := mcp.NewTool("stop_surface",
		mcp.WithDescription("Stop a surface: tear it down and release its ID. Stopping an inactive ID is rejected."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Surface identifier")),
		mcp.WithOutputSchema[StopResponse](),
	)
	s.mcpServer.AddTool(stopTool, mcp.NewStructuredToolHandler(s.handleStopSurface))

	// TOOL: inspect_surface
	inspectTool := mcp.NewTool("inspect_surface",
		mcp.WithDescription("Read the activity record of an active surface."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Surface identifier")),
		mcp.WithOutputSchema[SurfaceResponse](),
	)
	s.mcpServer.AddTool(inspectTool, mcp.NewStructuredToolHandler(s.handleInspectSurface))

	// TOOL: list_surfaces
	s.mcpServer.AddTool(mcp.NewTool("list_surfaces",
		mcp.WithDescription("List the activity records of all active surfaces, ordered by ID."),
	), s.handleListSurfaces)
}

func (s *Server) handleListSurfaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.binding.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(records)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// Handler methods for structured tools

func (s *Server) handleStartSurface(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SurfaceResponse, error) {
	id, err := surfaceIDArg(args)
	if err != nil {
		return SurfaceResponse{}, err
	}
	module, _ := args["module"].(string)
	if module == "" {
		return SurfaceResponse{}, fmt.Errorf("module is required")
	}
	initialProps, err := propsArg(args)
	if err != nil {
		return SurfaceResponse{}, err
	}
	mode, err := modeArg(args)
	if err != nil {
		return SurfaceResponse{}, err
	}

	if err := s.binding.StartSurface(ctx, s.inst, id, module, initialProps, mode); err != nil {
		return SurfaceResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return s.respondRecord(ctx, id)
}

func (s *Server) handleSetSurfaceProps(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SurfaceResponse, error) {
	id, err := surfaceIDArg(args)
	if err != nil {
		return SurfaceResponse{}, err
	}
	newProps, err := propsArg(args)
	if err != nil {
		return SurfaceResponse{}, err
	}
	mode, err := modeArg(args)
	if err != nil {
		return SurfaceResponse{}, err
	}
	module, _ := args["module"].(string)

	if err := s.binding.SetSurfaceProps(ctx, s.inst, id, module, newProps, mode); err != nil {
		return SurfaceResponse{}, fmt.Errorf("set props failed: %w", err)
	}
	return s.respondRecord(ctx, id)
}

func (s *Server) handleStopSurface(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StopResponse, error) {
	id, err := surfaceIDArg(args)
	if err != nil {
		return StopResponse{}, err
	}
	if err := s.binding.StopSurface(ctx, s.inst, id); err != nil {
		return StopResponse{}, fmt.Errorf("stop failed: %w", err)
	}
	return StopResponse{ID: int64(id), Stopped: true}, nil
}

func (s *Server) handleInspectSurface(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SurfaceResponse, error) {
	id, err := surfaceIDArg(args)
	if err != nil {
		return SurfaceResponse{}, err
	}
	record, err := s.binding.Inspect(ctx, id)
	if err != nil {
		return SurfaceResponse{}, fmt.Errorf("inspect failed: %w", err)
	}
	return toResponse(record), nil
}

func (s *Server) respondRecord(ctx context.Context, id domain.SurfaceID) (SurfaceResponse, error) {
	record, err := s.binding.Inspect(ctx, id)
	if err != nil {
		// The operation went through; the record can already be gone again.
		return SurfaceResponse{ID: int64(id)}, nil
	}
	return toResponse(record), nil
}

func toResponse(record *domain.Surface) SurfaceResponse {
	return SurfaceResponse{
		ID:         int64(record.ID),
		Module:     record.Module,
		Props:      record.Props.String(),
		Mode:       record.Mode.String(),
		Generation: record.Generation,
	}
}

func surfaceIDArg(args map[string]interface{}) (domain.SurfaceID, error) {
	raw, ok := args["id"].(float64)
	if !ok {
		return 0, fmt.Errorf("id is required and must be a number")
	}
	return domain.SurfaceID(int64(raw)), nil
}

func propsArg(args map[string]interface{}) (props.Value, error) {
	raw, ok := args["props"].(string)
	if !ok || raw == "" {
		return props.Null(), nil
	}
	parsed, err := props.Parse([]byte(raw))
	if err != nil {
		return props.Value{}, fmt.Errorf("invalid props: %w", err)
	}
	return parsed, nil
}

func modeArg(args map[string]interface{}) (domain.DisplayMode, error) {
	raw, _ := args["mode"].(string)
	mode, err := domain.ParseDisplayMode(raw)
	if err != nil {
		return domain.DisplayModeVisible, fmt.Errorf("invalid mode %q", raw)
	}
	return mode, nil
}

func (s *Server) registerResources() {
	// EXPOSE: easel://surfaces
	s.mcpServer.AddResource(mcp.NewResource("easel://surfaces", "Active Surfaces",
		mcp.WithMIMEType("application/json"),
	), s.readSurfaces)

	// EXPOSE: easel://modules
	s.mcpServer.AddResource(mcp.NewResource("easel://modules", "Module Catalog",
		mcp.WithMIMEType("application/json"),
	), s.readModules)
}

func (s *Server) readSurfaces(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	records, err := s.binding.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list surfaces: %w", err)
	}
	jsonBytes, _ := json.Marshal(records)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "easel://surfaces",
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) readModules(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("no module catalog configured")
	}
	names, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	modules := make([]any, 0, len(names))
	for _, name := range names {
		if m, err := s.catalog.Resolve(ctx, name); err == nil {
			modules = append(modules, m)
		}
	}
	jsonBytes, _ := json.Marshal(modules)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "easel://modules",
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
