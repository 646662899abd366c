package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventSurfaceStarted EventType = "surface_started"
	EventSurfaceUpdated EventType = "surface_updated"
	EventSurfaceStopped EventType = "surface_stopped"
	EventViolation      EventType = "violation"
)

// SurfaceEvent describes one observed lifecycle operation.
type SurfaceEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Surface   SurfaceID `json:"surface"`

	Module     string      `json:"module,omitempty"`
	Mode       DisplayMode `json:"mode"`
	Generation uint64      `json:"generation"`

	// Instance is the execution-context ID the operation was issued under.
	Instance string `json:"instance,omitempty"`

	// Op and Reason are set on violation events.
	Op     string `json:"op,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for binding observability. Hooks run
// synchronously on the calling goroutine, after the runtime has observed the
// operation; a nil field is skipped.
type LifecycleHooks struct {
	OnSurfaceStart  func(context.Context, *SurfaceEvent)
	OnSurfaceUpdate func(context.Context, *SurfaceEvent)
	OnSurfaceStop   func(context.Context, *SurfaceEvent)
	OnViolation     func(context.Context, *SurfaceEvent)
}
