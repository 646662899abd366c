// Package middleware provides SurfaceStore wrappers that transform records
// on their way to and from a backing store.
package middleware

import "github.com/easelhq/easel/pkg/ports"

// Middleware wraps a SurfaceStore to add behavior.
type Middleware func(ports.SurfaceStore) ports.SurfaceStore
