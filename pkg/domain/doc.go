/*
Package domain contains the core domain models for the Easel binding.

It defines the fundamental entities of the surface lifecycle: identifiers,
activity records, display modes, lifecycle events and the error taxonomy.
This package is kept pure and free of I/O or persistence concerns, following
Hexagonal Architecture principles.

# Key Entities

  - SurfaceID: the opaque, externally-allocated numeric surface identifier.
  - Surface: the activity record kept between StartSurface and StopSurface.
  - DisplayMode: the rendering-visibility hint (visible, suspended, hidden).
  - SurfaceEvent / LifecycleHooks: the observability surface of the binding.
  - InvalidStateError: explicit reporting for lifecycle contract violations.
*/
package domain
