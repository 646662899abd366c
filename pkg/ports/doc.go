/*
Package ports defines the ports (interfaces) around the Easel binding.

These interfaces decouple the lifecycle core from external implementations,
allowing the binding to drive different render runtimes and persist activity
records in different backends.

# Key Interfaces

  - RenderRuntime: the driven side; instantiates, re-renders and tears down
    surfaces.
  - Binding: the driving side; the operations adapters invoke.
  - SurfaceStore: persistence for per-surface activity records.
  - ModuleCatalog: resolves module names to manifests.
  - DistributedLocker: cross-replica locking for the Guard.
*/
package ports
