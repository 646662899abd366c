/*
Package easel is a surface lifecycle binding: the thin, synchronous bridge
between a script-engine host and a rendering runtime.

A surface is one independently mounted UI tree, identified by a numeric ID the
embedder allocates. The binding exposes exactly three lifecycle operations -
start, replace props, stop - and forwards each into the runtime on the
caller's goroutine, in issuance order, without buffering or reordering.

# Concept

Easel owns no rendering and no scripting. The host owns the execution-context
instances (vm.Instance) and decides when to call; the render runtime
(ports.RenderRuntime) owns every pixel. Easel sits between them and does the
bookkeeping the contract needs: which surface IDs are active, which module
each one runs, and which props generation the runtime last observed. This
Hexagonal Architecture keeps the core enforceable and lets adapters (HTTP,
MCP, in-process renderers) reuse the same Registry.

# Key Guarantees

  - Explicit violations: starting an active ID, or updating/stopping an
    inactive one, fails with a distinct domain.InvalidStateError instead of
    corrupting runtime state.
  - Wholesale props: a props update replaces the previous tree entirely;
    trees are never merged.
  - Order preservation: operations for one surface reach the runtime exactly
    in issuance order, because the binding never queues.
  - No internal locking: per-surface serialization stays the caller's
    responsibility (pkg/guard helps multi-goroutine hosts uphold it).

# Usage

Construct a Registry around your runtime, then drive surfaces under an
execution-context instance:

	package main

	import (
		"context"
		"log"

		"github.com/easelhq/easel"
		"github.com/easelhq/easel/pkg/domain"
		"github.com/easelhq/easel/pkg/props"
		"github.com/easelhq/easel/pkg/vm"
	)

	func main() {
		reg, err := easel.New(myRuntime, easel.WithModulesDir("./modules"))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		inst := vm.New(vm.WithLabel("main"))
		defer inst.Close()

		if err := reg.StartSurface(ctx, inst, 1, "profile", props.MustParse(`{"user": "ada"}`), domain.DisplayModeVisible); err != nil {
			log.Fatal(err)
		}
		if err := reg.SetSurfaceProps(ctx, inst, 1, "profile", props.MustParse(`{"user": "grace"}`), domain.DisplayModeVisible); err != nil {
			log.Fatal(err)
		}
		if err := reg.StopSurface(ctx, inst, 1); err != nil {
			log.Fatal(err)
		}
	}

Surface IDs are allocated by the embedder, never by Easel; reusing an ID is
legal only after the previous tenure was stopped.
*/
package easel
