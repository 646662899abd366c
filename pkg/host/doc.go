/*
Package host implements the interactive command loop that drives a surface
registry from a terminal or a structured client.

It acts as the bridge between the lifecycle binding and an operator. The
host reads commands through pluggable handlers, applies them to the binding,
and reports outcomes back; the first interrupt stops every active surface,
the second one aborts the loop.

# Key Components

  - Host: the loop orchestrator around a ports.Binding.
  - IOHandler: decouples how commands arrive (CLI, JSON-lines).
  - TextHandler: the interactive CLI implementation with input sanitizing.
  - JSONHandler: the structured implementation for headless drivers.

# Usage

	h := host.New(binding,
		host.WithHandler(host.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := h.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package host
