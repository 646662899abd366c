// Command renderhost is the child-process fixture for the proc runtime
// tests: a minimal render host serving the line protocol on stdin/stdout.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/easelhq/easel/pkg/adapters/inproc"
	"github.com/easelhq/easel/pkg/adapters/proc"
	"github.com/easelhq/easel/pkg/domain"
)

type blankComponent struct{}

func (blankComponent) Mount(ctx context.Context, s *domain.Surface) error  { return nil }
func (blankComponent) Render(ctx context.Context, s *domain.Surface) error { return nil }
func (blankComponent) Unmount(ctx context.Context) error                   { return nil }

func main() {
	rt := inproc.New()
	rt.Register("Main", func() inproc.Component { return blankComponent{} })

	if err := proc.Serve(context.Background(), os.Stdin, os.Stdout, rt, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
