package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/host"
)

// SurfaceCard returns a ViewRenderer that draws a surface record as a
// terminal card using glamour. If the terminal renderer cannot be built the
// card falls back to raw markdown.
func SurfaceCard() host.ViewRenderer {
	// Auto style detects light and dark backgrounds.
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())

	return func(surface *domain.Surface) (string, error) {
		md := surfaceMarkdown(surface)
		if err != nil || r == nil {
			return md, nil
		}
		return r.Render(md)
	}
}

func surfaceMarkdown(surface *domain.Surface) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Surface %s: %s\n\n", surface.ID, surface.Module)
	fmt.Fprintf(&b, "- **Mode**: %s\n", surface.Mode)
	fmt.Fprintf(&b, "- **Generation**: %d\n\n", surface.Generation)
	fmt.Fprintf(&b, "```json\n%s\n```\n", surface.Props.String())
	return b.String()
}
