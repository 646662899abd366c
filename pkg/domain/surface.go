package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/easelhq/easel/pkg/props"
)

// SurfaceID identifies a surface within a running process. IDs are allocated
// by the embedder and treated as opaque here; the library never invents one.
type SurfaceID int64

// ParseSurfaceID parses the decimal representation used by the CLI and the
// HTTP layer.
func ParseSurfaceID(s string) (SurfaceID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid surface id %q", s)
	}
	return SurfaceID(n), nil
}

func (id SurfaceID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Surface is the activity record kept for a started surface. It exists from
// StartSurface until StopSurface; everything else about the surface (its
// rendered tree, its resources) is owned by the render runtime.
type Surface struct {
	ID     SurfaceID   `json:"id"`
	Module string      `json:"module"`
	Props  props.Value `json:"props"`
	Mode   DisplayMode `json:"mode"`

	// Generation counts renders of this surface: 1 for the initial props,
	// incremented on every replacement. Observability only.
	Generation uint64 `json:"generation"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy. Stores clone on both save and load so callers
// and persisted records never share a props tree.
func (s *Surface) Clone() *Surface {
	if s == nil {
		return nil
	}
	out := *s
	out.Props = s.Props.Clone()
	return &out
}
