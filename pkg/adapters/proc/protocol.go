// Package proc forwards lifecycle operations to a render host in a child
// process, as JSON lines over its stdin/stdout. One request line carries one
// operation; the host answers each with one response line. Requests are
// written in issuance order, which is how the ordering contract crosses the
// process boundary.
package proc

import (
	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
)

// maxLineBytes bounds one protocol line. Props trees ride inside requests,
// so the limit is well above typical documents.
const maxLineBytes = 4 << 20

// request is one lifecycle operation on the wire.
type request struct {
	ID         uint64             `json:"id"`
	Op         string             `json:"op"`
	Surface    domain.SurfaceID   `json:"surface"`
	Module     string             `json:"module,omitempty"`
	Props      props.Value        `json:"props"`
	Mode       domain.DisplayMode `json:"mode"`
	Generation uint64             `json:"generation,omitempty"`
	Instance   string             `json:"instance,omitempty"`
}

// response answers one request, matched by ID.
type response struct {
	ID    uint64 `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
