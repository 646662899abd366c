package host

import (
	"context"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
)

// Command verbs understood by the host loop.
const (
	CmdStart   = "start"
	CmdSet     = "set"
	CmdStop    = "stop"
	CmdInspect = "inspect"
	CmdList    = "list"
	CmdQuit    = "quit"
)

// Command is one parsed instruction for the host loop.
type Command struct {
	Op     string             `json:"op"`
	ID     domain.SurfaceID   `json:"id,omitempty"`
	Module string             `json:"module,omitempty"`
	Props  props.Value        `json:"props,omitempty"`
	Mode   domain.DisplayMode `json:"mode,omitempty"`
}

// IOHandler is the strategy for interacting with the operator.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// ReadCommand blocks until the operator submits the next command.
	ReadCommand(ctx context.Context) (Command, error)

	// ReadLine blocks until the operator submits one raw line. Used for
	// confirmations, where the answer is not a command.
	ReadLine(ctx context.Context) (string, error)

	// WriteRecord presents an activity record after a successful operation.
	WriteRecord(ctx context.Context, op string, record *domain.Surface) error

	// WriteError presents a failed operation.
	WriteError(ctx context.Context, err error) error

	// SystemOutput presents a meta-message to the operator (status updates,
	// shutdown notices). This is distinct from record rendering.
	SystemOutput(ctx context.Context, msg string) error
}
