package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/easelhq/easel/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines
// communication. Commands arrive one object per line; every outcome leaves
// as one envelope per line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// envelope is the output framing for JSON mode.
type envelope struct {
	Op      string          `json:"op,omitempty"`
	Surface *domain.Surface `json:"surface,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) ReadCommand(ctx context.Context) (Command, error) {
	line, err := h.ReadLine(ctx)
	if err != nil {
		return Command{}, err
	}

	var cmd Command
	if err := json.Unmarshal([]byte(line), &cmd); err != nil {
		return Command{}, fmt.Errorf("bad command line: %w", err)
	}
	if cmd.Op == "" {
		return Command{}, fmt.Errorf("bad command line: missing op")
	}
	return cmd, nil
}

func (h *JSONHandler) ReadLine(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line, err := SanitizeInput(strings.TrimSpace(text))
	if err != nil {
		return "", err
	}
	// Accept either a JSON string or a raw line.
	var val string
	if err := json.Unmarshal([]byte(line), &val); err == nil {
		return val, nil
	}
	return line, nil
}

func (h *JSONHandler) WriteRecord(ctx context.Context, op string, record *domain.Surface) error {
	return h.Encoder.Encode(envelope{Op: op, Surface: record})
}

func (h *JSONHandler) WriteError(ctx context.Context, err error) error {
	return h.Encoder.Encode(envelope{Error: err.Error()})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(envelope{Message: msg})
}
