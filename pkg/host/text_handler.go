package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
)

// ViewRenderer transforms an activity record into its presentation form.
// This allows for TUI rendering (cards, ANSI styling) without coupling the
// host package to a terminal library.
type ViewRenderer func(*domain.Surface) (string, error)

// TextHandler implements the line-based interactive interface.
//
// Commands:
//
//	start <id> <module> [props-json] [mode]
//	set <id> <props-json> [mode]
//	stop <id>
//	inspect <id>
//	list
//	quit
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ViewRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithRenderer configures the record renderer.
func WithRenderer(renderer ViewRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump moves lines from the reader onto a channel so ReadCommand can race
// reads against context cancellation. A blocked ReadString cannot be
// interrupted directly.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff to prevent CPU spikes on persistent failure.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (h *TextHandler) ReadCommand(ctx context.Context) (Command, error) {
	for {
		line, err := h.ReadLine(ctx)
		if err != nil {
			return Command{}, err
		}
		if line == "" {
			continue
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return cmd, nil
	}
}

func (h *TextHandler) ReadLine(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			// Don't print anything here, just exit silently.
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}

			line, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return line, nil
		}
	}
}

func (h *TextHandler) WriteRecord(ctx context.Context, op string, record *domain.Surface) error {
	if h.Renderer != nil {
		rendered, err := h.Renderer(record)
		if err == nil {
			fmt.Fprintln(h.Writer, strings.TrimSpace(rendered))
			return nil
		}
	}
	fmt.Fprintf(h.Writer, "surface %s module=%s mode=%s generation=%d props=%s\n",
		record.ID, record.Module, record.Mode, record.Generation, record.Props)
	return nil
}

func (h *TextHandler) WriteError(ctx context.Context, err error) error {
	fmt.Fprintf(h.Writer, "Error: %v\n", err)
	return nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "\n[easel] %s\n", msg)
	return nil
}

// ParseCommand turns one sanitized input line into a Command.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case CmdQuit, "exit":
		return Command{Op: CmdQuit}, nil
	case CmdList:
		return Command{Op: CmdList}, nil
	case CmdStop, CmdInspect:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: %s <id>", verb)
		}
		id, err := domain.ParseSurfaceID(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("bad surface id %q", args[0])
		}
		return Command{Op: verb, ID: id}, nil
	case CmdStart:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("usage: start <id> <module> [props-json] [mode]")
		}
		id, err := domain.ParseSurfaceID(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("bad surface id %q", args[0])
		}
		cmd := Command{Op: CmdStart, ID: id, Module: args[1], Props: props.Null()}
		return parseTail(cmd, args[2:])
	case CmdSet:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("usage: set <id> <props-json> [mode]")
		}
		id, err := domain.ParseSurfaceID(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("bad surface id %q", args[0])
		}
		cmd := Command{Op: CmdSet, ID: id}
		return parseTail(cmd, args[1:])
	default:
		return Command{}, fmt.Errorf("unknown command %q", verb)
	}
}

// parseTail consumes the optional props-json and mode arguments. Props come
// first when both are present; a lone argument is tried as JSON, then as a
// mode name.
func parseTail(cmd Command, args []string) (Command, error) {
	switch len(args) {
	case 0:
		return cmd, nil
	case 1:
		if parsed, err := props.Parse([]byte(args[0])); err == nil {
			cmd.Props = parsed
			return cmd, nil
		}
		mode, err := domain.ParseDisplayMode(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("argument %q is neither props JSON nor a display mode", args[0])
		}
		cmd.Mode = mode
		return cmd, nil
	case 2:
		parsed, err := props.Parse([]byte(args[0]))
		if err != nil {
			return Command{}, fmt.Errorf("bad props: %v", err)
		}
		cmd.Props = parsed
		mode, err := domain.ParseDisplayMode(args[1])
		if err != nil {
			return Command{}, err
		}
		cmd.Mode = mode
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("too many arguments")
	}
}
