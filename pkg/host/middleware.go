package host

import (
	"context"
	"fmt"
	"strings"
)

// CommandInterceptor is a middleware that can approve or block a command
// before the host applies it. It returns true if execution should proceed.
type CommandInterceptor func(ctx context.Context, cmd Command) (bool, error)

// Chain runs interceptors in order; the first block or error wins.
func Chain(interceptors ...CommandInterceptor) CommandInterceptor {
	return func(ctx context.Context, cmd Command) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, cmd)
			if err != nil {
				return false, err
			}
			if !allowed {
				return false, nil
			}
		}
		return true, nil
	}
}

// AutoApprove allows everything.
func AutoApprove() CommandInterceptor {
	return func(ctx context.Context, cmd Command) (bool, error) {
		return true, nil
	}
}

// ConfirmStops prompts the operator via the handler before allowing a stop
// command through. Everything else passes untouched.
func ConfirmStops(handler IOHandler) CommandInterceptor {
	return func(ctx context.Context, cmd Command) (bool, error) {
		if cmd.Op != CmdStop {
			return true, nil
		}
		if err := handler.SystemOutput(ctx, fmt.Sprintf("stop surface %s? (y/n)", cmd.ID)); err != nil {
			return false, err
		}
		answer, err := handler.ReadLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
