package host

import (
	"strings"
	"testing"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"under limit", limit - 1, false},
		{"exact limit", limit, false},
		{"over limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := SanitizeInput(input)
			if tt.wantErr && err == nil {
				t.Errorf("SanitizeInput() expected error for size %d, got nil", tt.inputSize)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("SanitizeInput() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal text", "start 1 Main", "start 1 Main"},
		{"safe controls", "line1\nline2\ttabbed", "line1\nline2\ttabbed"},
		{"ansi code", "\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"null byte", "null\x00byte", "nullbyte"},
		{"bell", "ding\x07", "ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv("EASEL_MAX_INPUT_SIZE", "10")

	if _, err := SanitizeInput("12345678901"); err == nil {
		t.Error("expected error for input over the configured limit")
	}
	if _, err := SanitizeInput("12345"); err != nil {
		t.Errorf("unexpected error for input under the limit: %v", err)
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	input := "\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98"
	if _, err := SanitizeInput(input); err != ErrInvalidUTF8 {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}
