package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DisplayMode is the rendering-visibility hint attached to a surface at start
// and update time. It tells the runtime how much rendering work the surface
// deserves; it does not change the surface's lifecycle state.
type DisplayMode int

const (
	// DisplayModeVisible requests full rendering work. Zero value.
	DisplayModeVisible DisplayMode = iota
	// DisplayModeSuspended keeps the surface alive but suppresses rendering.
	DisplayModeSuspended
	// DisplayModeHidden keeps rendering state but detaches visible output.
	DisplayModeHidden
)

// ParseDisplayMode converts the wire representation back into a mode. The
// empty string maps to DisplayModeVisible.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch s {
	case "", "visible":
		return DisplayModeVisible, nil
	case "suspended":
		return DisplayModeSuspended, nil
	case "hidden":
		return DisplayModeHidden, nil
	default:
		return DisplayModeVisible, fmt.Errorf("unknown display mode %q", s)
	}
}

func (m DisplayMode) String() string {
	switch m {
	case DisplayModeVisible:
		return "visible"
	case DisplayModeSuspended:
		return "suspended"
	case DisplayModeHidden:
		return "hidden"
	default:
		return fmt.Sprintf("displaymode(%d)", int(m))
	}
}

// MarshalText serializes the mode as its string name (JSON and YAML).
func (m DisplayMode) MarshalText() ([]byte, error) {
	switch m {
	case DisplayModeVisible, DisplayModeSuspended, DisplayModeHidden:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("unknown display mode %d", int(m))
	}
}

// UnmarshalText parses the string name form.
func (m *DisplayMode) UnmarshalText(data []byte) error {
	parsed, err := ParseDisplayMode(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalYAML supports manifests that declare a default mode.
func (m *DisplayMode) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return m.UnmarshalText([]byte(raw))
}
