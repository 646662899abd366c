package manifest

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/schema"
)

// Module names select a registered UI tree factory, so they must be stable
// identifiers: no whitespace, no path separators.
var nameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// Module describes a surface module: the name callers start surfaces with,
// the props contract the module expects, and the defaults a host may apply
// when the caller provides none.
type Module struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// DefaultMode is the display mode hosts use when a start request does
	// not carry an explicit one.
	DefaultMode domain.DisplayMode `yaml:"default_mode,omitempty" json:"default_mode,omitempty"`

	// DefaultProps is the props tree used when a surface is started with
	// null props. It is substituted whole; defaults are never merged into
	// caller props.
	DefaultProps props.Value `yaml:"default_props,omitempty" json:"default_props,omitempty"`

	// Props declares the prop types the module requires. Empty means the
	// module accepts any props tree.
	Props schema.Schema `yaml:"props,omitempty" json:"props,omitempty"`

	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Parse decodes a module manifest from YAML (or JSON, which YAML subsumes)
// and validates it.
func Parse(data []byte) (*Module, error) {
	var m Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse module manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a module manifest from disk.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Validate checks the structural integrity of the manifest.
func (m *Module) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("module name is required")
	}
	if !nameRE.MatchString(m.Name) {
		return fmt.Errorf("invalid module name %q", m.Name)
	}
	if !m.DefaultProps.IsNull() {
		if m.DefaultProps.Kind() != props.KindObject {
			return fmt.Errorf("module %s: default_props must be an object, got %s", m.Name, m.DefaultProps.Kind())
		}
		if err := m.CheckProps(m.DefaultProps); err != nil {
			return fmt.Errorf("module %s: default_props do not satisfy the props schema: %w", m.Name, err)
		}
	}
	return nil
}

// CheckProps validates a props tree against the module's declared schema.
func (m *Module) CheckProps(p props.Value) error {
	return schema.Validate(m.Props, p)
}

// InitialProps resolves the props a surface starts with: the caller's tree
// when one is given, otherwise a copy of the module defaults. The two are
// never merged.
func (m *Module) InitialProps(p props.Value) props.Value {
	if p.IsNull() && !m.DefaultProps.IsNull() {
		return m.DefaultProps.Clone()
	}
	return p
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	out := *m
	out.DefaultProps = m.DefaultProps.Clone()
	if m.Props != nil {
		out.Props = make(schema.Schema, len(m.Props))
		for k, v := range m.Props {
			out.Props[k] = v
		}
	}
	out.Tags = append([]string(nil), m.Tags...)
	return &out
}
