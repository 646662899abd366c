package props

import (
	"gopkg.in/yaml.v3"
)

// UnmarshalYAML lets module manifests embed default props directly as YAML.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromGo(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML serializes the value as plain YAML data.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
