package schema

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// typeNames flattens a schema into its serializable form: prop name to
// type name. Custom types serialize by name and cannot be round-tripped.
func (s Schema) typeNames() map[string]string {
	out := make(map[string]string, len(s))
	for key, t := range s {
		out[key] = t.Name()
	}
	return out
}

// MarshalJSON serializes the schema as a map of prop names to type names.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.typeNames())
}

// UnmarshalJSON deserializes a map of prop names to type names.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var typeMap map[string]string
	if err := json.Unmarshal(data, &typeMap); err != nil {
		return err
	}
	parsed, err := ParseTypeMap(typeMap)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML serializes the schema as a map of prop names to type names.
func (s Schema) MarshalYAML() (interface{}, error) {
	return s.typeNames(), nil
}

// UnmarshalYAML deserializes a map of prop names to type names.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var typeMap map[string]string
	if err := node.Decode(&typeMap); err != nil {
		return err
	}
	parsed, err := ParseTypeMap(typeMap)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
