package loam

import (
	"fmt"
)

// ModuleMetadata represents the frontmatter of a module manifest document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type ModuleMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`

	DefaultMode  string         `json:"default_mode" mapstructure:"default_mode"`
	DefaultProps map[string]any `json:"default_props" mapstructure:"default_props"`

	// Props maps prop names to type declarations. A declaration is a string
	// ("string", "int") or, because YAML reads "[string]" as a flow list, a
	// single-element list.
	Props map[string]any `json:"props" mapstructure:"props"`

	Tags []string `json:"tags" mapstructure:"tags"`
}

// normalizeSchema flattens frontmatter type declarations into plain strings
// for schema.ParseTypeMap.
func normalizeSchema(raw map[string]any) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	normalized := make(map[string]string, len(raw))
	for key, value := range raw {
		typeStr, err := formatSchemaType(value)
		if err != nil {
			return nil, fmt.Errorf("props.%s: %w", key, err)
		}
		normalized[key] = typeStr
	}

	return normalized, nil
}

func formatSchemaType(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []any:
		if len(v) != 1 {
			return "", fmt.Errorf("expected single element list for slice type")
		}
		inner, err := formatSchemaType(v[0])
		if err != nil {
			return "", err
		}
		return "[" + inner + "]", nil
	case []string:
		if len(v) != 1 {
			return "", fmt.Errorf("expected single element list for slice type")
		}
		return "[" + v[0] + "]", nil
	default:
		return "", fmt.Errorf("expected string or list, got %T", value)
	}
}
