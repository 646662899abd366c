package schema

import (
	"fmt"
	"sort"

	"github.com/easelhq/easel/pkg/props"
)

// Schema maps prop names to their expected types.
type Schema map[string]Type

// Validate checks a props tree against the schema. The tree must be an
// object; every prop declared in the schema must be present and conform
// to its type. Props not declared in the schema are allowed and ignored.
//
// All failures are collected and returned as a single *AggregateError so
// module authors see every problem at once.
func Validate(s Schema, value props.Value) error {
	if len(s) == 0 {
		return nil
	}
	if value.Kind() != props.KindObject {
		return &AggregateError{Errors: []*ValidationError{{
			Key:    "",
			Reason: fmt.Sprintf("expected object props, got %s", value.Kind()),
		}}}
	}

	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []*ValidationError
	for _, key := range keys {
		field, ok := value.Field(key)
		if !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "missing required prop"})
			continue
		}
		if err := s[key].Validate(field); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error()})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
