// Package validator checks a modules directory before it is served: every
// manifest must parse, module names must be unique, and declared defaults
// must satisfy their own props schema.
package validator

import (
	"context"
	"fmt"
	"strings"

	loamAdapter "github.com/easelhq/easel/pkg/adapters/loam"
	"github.com/easelhq/easel/pkg/ports"
)

// ValidateDir opens the modules directory and validates every manifest in
// it. It returns the number of modules that passed.
func ValidateDir(ctx context.Context, dir string) (int, error) {
	catalog, err := loamAdapter.Open(dir)
	if err != nil {
		return 0, err
	}
	return ValidateCatalog(ctx, catalog)
}

// ValidateCatalog checks every module the catalog lists. Problems are
// collected so one broken manifest does not mask the next; name collisions
// surface from List before any manifest is inspected.
func ValidateCatalog(ctx context.Context, catalog ports.ModuleCatalog) (int, error) {
	names, err := catalog.List(ctx)
	if err != nil {
		return 0, err
	}

	var problems []string
	for _, name := range names {
		if _, err := catalog.Resolve(ctx, name); err != nil {
			problems = append(problems, err.Error())
		}
	}

	valid := len(names) - len(problems)
	if len(problems) > 0 {
		return valid, fmt.Errorf("found %d invalid modules:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return valid, nil
}
