package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/loam"

	loamadapter "github.com/easelhq/easel/pkg/adapters/loam"
)

func main() {
	targetDir := "examples/starter-modules"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	// Ensure dir exists
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating starter catalog in: %s\n", targetDir)

	// Init Loam (No Versioning = pure file generation)
	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		panic(err)
	}

	typedRepo := loam.NewTypedRepository[loamadapter.ModuleMetadata](repo)
	ctx := context.TODO()

	// 1. Card (Clean)
	cardMeta := loamadapter.ModuleMetadata{
		Name:        "card",
		Description: "A titled text card.",
		DefaultMode: "visible",
		Props: map[string]any{
			"title": "string",
			"body":  "string",
		},
		DefaultProps: map[string]any{
			"title": "untitled",
			"body":  "",
		},
		Tags: []string{"starter"},
	}
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamadapter.ModuleMetadata]{
		ID:      "card",
		Content: "Renders a heading with a paragraph underneath.\nThis file is clean.",
		Data:    cardMeta,
	})
	check(err)

	// 2. Form (With Trailing Newlines/Noise)
	formMeta := loamadapter.ModuleMetadata{
		Name:        "form",
		DefaultMode: "visible",
		Props: map[string]any{
			"fields":       []any{"string"},
			"submit_label": "string",
		},
		DefaultProps: map[string]any{
			"fields":       []any{"name", "email"},
			"submit_label": "Send",
		},
		Tags: []string{"starter", "input"},
	}
	// Injecting noise (trailing newlines and spaces) to verify the trim logic
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamadapter.ModuleMetadata]{
		ID:      "form",
		Content: "Collects the declared fields and offers a submit button.\n\n\n   ",
		Data:    formMeta,
	})
	check(err)

	// 3. Banner (Bare: name and description come from the file itself)
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamadapter.ModuleMetadata]{
		ID:      "banner",
		Content: "A one-line announcement strip. Takes whatever props you give it.",
		Data:    loamadapter.ModuleMetadata{},
	})
	check(err)

	fmt.Println("Done. Verify contents in", targetDir)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
