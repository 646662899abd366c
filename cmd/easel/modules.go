package main

import (
	"fmt"
	"os"
	"strings"

	loamAdapter "github.com/easelhq/easel/pkg/adapters/loam"
	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules [dir]",
	Short: "List the modules in a manifest directory",
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := targetDir(cmd, args)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		catalog, err := loamAdapter.Open(dir)
		if err != nil {
			fmt.Printf("Error opening catalog: %v\n", err)
			os.Exit(1)
		}

		names, err := catalog.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing modules: %v\n", err)
			os.Exit(1)
		}
		if len(names) == 0 {
			fmt.Println("No modules found.")
			return
		}

		for _, name := range names {
			module, err := catalog.Resolve(cmd.Context(), name)
			if err != nil {
				fmt.Printf("- %s (broken: %v)\n", name, err)
				continue
			}
			line := "- " + module.Name
			if module.Description != "" {
				line += ": " + module.Description
			}
			fmt.Println(line)
			if len(module.Tags) > 0 {
				fmt.Printf("  tags: %s\n", strings.Join(module.Tags, ", "))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}
