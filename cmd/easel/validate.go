package main

import (
	"fmt"
	"os"

	"github.com/easelhq/easel/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check module manifests for consistency",
	Long: `Resolves every module manifest in the directory and reports name
collisions, invalid schemas and defaults that fail their own schema.`,
	Run: func(cmd *cobra.Command, args []string) {
		count, err := runValidate(cmd, args)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d modules valid.\n", count)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) (int, error) {
	dir, err := targetDir(cmd, args)
	if err != nil {
		return 0, err
	}
	return validator.ValidateDir(cmd.Context(), dir)
}

// targetDir resolves the directory to operate on: positional argument,
// then --modules or the config file, then the working directory.
func targetDir(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.ModulesDir != "" {
		return cfg.ModulesDir, nil
	}
	return os.Getwd()
}
