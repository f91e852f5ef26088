package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/astra.yml
var profileTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new Astra profile file",
		Long: `Initialize creates a new .astra.yml profile file in the current directory.

The generated file includes:
- Default crawl bounds applied to every target
- Commented examples for per-target profiles
- Documentation for all available options

Examples:
  # Create .astra.yml in current directory
  astra init

  # Create profile file at a specific path
  astra init -o myprofiles.yml

  # Force overwrite existing file
  astra init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the profile file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing profile file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("profile file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := profileTemplate.ReadFile("templates/astra.yml")
	if err != nil {
		return fmt.Errorf("failed to read profile template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write profile file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	fmt.Printf("Created profile file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure per-target settings such as:")
	fmt.Println("  - Authentication headers and cookies")
	fmt.Println("  - Crawl depth and page budget per target")
	fmt.Println("  - Request pacing for rate-limited sites")

	return nil
}
