// Package main provides the relocation matcher CLI: the HTTP server plus
// offline matching, vibe and migration tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relocation_agent",
	Short: "Relocation matching service",
	Long:  "Relocation matcher scores a property catalog against a user's diagnostic answers and serves the results over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
