// Package main provides the entry point for the MindCoach learning platform.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mindcoach",
	Short: "MindCoach learning platform",
	Long:  "MindCoach serves subject surveys, generates personalized lesson content with an LLM pipeline, and tracks learner progress via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
