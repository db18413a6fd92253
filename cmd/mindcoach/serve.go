package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeHibbert/MindCoach-sub001/internal/server"
)

var (
	servePort       int
	serveMaxLessons int
	serveParallel   int
	serveUseBrowser bool
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the learning platform REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().IntVar(&serveMaxLessons, "max-lessons", 0, "Maximum lessons per generated curriculum")
	serveCmd.Flags().IntVar(&serveParallel, "lesson-parallel", 0, "Concurrent lesson content generations")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Use headless browser for document URL ingestion (requires Chrome)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	cfg := server.Config{
		Port:           servePort,
		DatabaseURL:    databaseURL,
		APIKey:         apiKey,
		MaxLessons:     serveMaxLessons,
		LessonParallel: serveParallel,
		UseBrowser:     serveUseBrowser,
		Verbose:        serveVerbose,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
