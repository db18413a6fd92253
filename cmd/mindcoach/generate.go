package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeHibbert/MindCoach-sub001/internal/config"
	"github.com/MikeHibbert/MindCoach-sub001/internal/db"
	"github.com/MikeHibbert/MindCoach-sub001/internal/documents"
	"github.com/MikeHibbert/MindCoach-sub001/internal/llm"
	"github.com/MikeHibbert/MindCoach-sub001/internal/observability"
	"github.com/MikeHibbert/MindCoach-sub001/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the lesson generation pipeline for a user and subject",
	Long: `Runs the full generation pipeline locally: curriculum design -> lesson planning -> lesson content.

The user must have a graded survey for the subject. Configuration can be loaded from a JSON file using --config; command-line arguments override config file values.`,
	RunE: runGenerateCmd,
}

var (
	genConfigPath  string
	genUserID      string
	genSubject     string
	genMaxLessons  int
	genParallel    int
	genAPIKey      string
	genDatabaseURL string
	genUseBrowser  bool
	genVerbose     bool
)

func init() {
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	generateCmd.Flags().StringVarP(&genUserID, "user-id", "u", "", "User ID to generate lessons for (required)")
	generateCmd.Flags().StringVarP(&genSubject, "subject", "s", "", "Subject to generate lessons for (required)")
	generateCmd.Flags().IntVar(&genMaxLessons, "max-lessons", 0, "Maximum lessons per curriculum")
	generateCmd.Flags().IntVar(&genParallel, "lesson-parallel", 0, "Concurrent lesson content generations")
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	generateCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	generateCmd.Flags().BoolVar(&genUseBrowser, "use-browser", false, "Use headless browser for document URL ingestion (requires Chrome)")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(generateCmd)
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if genConfigPath != "" {
		loaded, err := config.LoadConfig(genConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("max-lessons") {
		cfg.MaxLessons = genMaxLessons
	}
	if cmd.Flags().Changed("lesson-parallel") {
		cfg.LessonParallel = genParallel
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = genUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}
	cfg = cfg.MergeWithDefaults(config.Config{
		MaxLessons:     pipeline.DefaultMaxLessons,
		LessonParallel: pipeline.DefaultLessonParallel,
	})

	if genUserID == "" {
		return fmt.Errorf("--user-id is required")
	}
	if genSubject == "" {
		return fmt.Errorf("--subject is required")
	}
	userID, err := uuid.Parse(genUserID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	printer := observability.NewPrinter(os.Stdout)
	docs := documents.NewService(database, cfg.UseBrowser, cfg.Verbose)
	runner := pipeline.NewRunner(database, docs, client, pipeline.Options{
		MaxLessons:     cfg.MaxLessons,
		LessonParallel: cfg.LessonParallel,
		Verbose:        cfg.Verbose,
		Printer:        printer,
	})

	runID, err := database.CreatePipelineRun(ctx, userID, genSubject)
	if err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}
	fmt.Printf("Started run %s for %s\n", runID, genSubject)

	started := time.Now()
	runErr := runner.Run(ctx, runID, userID, genSubject)

	run, err := database.GetPipelineRun(ctx, runID)
	if err == nil && run != nil {
		printer.PrintRunSummary(genSubject, run.Snapshot(), time.Since(started))
	}
	return runErr
}
