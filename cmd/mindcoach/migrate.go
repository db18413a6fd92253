package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MikeHibbert/MindCoach-sub001/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Long:  `Applies every .sql file in the migrations directory, in lexical order, against DATABASE_URL.`,
	RunE:  runMigrateCmd,
}

var migrateDir string

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "migrations", "Directory containing .sql migration files")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrateCmd(_ *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	entries, err := filepath.Glob(filepath.Join(migrateDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no .sql files found in %s", migrateDir)
	}
	sort.Strings(entries)

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	for _, path := range entries {
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := database.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migration %s failed: %w", filepath.Base(path), err)
		}
		fmt.Printf("Applied %s\n", filepath.Base(path))
	}
	return nil
}
