package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeHibbert/MindCoach-sub001/internal/db"
	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the subject catalog",
	Long:  `Inserts or updates the default subject catalog. Safe to re-run.`,
	RunE:  runSeedCmd,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// defaultSubjects is the starting catalog; admins can extend it in the DB.
var defaultSubjects = []types.Subject{
	{ID: "python", Name: "Python", Description: "Python programming from basics to advanced topics", Icon: "🐍"},
	{ID: "javascript", Name: "JavaScript", Description: "JavaScript for web development", Icon: "📜"},
	{ID: "react", Name: "React", Description: "Building user interfaces with React", Icon: "⚛️"},
	{ID: "nodejs", Name: "Node.js", Description: "Server-side JavaScript with Node.js", Icon: "🟢"},
	{ID: "sql", Name: "SQL", Description: "Relational databases and SQL queries", Icon: "🗄️"},
}

func runSeedCmd(_ *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	for i := range defaultSubjects {
		if err := database.UpsertSubject(ctx, &defaultSubjects[i]); err != nil {
			return err
		}
		fmt.Printf("Seeded subject: %s\n", defaultSubjects[i].ID)
	}
	return nil
}
