package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeHibbert/MindCoach-sub001/internal/db"
)

var adminRevoke bool

var adminCmd = &cobra.Command{
	Use:   "admin <email>",
	Short: "Grant or revoke admin access for a user",
	Long:  `Sets the admin flag on the user with the given email. Admins can manage the document library.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCmd,
}

func init() {
	adminCmd.Flags().BoolVar(&adminRevoke, "revoke", false, "Revoke admin access instead of granting it")
	rootCmd.AddCommand(adminCmd)
}

func runAdminCmd(_ *cobra.Command, args []string) error {
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

	email := args[0]
	user, err := database.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", email)
	}

	if err := database.SetAdmin(ctx, user.ID, !adminRevoke); err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}

	if adminRevoke {
		fmt.Printf("Revoked admin access for %s\n", email)
	} else {
		fmt.Printf("Granted admin access to %s\n", email)
	}
	return nil
}
