package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeHibbert/MindCoach-sub001/internal/client"
	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start a generation run on a server and follow its progress",
	Long: `Starts a content generation run against a running MindCoach server and polls
its status until the run completes or fails, printing each stage transition.

With --run-id, skips the start request and follows an existing run instead.`,
	RunE: runWatchCmd,
}

var (
	watchServerURL string
	watchUserID    string
	watchSubject   string
	watchRunID     string
	watchToken     string
	watchInterval  time.Duration
)

func init() {
	watchCmd.Flags().StringVar(&watchServerURL, "server", "http://localhost:8080", "Base URL of the MindCoach server")
	watchCmd.Flags().StringVarP(&watchUserID, "user-id", "u", "", "User ID (required)")
	watchCmd.Flags().StringVarP(&watchSubject, "subject", "s", "", "Subject (required)")
	watchCmd.Flags().StringVar(&watchRunID, "run-id", "", "Existing run to follow instead of starting a new one")
	watchCmd.Flags().StringVar(&watchToken, "token", "", "Bearer token from /auth/login (defaults to MINDCOACH_TOKEN env var)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", client.DefaultPollInterval, "Polling interval")

	rootCmd.AddCommand(watchCmd)
}

func runWatchCmd(_ *cobra.Command, _ []string) error {
	if watchUserID == "" {
		return fmt.Errorf("--user-id is required")
	}
	if watchSubject == "" {
		return fmt.Errorf("--subject is required")
	}
	userID, err := uuid.Parse(watchUserID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	ctx := context.Background()
	poller := client.NewPoller(watchServerURL)
	poller.SetPollInterval(watchInterval)

	token := watchToken
	if token == "" {
		token = os.Getenv("MINDCOACH_TOKEN")
	}
	poller.SetToken(token)

	runID := watchRunID
	if runID == "" {
		state := &client.RetryState{}
		job, err := poller.StartWithRetry(ctx, userID, watchSubject, state)
		if err != nil {
			return describeStartError(err)
		}
		runID = job.RunID
		fmt.Printf("Started run %s for %s\n", runID, watchSubject)
	}

	done := make(chan error, 1)
	poller.PollStatus(ctx, userID, watchSubject, runID, client.Callbacks{
		OnUpdate: func(s types.PipelineStatus) {
			fmt.Printf("  %-22s %3d%%  %s\n", s.CurrentStage, s.Progress(), s.Message)
		},
		OnComplete: func(s types.PipelineStatus) {
			fmt.Printf("  %-22s %3d%%  %s\n", s.CurrentStage, s.Progress(), s.Message)
			done <- nil
		},
		OnError: func(err error) {
			done <- err
		},
	})

	return <-done
}

// describeStartError maps typed start failures onto actionable messages.
func describeStartError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Type {
	case client.ErrTypeSubscriptionRequired:
		return fmt.Errorf("no active subscription for %s; purchase one first: %w", watchSubject, err)
	case client.ErrTypePrerequisiteMissing:
		return fmt.Errorf("complete the %s survey before generating lessons: %w", watchSubject, err)
	default:
		return err
	}
}
