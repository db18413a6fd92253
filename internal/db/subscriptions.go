package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// CreateSubscription records a subject purchase. A previous cancelled or
// expired subscription for the same pair is reactivated in place.
func (db *DB) CreateSubscription(ctx context.Context, userID uuid.UUID, subject, plan string, expiresAt *time.Time) (*types.Subscription, error) {
	var sub types.Subscription
	err := db.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (user_id, subject, plan, status, expires_at)
		 VALUES ($1, $2, $3, 'active', $4)
		 ON CONFLICT (user_id, subject) DO UPDATE
		 SET plan = $3, status = 'active', expires_at = $4, created_at = NOW()
		 RETURNING id, user_id, subject, plan, status, expires_at, created_at`,
		userID, subject, plan, expiresAt,
	).Scan(&sub.ID, &sub.UserID, &sub.Subject, &sub.Plan, &sub.Status, &sub.ExpiresAt, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return &sub, nil
}

// GetSubscription retrieves the subscription for a (user, subject) pair
func (db *DB) GetSubscription(ctx context.Context, userID uuid.UUID, subject string) (*types.Subscription, error) {
	var sub types.Subscription
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, subject, plan, status, expires_at, created_at
		 FROM subscriptions WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	).Scan(&sub.ID, &sub.UserID, &sub.Subject, &sub.Plan, &sub.Status, &sub.ExpiresAt, &sub.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// ListSubscriptions retrieves all subscriptions for a user
func (db *DB) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]types.Subscription, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, subject, plan, status, expires_at, created_at
		 FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []types.Subscription
	for rows.Next() {
		var sub types.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Subject, &sub.Plan, &sub.Status, &sub.ExpiresAt, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// CancelSubscription marks a subscription cancelled
func (db *DB) CancelSubscription(ctx context.Context, userID uuid.UUID, subject string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE subscriptions SET status = 'cancelled' WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("subscription not found: %s/%s", userID, subject)
	}
	return nil
}

// HasActiveSubscription reports whether the user currently has access to the subject
func (db *DB) HasActiveSubscription(ctx context.Context, userID uuid.UUID, subject string) (bool, error) {
	var active bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM subscriptions
		   WHERE user_id = $1 AND subject = $2 AND status = 'active'
		     AND (expires_at IS NULL OR expires_at > NOW()))`,
		userID, subject,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return active, nil
}
