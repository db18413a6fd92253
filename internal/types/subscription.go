package types

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the lifecycle state of a subject subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription grants a user access to one subject's survey, lessons and
// content generation.
type Subscription struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Subject   string             `json:"subject"`
	Plan      string             `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// IsActive reports whether the subscription currently grants access.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// PurchaseSubscriptionRequest is the request body for purchasing a subscription.
type PurchaseSubscriptionRequest struct {
	Plan string `json:"plan" validate:"required,oneof=monthly yearly"`
}

// Validate validates the PurchaseSubscriptionRequest using the validator.
func (r *PurchaseSubscriptionRequest) Validate() error {
	return validate.Struct(r)
}
