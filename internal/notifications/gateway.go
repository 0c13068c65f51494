package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VendorContact carries the delivery details for a billing notification.
type VendorContact struct {
	VendorID  uuid.UUID
	StoreName string
	Email     string
}

// Gateway is the outbound notification surface used by the lifecycle engine
// and the billing scheduler. A nil error means the notification was accepted
// for delivery; senders treat failures as non-fatal and never roll back the
// state change that triggered the send.
type Gateway interface {
	SendSubscriptionConfirmation(ctx context.Context, contact VendorContact, paidThrough time.Time) error
	SendRenewalFailed(ctx context.Context, contact VendorContact, reason string) error
	SendGracePeriodWarning(ctx context.Context, contact VendorContact, daysRemaining int) error
	SendAccountFrozen(ctx context.Context, contact VendorContact, frozenAt time.Time) error
	SendAccountReactivated(ctx context.Context, contact VendorContact) error
	SendExpiryWarning(ctx context.Context, contact VendorContact, expiresAt time.Time) error
}
