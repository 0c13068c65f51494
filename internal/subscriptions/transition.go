package subscriptions

import (
	"fmt"
	"time"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
	apperrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
)

// EventKind identifies a lifecycle trigger.
type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventGraceExpired     EventKind = "grace_expired"
)

// Event is a single lifecycle trigger applied to a vendor record.
type Event struct {
	Kind EventKind
	// Reason carries the gateway failure detail for payment_failed events.
	Reason string
	Now    time.Time
}

// Windows holds the billing durations a transition needs.
type Windows struct {
	Period time.Duration
	Grace  time.Duration
}

// Outcome is the full effect of a transition: the updated vendor record, the
// service status to cascade (nil when listings are untouched), and the
// notifications owed to the vendor. Applying the outcome is the engine's job;
// the transition itself never touches storage.
type Outcome struct {
	Vendor        models.Vendor
	Cascade       *enums.ServiceStatus
	Notifications []enums.NotificationType
}

// Apply computes the transition for the given event. The vendor value is
// copied; callers keep their original on error.
//
// Subscription expiry only ever moves forward: a payment stamps
// max(current expiry, now+period), so replayed or out-of-order gateway
// callbacks can never shorten a paid-up subscription.
func Apply(vendor models.Vendor, event Event, windows Windows) (Outcome, error) {
	if vendor.SubscriptionStatus == enums.SubscriptionStatusDeleted {
		return Outcome{}, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("vendor %s is deleted; %s not applicable", vendor.ID, event.Kind))
	}
	if event.Now.IsZero() {
		return Outcome{}, apperrors.New(apperrors.CodeValidation, "event timestamp is required")
	}

	now := event.Now.UTC()
	switch event.Kind {
	case EventPaymentSucceeded:
		return applyPaymentSucceeded(vendor, now, windows), nil
	case EventPaymentFailed:
		return applyPaymentFailed(vendor, event.Reason, now, windows), nil
	case EventGraceExpired:
		return applyGraceExpired(vendor, now)
	default:
		return Outcome{}, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("unknown lifecycle event %q", event.Kind))
	}
}

func applyPaymentSucceeded(vendor models.Vendor, now time.Time, windows Windows) Outcome {
	wasFrozen := vendor.SubscriptionStatus == enums.SubscriptionStatusFrozen

	renewed := now.Add(windows.Period)
	if vendor.SubscriptionExpiry.After(renewed) {
		renewed = vendor.SubscriptionExpiry
	}

	vendor.SubscriptionStatus = enums.SubscriptionStatusActive
	vendor.SubscriptionExpiry = renewed
	vendor.GracePeriodEnd = nil
	vendor.SuspendedAt = nil
	vendor.FrozenAt = nil
	vendor.RenewalFailureReason = nil
	vendor.LastExpiryWarning = nil
	vendor.LastGraceWarning = nil
	vendor.IsActive = true
	vendor.Frozen = false

	// Listings are re-activated on every successful payment, not just when
	// leaving frozen standing. The cascade is idempotent, and a renewal is
	// the only event guaranteed to revisit a vendor whose earlier cascade
	// failed, so it heals listings left out of sync.
	active := enums.ServiceStatusActive
	outcome := Outcome{
		Vendor:        vendor,
		Cascade:       &active,
		Notifications: []enums.NotificationType{enums.NotificationTypeSubscriptionConfirmation},
	}
	if wasFrozen {
		outcome.Notifications = append(outcome.Notifications, enums.NotificationTypeAccountReactivated)
	}
	return outcome
}

func applyPaymentFailed(vendor models.Vendor, reason string, now time.Time, windows Windows) Outcome {
	if reason == "" {
		reason = "payment declined"
	}
	vendor.RenewalFailureReason = &reason

	// Repeat failures while already in grace or frozen keep the original
	// window; only the first failure out of active standing opens one.
	if vendor.SubscriptionStatus != enums.SubscriptionStatusActive {
		return Outcome{Vendor: vendor}
	}

	graceEnd := now.Add(windows.Grace)
	vendor.SubscriptionStatus = enums.SubscriptionStatusGracePeriod
	vendor.GracePeriodEnd = &graceEnd
	vendor.SuspendedAt = &now

	return Outcome{
		Vendor:        vendor,
		Notifications: []enums.NotificationType{enums.NotificationTypeRenewalFailed},
	}
}

func applyGraceExpired(vendor models.Vendor, now time.Time) (Outcome, error) {
	if vendor.SubscriptionStatus != enums.SubscriptionStatusGracePeriod {
		return Outcome{}, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("vendor %s is %s, not in grace period", vendor.ID, vendor.SubscriptionStatus))
	}

	vendor.SubscriptionStatus = enums.SubscriptionStatusFrozen
	vendor.GracePeriodEnd = nil
	vendor.FrozenAt = &now
	vendor.Frozen = true
	vendor.IsActive = false

	frozen := enums.ServiceStatusFrozen
	return Outcome{
		Vendor:        vendor,
		Cascade:       &frozen,
		Notifications: []enums.NotificationType{enums.NotificationTypeAccountFrozen},
	}, nil
}
