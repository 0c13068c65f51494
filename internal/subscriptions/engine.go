package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/notifications"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/config"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
	apperrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

// Engine applies lifecycle events to vendor records and fans the result out
// to listings and notifications.
//
// The vendor row is the authoritative write. The listing cascade is a second,
// independent write: it is retried once and a persistent failure is logged
// rather than propagated, so the vendor record never rolls back because
// listings lagged. Notification failures likewise never unwind state.
type Engine struct {
	vendors  VendorRepository
	services ServiceRepository
	gateway  notifications.Gateway
	logg     *logger.Logger
	billing  config.BillingConfig
	now      func() time.Time
}

type EngineParams struct {
	Vendors  VendorRepository
	Services ServiceRepository
	Gateway  notifications.Gateway
	Logger   *logger.Logger
	Billing  config.BillingConfig
	Now      func() time.Time
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.Vendors == nil {
		return nil, fmt.Errorf("vendors repo is required")
	}
	if params.Services == nil {
		return nil, fmt.Errorf("services repo is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("notification gateway is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		vendors:  params.Vendors,
		services: params.Services,
		gateway:  params.Gateway,
		logg:     params.Logger,
		billing:  params.Billing,
		now:      now,
	}, nil
}

func (e *Engine) windows() Windows {
	return Windows{Period: e.billing.Period(), Grace: e.billing.GracePeriod()}
}

// HandlePaymentSucceeded renews the vendor subscription and reactivates a
// frozen account, restoring listing visibility.
func (e *Engine) HandlePaymentSucceeded(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	return e.handle(ctx, vendorID, Event{Kind: EventPaymentSucceeded, Now: e.now()})
}

// HandlePaymentFailed records a renewal failure, opening the grace window
// when the vendor was in good standing.
func (e *Engine) HandlePaymentFailed(ctx context.Context, vendorID uuid.UUID, reason string) (*models.Vendor, error) {
	return e.handle(ctx, vendorID, Event{Kind: EventPaymentFailed, Reason: reason, Now: e.now()})
}

// FreezeExpiredGrace freezes a vendor whose grace window has lapsed. The
// caller supplies the loaded record; the scheduler batches these.
func (e *Engine) FreezeExpiredGrace(ctx context.Context, vendor models.Vendor) (*models.Vendor, error) {
	outcome, err := Apply(vendor, Event{Kind: EventGraceExpired, Now: e.now()}, e.windows())
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, outcome)
}

func (e *Engine) handle(ctx context.Context, vendorID uuid.UUID, event Event) (*models.Vendor, error) {
	vendor, err := e.vendors.Find(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "vendor not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading vendor")
	}

	outcome, err := Apply(*vendor, event, e.windows())
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, outcome)
}

func (e *Engine) commit(ctx context.Context, outcome Outcome) (*models.Vendor, error) {
	vendor := outcome.Vendor
	if err := e.vendors.Update(ctx, &vendor); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "persisting vendor transition")
	}

	logCtx := e.logg.WithFields(ctx, map[string]any{
		"vendor_id":           vendor.ID.String(),
		"subscription_status": vendor.SubscriptionStatus.String(),
	})

	if outcome.Cascade != nil {
		e.cascade(logCtx, vendor.ID, *outcome.Cascade)
	}
	e.notify(logCtx, vendor, outcome.Notifications)

	return &vendor, nil
}

func (e *Engine) cascade(ctx context.Context, vendorID uuid.UUID, status enums.ServiceStatus) {
	at := e.now().UTC()
	updated, err := e.services.CascadeStatus(ctx, vendorID, status, at)
	if err != nil {
		updated, err = e.services.CascadeStatus(ctx, vendorID, status, at)
	}
	if err != nil {
		e.logg.Error(ctx, "service cascade failed after retry; listings out of sync", err)
		return
	}

	statusCtx := e.logg.WithFields(ctx, map[string]any{
		"service_status":   status.String(),
		"services_updated": updated,
	})
	e.logg.Info(statusCtx, "service visibility cascaded")
}

func (e *Engine) notify(ctx context.Context, vendor models.Vendor, kinds []enums.NotificationType) {
	if len(kinds) == 0 {
		return
	}

	contact := notifications.VendorContact{
		VendorID:  vendor.ID,
		StoreName: vendor.StoreName,
		Email:     vendor.Email,
	}

	timeout := e.billing.NotificationTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	for _, kind := range kinds {
		sendCtx, cancel := context.WithTimeout(ctx, timeout)
		err := e.send(sendCtx, contact, vendor, kind)
		cancel()
		if err != nil {
			kindCtx := e.logg.WithField(ctx, "notification_type", string(kind))
			e.logg.Error(kindCtx, "notification send failed", err)
		}
	}
}

func (e *Engine) send(ctx context.Context, contact notifications.VendorContact, vendor models.Vendor, kind enums.NotificationType) error {
	switch kind {
	case enums.NotificationTypeSubscriptionConfirmation:
		return e.gateway.SendSubscriptionConfirmation(ctx, contact, vendor.SubscriptionExpiry)
	case enums.NotificationTypeRenewalFailed:
		reason := "payment declined"
		if vendor.RenewalFailureReason != nil {
			reason = *vendor.RenewalFailureReason
		}
		return e.gateway.SendRenewalFailed(ctx, contact, reason)
	case enums.NotificationTypeAccountFrozen:
		frozenAt := e.now().UTC()
		if vendor.FrozenAt != nil {
			frozenAt = *vendor.FrozenAt
		}
		return e.gateway.SendAccountFrozen(ctx, contact, frozenAt)
	case enums.NotificationTypeAccountReactivated:
		return e.gateway.SendAccountReactivated(ctx, contact)
	case enums.NotificationTypeExpiryWarning:
		return e.gateway.SendExpiryWarning(ctx, contact, vendor.SubscriptionExpiry)
	default:
		return fmt.Errorf("no sender for notification type %q", kind)
	}
}
