package cron

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/notifications"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/config"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	apperrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

// vendorScanner is the slice of the vendor repository the scheduler reads.
type vendorScanner interface {
	ListExpiringWithin(ctx context.Context, now time.Time, lead time.Duration, limit int) ([]models.Vendor, error)
	ListInGracePeriod(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error)
	ListGraceExpired(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error)
	StampExpiryWarning(ctx context.Context, vendorID uuid.UUID, at time.Time) error
	StampGraceWarning(ctx context.Context, vendorID uuid.UUID, at time.Time) error
}

// graceFreezer applies the freeze transition for a lapsed grace window.
type graceFreezer interface {
	FreezeExpiredGrace(ctx context.Context, vendor models.Vendor) (*models.Vendor, error)
}

// BillingJobParams configure the daily billing sweep.
type BillingJobParams struct {
	Logger  *logger.Logger
	Vendors vendorScanner
	Engine  graceFreezer
	Gateway notifications.Gateway
	Billing config.BillingConfig
	Now     func() time.Time
}

// BillingRunResult tallies one sweep.
type BillingRunResult struct {
	ExpiryWarnings int
	GraceWarnings  int
	AccountsFrozen int
}

// NewBillingJob builds the scheduled billing sweep: warn vendors whose paid
// period is about to lapse, remind vendors inside their grace window, and
// freeze vendors whose window has closed.
func NewBillingJob(params BillingJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Vendors == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("lifecycle engine required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("notification gateway required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &billingJob{
		logg:    params.Logger,
		vendors: params.Vendors,
		engine:  params.Engine,
		gateway: params.Gateway,
		billing: params.Billing,
		now:     now,
	}, nil
}

type billingJob struct {
	logg    *logger.Logger
	vendors vendorScanner
	engine  graceFreezer
	gateway notifications.Gateway
	billing config.BillingConfig
	now     func() time.Time
}

func (j *billingJob) Name() string { return "billing-sweep" }

func (j *billingJob) Run(ctx context.Context) error {
	_, err := j.runOnce(ctx)
	return err
}

// runOnce executes the three phases in order. A failed phase never blocks
// the later ones; their errors are combined for the caller.
func (j *billingJob) runOnce(ctx context.Context) (BillingRunResult, error) {
	var result BillingRunResult
	var errs []error

	count, err := j.warnExpiring(ctx)
	result.ExpiryWarnings = count
	if err != nil {
		errs = append(errs, err)
	}

	count, err = j.remindGrace(ctx)
	result.GraceWarnings = count
	if err != nil {
		errs = append(errs, err)
	}

	count, err = j.freezeLapsed(ctx)
	result.AccountsFrozen = count
	if err != nil {
		errs = append(errs, err)
	}

	return result, multierr.Combine(errs...)
}

func (j *billingJob) scanLimit() int {
	if j.billing.SchedulerScanLimit > 0 {
		return j.billing.SchedulerScanLimit
	}
	return 500
}

func (j *billingJob) reminderInterval() time.Duration {
	if j.billing.GraceReminderEvery > 0 {
		return j.billing.GraceReminderEvery
	}
	return 24 * time.Hour
}

func (j *billingJob) warningLead() time.Duration {
	if j.billing.ExpiryWarningLead > 0 {
		return j.billing.ExpiryWarningLead
	}
	return 24 * time.Hour
}

func (j *billingJob) warnExpiring(ctx context.Context) (int, error) {
	now := j.now().UTC()
	vendors, err := j.vendors.ListExpiringWithin(ctx, now, j.warningLead(), j.scanLimit())
	if err != nil {
		return 0, fmt.Errorf("query expiring vendors: %w", err)
	}

	count := 0
	for _, vendor := range vendors {
		if vendor.LastExpiryWarning != nil && sameUTCDay(*vendor.LastExpiryWarning, now) {
			continue
		}
		if err := j.send(ctx, func(sendCtx context.Context) error {
			return j.gateway.SendExpiryWarning(sendCtx, contactFor(vendor), vendor.SubscriptionExpiry)
		}); err != nil {
			j.logg.Error(j.logg.WithVendorID(ctx, vendor.ID.String()), "expiry warning send failed", err)
			continue
		}
		if err := j.vendors.StampExpiryWarning(ctx, vendor.ID, now); err != nil {
			return count, fmt.Errorf("stamp expiry warning: %w", err)
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"phase": "warn_expiring", "count": count})
	j.logg.Info(logCtx, "expiry warning phase complete")
	return count, nil
}

func (j *billingJob) remindGrace(ctx context.Context) (int, error) {
	now := j.now().UTC()
	vendors, err := j.vendors.ListInGracePeriod(ctx, now, j.scanLimit())
	if err != nil {
		return 0, fmt.Errorf("query grace-period vendors: %w", err)
	}

	count := 0
	for _, vendor := range vendors {
		if vendor.GracePeriodEnd == nil {
			j.logg.Warn(j.logg.WithVendorID(ctx, vendor.ID.String()), "grace-period vendor has no window end; skipping")
			continue
		}
		if vendor.LastGraceWarning != nil && now.Sub(*vendor.LastGraceWarning) < j.reminderInterval() {
			continue
		}

		days := daysUntil(now, *vendor.GracePeriodEnd)
		if err := j.send(ctx, func(sendCtx context.Context) error {
			return j.gateway.SendGracePeriodWarning(sendCtx, contactFor(vendor), days)
		}); err != nil {
			j.logg.Error(j.logg.WithVendorID(ctx, vendor.ID.String()), "grace warning send failed", err)
			continue
		}
		if err := j.vendors.StampGraceWarning(ctx, vendor.ID, now); err != nil {
			return count, fmt.Errorf("stamp grace warning: %w", err)
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"phase": "remind_grace", "count": count})
	j.logg.Info(logCtx, "grace reminder phase complete")
	return count, nil
}

func (j *billingJob) freezeLapsed(ctx context.Context) (int, error) {
	now := j.now().UTC()
	vendors, err := j.vendors.ListGraceExpired(ctx, now, j.scanLimit())
	if err != nil {
		return 0, fmt.Errorf("query lapsed grace windows: %w", err)
	}

	count := 0
	var errs []error
	for _, vendor := range vendors {
		if _, err := j.engine.FreezeExpiredGrace(ctx, vendor); err != nil {
			// A payment that landed between the scan and the freeze moves
			// the vendor out of grace standing; that is a skip, not a failure.
			if typed := apperrors.As(err); typed != nil && typed.Code() == apperrors.CodeStateConflict {
				j.logg.Info(j.logg.WithVendorID(ctx, vendor.ID.String()), "vendor left grace standing before freeze; skipping")
				continue
			}
			errs = append(errs, fmt.Errorf("freeze vendor %s: %w", vendor.ID, err))
			continue
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"phase": "freeze_lapsed", "count": count})
	j.logg.Info(logCtx, "freeze phase complete")
	return count, multierr.Combine(errs...)
}

func (j *billingJob) send(ctx context.Context, fn func(context.Context) error) error {
	timeout := j.billing.NotificationTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(sendCtx)
}

func contactFor(vendor models.Vendor) notifications.VendorContact {
	return notifications.VendorContact{
		VendorID:  vendor.ID,
		StoreName: vendor.StoreName,
		Email:     vendor.Email,
	}
}

func sameUTCDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// daysUntil rounds the remaining window up to whole days so a vendor with
// 25 hours left is told "2 days", never "1".
func daysUntil(now, end time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}
