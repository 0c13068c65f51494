package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/notifications"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/config"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
	apperrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

type fakeScanner struct {
	expiring []models.Vendor
	inGrace  []models.Vendor
	lapsed   []models.Vendor

	expiryStamps map[uuid.UUID]time.Time
	graceStamps  map[uuid.UUID]time.Time
	listErr      error
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{
		expiryStamps: map[uuid.UUID]time.Time{},
		graceStamps:  map[uuid.UUID]time.Time{},
	}
}

func (f *fakeScanner) ListExpiringWithin(context.Context, time.Time, time.Duration, int) ([]models.Vendor, error) {
	return f.expiring, f.listErr
}

func (f *fakeScanner) ListInGracePeriod(context.Context, time.Time, int) ([]models.Vendor, error) {
	return f.inGrace, f.listErr
}

func (f *fakeScanner) ListGraceExpired(context.Context, time.Time, int) ([]models.Vendor, error) {
	return f.lapsed, f.listErr
}

func (f *fakeScanner) StampExpiryWarning(_ context.Context, vendorID uuid.UUID, at time.Time) error {
	f.expiryStamps[vendorID] = at
	for i := range f.expiring {
		if f.expiring[i].ID == vendorID {
			stamped := at
			f.expiring[i].LastExpiryWarning = &stamped
		}
	}
	return nil
}

func (f *fakeScanner) StampGraceWarning(_ context.Context, vendorID uuid.UUID, at time.Time) error {
	f.graceStamps[vendorID] = at
	for i := range f.inGrace {
		if f.inGrace[i].ID == vendorID {
			stamped := at
			f.inGrace[i].LastGraceWarning = &stamped
		}
	}
	return nil
}

type fakeFreezer struct {
	frozen    []uuid.UUID
	conflicts map[uuid.UUID]bool
	err       error
}

func (f *fakeFreezer) FreezeExpiredGrace(_ context.Context, vendor models.Vendor) (*models.Vendor, error) {
	if f.conflicts[vendor.ID] {
		return nil, apperrors.New(apperrors.CodeStateConflict, "not in grace period")
	}
	if f.err != nil {
		return nil, f.err
	}
	f.frozen = append(f.frozen, vendor.ID)
	return &vendor, nil
}

type sentWarning struct {
	vendorID uuid.UUID
	kind     enums.NotificationType
	days     int
}

type fakeWarningGateway struct {
	sent []sentWarning
	err  error
}

func (f *fakeWarningGateway) SendSubscriptionConfirmation(context.Context, notifications.VendorContact, time.Time) error {
	return nil
}

func (f *fakeWarningGateway) SendRenewalFailed(context.Context, notifications.VendorContact, string) error {
	return nil
}

func (f *fakeWarningGateway) SendGracePeriodWarning(_ context.Context, contact notifications.VendorContact, days int) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentWarning{vendorID: contact.VendorID, kind: enums.NotificationTypeGracePeriodWarning, days: days})
	return nil
}

func (f *fakeWarningGateway) SendAccountFrozen(context.Context, notifications.VendorContact, time.Time) error {
	return nil
}

func (f *fakeWarningGateway) SendAccountReactivated(context.Context, notifications.VendorContact) error {
	return nil
}

func (f *fakeWarningGateway) SendExpiryWarning(_ context.Context, contact notifications.VendorContact, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentWarning{vendorID: contact.VendorID, kind: enums.NotificationTypeExpiryWarning})
	return nil
}

type billingJobHelper struct {
	job     *billingJob
	scanner *fakeScanner
	freezer *fakeFreezer
	gateway *fakeWarningGateway
}

func createBillingJobTest(t *testing.T) *billingJobHelper {
	t.Helper()

	scanner := newFakeScanner()
	freezer := &fakeFreezer{conflicts: map[uuid.UUID]bool{}}
	gateway := &fakeWarningGateway{}

	job, err := NewBillingJob(BillingJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test"}),
		Vendors: scanner,
		Engine:  freezer,
		Gateway: gateway,
		Billing: config.BillingConfig{
			PeriodDays:          30,
			GracePeriodDays:     5,
			GraceReminderEvery:  24 * time.Hour,
			ExpiryWarningLead:   24 * time.Hour,
			NotificationTimeout: time.Second,
			SchedulerScanLimit:  500,
		},
	})
	if err != nil {
		t.Fatalf("NewBillingJob: %v", err)
	}
	return &billingJobHelper{
		job:     job.(*billingJob),
		scanner: scanner,
		freezer: freezer,
		gateway: gateway,
	}
}

func activeVendorExpiring(expiry time.Time) models.Vendor {
	return models.Vendor{
		ID:                 uuid.New(),
		StoreName:          "Okoro Fabrics",
		Email:              "okoro@example.com",
		SubscriptionStatus: enums.SubscriptionStatusActive,
		SubscriptionExpiry: expiry,
		IsActive:           true,
	}
}

func graceVendor(graceEnd time.Time) models.Vendor {
	vendor := activeVendorExpiring(graceEnd.Add(-5 * 24 * time.Hour))
	vendor.SubscriptionStatus = enums.SubscriptionStatusGracePeriod
	vendor.GracePeriodEnd = &graceEnd
	return vendor
}

func TestBillingJob_warnExpiringStampsAndDedupes(t *testing.T) {
	helper := createBillingJobTest(t)
	now := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	fresh := activeVendorExpiring(now.Add(12 * time.Hour))
	alreadyWarned := activeVendorExpiring(now.Add(18 * time.Hour))
	warnedAt := now.Add(-2 * time.Hour)
	alreadyWarned.LastExpiryWarning = &warnedAt
	helper.scanner.expiring = []models.Vendor{fresh, alreadyWarned}

	count, err := helper.job.warnExpiring(context.Background())
	if err != nil {
		t.Fatalf("warnExpiring: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 warning, got %d", count)
	}
	if len(helper.gateway.sent) != 1 || helper.gateway.sent[0].vendorID != fresh.ID {
		t.Fatalf("expected warning for fresh vendor only, got %+v", helper.gateway.sent)
	}
	if _, ok := helper.scanner.expiryStamps[fresh.ID]; !ok {
		t.Fatal("expected warning timestamp to be stamped")
	}

	// A second sweep the same day warns nobody.
	helper.gateway.sent = nil
	count, err = helper.job.warnExpiring(context.Background())
	if err != nil {
		t.Fatalf("warnExpiring again: %v", err)
	}
	if count != 0 || len(helper.gateway.sent) != 0 {
		t.Fatalf("expected idempotent second sweep, got count=%d sent=%d", count, len(helper.gateway.sent))
	}
}

func TestBillingJob_warnExpiringSendFailureSkipsStamp(t *testing.T) {
	helper := createBillingJobTest(t)
	now := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }
	helper.gateway.err = errors.New("smtp down")

	vendor := activeVendorExpiring(now.Add(12 * time.Hour))
	helper.scanner.expiring = []models.Vendor{vendor}

	count, err := helper.job.warnExpiring(context.Background())
	if err != nil {
		t.Fatalf("warnExpiring: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no warnings counted, got %d", count)
	}
	if _, ok := helper.scanner.expiryStamps[vendor.ID]; ok {
		t.Fatal("failed send must not stamp the vendor")
	}
}

func TestBillingJob_remindGraceRoundsDaysUp(t *testing.T) {
	helper := createBillingJobTest(t)
	now := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	vendor := graceVendor(now.Add(25 * time.Hour))
	helper.scanner.inGrace = []models.Vendor{vendor}

	count, err := helper.job.remindGrace(context.Background())
	if err != nil {
		t.Fatalf("remindGrace: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reminder, got %d", count)
	}
	if got := helper.gateway.sent[0].days; got != 2 {
		t.Fatalf("expected 2 days remaining, got %d", got)
	}
}

func TestBillingJob_remindGraceHonorsReminderInterval(t *testing.T) {
	helper := createBillingJobTest(t)
	now := time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	recent := graceVendor(now.Add(48 * time.Hour))
	warnedAt := now.Add(-6 * time.Hour)
	recent.LastGraceWarning = &warnedAt

	due := graceVendor(now.Add(72 * time.Hour))
	staleWarning := now.Add(-30 * time.Hour)
	due.LastGraceWarning = &staleWarning

	helper.scanner.inGrace = []models.Vendor{recent, due}

	count, err := helper.job.remindGrace(context.Background())
	if err != nil {
		t.Fatalf("remindGrace: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reminder, got %d", count)
	}
	if helper.gateway.sent[0].vendorID != due.ID {
		t.Fatal("expected reminder for the vendor past the interval")
	}
}

func TestBillingJob_freezeLapsedSkipsRacedPayments(t *testing.T) {
	helper := createBillingJobTest(t)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	lapsed := graceVendor(now.Add(-time.Hour))
	paidMeanwhile := graceVendor(now.Add(-2 * time.Hour))
	helper.freezer.conflicts[paidMeanwhile.ID] = true
	helper.scanner.lapsed = []models.Vendor{lapsed, paidMeanwhile}

	count, err := helper.job.freezeLapsed(context.Background())
	if err != nil {
		t.Fatalf("freezeLapsed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 freeze, got %d", count)
	}
	if len(helper.freezer.frozen) != 1 || helper.freezer.frozen[0] != lapsed.ID {
		t.Fatalf("expected only the lapsed vendor frozen, got %+v", helper.freezer.frozen)
	}
}

func TestBillingJob_runOnceAggregatesPhases(t *testing.T) {
	helper := createBillingJobTest(t)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	helper.scanner.expiring = []models.Vendor{activeVendorExpiring(now.Add(6 * time.Hour))}
	helper.scanner.inGrace = []models.Vendor{graceVendor(now.Add(48 * time.Hour))}
	helper.scanner.lapsed = []models.Vendor{graceVendor(now.Add(-time.Hour))}

	result, err := helper.job.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if result.ExpiryWarnings != 1 || result.GraceWarnings != 1 || result.AccountsFrozen != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBillingJob_phaseFailureDoesNotBlockLaterPhases(t *testing.T) {
	helper := createBillingJobTest(t)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	helper.freezer.err = errors.New("db down")
	helper.scanner.lapsed = []models.Vendor{graceVendor(now.Add(-time.Hour))}
	helper.scanner.inGrace = []models.Vendor{graceVendor(now.Add(48 * time.Hour))}

	result, err := helper.job.runOnce(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if result.GraceWarnings != 1 {
		t.Fatalf("grace phase should still run, got %+v", result)
	}
	if result.AccountsFrozen != 0 {
		t.Fatalf("expected no freezes, got %+v", result)
	}
}
