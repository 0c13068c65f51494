package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
)

func setupSubscriptionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	vendors := `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  store_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  subscription_status TEXT NOT NULL DEFAULT 'active',
  subscription_expiry DATETIME NOT NULL,
  grace_period_end DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  frozen INTEGER NOT NULL DEFAULT 0,
  suspended_at DATETIME,
  frozen_at DATETIME,
  last_expiry_warning DATETIME,
  last_grace_warning DATETIME,
  renewal_failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	services := `
CREATE TABLE IF NOT EXISTS services (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_cents INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  frozen INTEGER NOT NULL DEFAULT 0,
  frozen_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(vendors).Error)
	require.NoError(t, db.Exec(services).Error)
	require.NoError(t, db.Exec("DELETE FROM vendors").Error)
	require.NoError(t, db.Exec("DELETE FROM services").Error)
	return db
}

func seedVendor(t *testing.T, db *gorm.DB, status enums.SubscriptionStatus, expiry time.Time, graceEnd *time.Time) *models.Vendor {
	t.Helper()

	vendor := &models.Vendor{
		ID:                 uuid.New(),
		StoreName:          "Okoro Fabrics",
		Email:              "okoro@example.com",
		SubscriptionStatus: status,
		SubscriptionExpiry: expiry,
		GracePeriodEnd:     graceEnd,
		IsActive:           status == enums.SubscriptionStatusActive || status == enums.SubscriptionStatusGracePeriod,
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

func seedService(t *testing.T, db *gorm.DB, vendorID uuid.UUID, status enums.ServiceStatus) *models.Service {
	t.Helper()

	service := &models.Service{
		ID:         uuid.New(),
		VendorID:   vendorID,
		Name:       "Custom tailoring",
		PriceCents: 15000,
		Status:     status,
		Frozen:     status == enums.ServiceStatusFrozen,
	}
	require.NoError(t, db.Create(service).Error)
	return service
}

func TestVendorRepoListExpiringWithin(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	repo := NewVendorRepository(appdb.NewFromGorm(db))
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	soon := seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(12*time.Hour), nil)
	seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(10*24*time.Hour), nil)
	seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(-time.Hour), nil)
	graceEnd := now.Add(24 * time.Hour)
	seedVendor(t, db, enums.SubscriptionStatusGracePeriod, now.Add(12*time.Hour), &graceEnd)

	expiring, err := repo.ListExpiringWithin(ctx, now, 24*time.Hour, 100)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.ID, expiring[0].ID)
}

func TestVendorRepoGraceQueriesSplitOnWindowEnd(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	repo := NewVendorRepository(appdb.NewFromGorm(db))
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	openEnd := now.Add(48 * time.Hour)
	open := seedVendor(t, db, enums.SubscriptionStatusGracePeriod, now.Add(-72*time.Hour), &openEnd)
	lapsedEnd := now.Add(-time.Hour)
	lapsed := seedVendor(t, db, enums.SubscriptionStatusGracePeriod, now.Add(-6*24*time.Hour), &lapsedEnd)
	seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(20*24*time.Hour), nil)

	inGrace, err := repo.ListInGracePeriod(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, inGrace, 1)
	assert.Equal(t, open.ID, inGrace[0].ID)

	expired, err := repo.ListGraceExpired(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsed.ID, expired[0].ID)
}

func TestVendorRepoWarningStamps(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	repo := NewVendorRepository(appdb.NewFromGorm(db))
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	vendor := seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(12*time.Hour), nil)

	require.NoError(t, repo.StampExpiryWarning(ctx, vendor.ID, now))
	require.NoError(t, repo.StampGraceWarning(ctx, vendor.ID, now.Add(time.Hour)))

	stored, err := repo.Find(ctx, vendor.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastExpiryWarning)
	assert.True(t, stored.LastExpiryWarning.Equal(now))
	require.NotNil(t, stored.LastGraceWarning)
	assert.True(t, stored.LastGraceWarning.Equal(now.Add(time.Hour)))
}

func TestVendorRepoUpdatePersistsTransition(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	repo := NewVendorRepository(appdb.NewFromGorm(db))
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	vendor := seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(-time.Hour), nil)
	graceEnd := now.Add(5 * 24 * time.Hour)
	vendor.SubscriptionStatus = enums.SubscriptionStatusGracePeriod
	vendor.GracePeriodEnd = &graceEnd
	vendor.SuspendedAt = &now

	require.NoError(t, repo.Update(ctx, vendor))

	stored, err := repo.Find(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionStatusGracePeriod, stored.SubscriptionStatus)
	require.NotNil(t, stored.GracePeriodEnd)
	assert.True(t, stored.GracePeriodEnd.Equal(graceEnd))
	require.NotNil(t, stored.SuspendedAt)
}

func TestServiceRepoCascadeIsIdempotent(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	repo := NewServiceRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	vendor := seedVendor(t, db, enums.SubscriptionStatusFrozen, now.Add(-10*24*time.Hour), nil)
	seedService(t, db, vendor.ID, enums.ServiceStatusActive)
	seedService(t, db, vendor.ID, enums.ServiceStatusActive)
	other := seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(20*24*time.Hour), nil)
	untouched := seedService(t, db, other.ID, enums.ServiceStatusActive)

	updated, err := repo.CascadeStatus(ctx, vendor.ID, enums.ServiceStatusFrozen, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	again, err := repo.CascadeStatus(ctx, vendor.ID, enums.ServiceStatusFrozen, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, again)

	services, err := repo.ListByVendor(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, services, 2)
	for _, service := range services {
		assert.Equal(t, enums.ServiceStatusFrozen, service.Status)
		assert.True(t, service.Frozen)
		require.NotNil(t, service.FrozenAt)
	}

	var stored models.Service
	require.NoError(t, db.First(&stored, "id = ?", untouched.ID).Error)
	assert.Equal(t, enums.ServiceStatusActive, stored.Status)
}

func TestServiceRepoCascadeReactivationClearsFrozenAt(t *testing.T) {
	db := setupSubscriptionsTestDB(t)
	repo := NewServiceRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	vendor := seedVendor(t, db, enums.SubscriptionStatusActive, now.Add(30*24*time.Hour), nil)
	frozen := seedService(t, db, vendor.ID, enums.ServiceStatusFrozen)

	updated, err := repo.CascadeStatus(ctx, vendor.ID, enums.ServiceStatusActive, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	var stored models.Service
	require.NoError(t, db.First(&stored, "id = ?", frozen.ID).Error)
	assert.Equal(t, enums.ServiceStatusActive, stored.Status)
	assert.False(t, stored.Frozen)
	assert.Nil(t, stored.FrozenAt)
}
