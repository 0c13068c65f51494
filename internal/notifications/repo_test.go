package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	notifications := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(notifications).Error)
	require.NoError(t, db.Exec("DELETE FROM notifications").Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, vendorID uuid.UUID, created time.Time, read bool) *models.Notification {
	t.Helper()

	notification := &models.Notification{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Type:      enums.NotificationTypeExpiryWarning,
		Title:     "Subscription expiring soon",
		Message:   "Renew now to avoid an interruption.",
		CreatedAt: created,
	}
	if read {
		readAt := created.Add(time.Minute)
		notification.ReadAt = &readAt
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationsRepoListPaginates(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedNotification(t, db, vendorID, base.Add(time.Duration(i)*time.Hour), false)
	}
	seedNotification(t, db, uuid.New(), base, false)

	page, cursor, err := repo.List(ctx, listNotificationsParams{VendorID: vendorID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, cursor)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	rest, next, err := repo.List(ctx, listNotificationsParams{VendorID: vendorID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, next)
}

func TestNotificationsRepoListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	unread := seedNotification(t, db, vendorID, base.Add(time.Hour), false)
	seedNotification(t, db, vendorID, base, true)

	page, _, err := repo.List(ctx, listNotificationsParams{VendorID: vendorID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, unread.ID, page[0].ID)
}

func TestNotificationsRepoMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	notification := seedNotification(t, db, vendorID, now.Add(-time.Hour), false)

	mark, err := repo.MarkRead(ctx, vendorID, notification.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	again, err := repo.MarkRead(ctx, vendorID, notification.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, again.Found)
	assert.False(t, again.Updated)

	missing, err := repo.MarkRead(ctx, vendorID, uuid.New(), now)
	require.NoError(t, err)
	assert.False(t, missing.Found)

	otherVendor, err := repo.MarkRead(ctx, uuid.New(), notification.ID, now)
	require.NoError(t, err)
	assert.False(t, otherVendor.Found)
}

func TestNotificationsRepoMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendorID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedNotification(t, db, vendorID, base, false)
	seedNotification(t, db, vendorID, base.Add(time.Hour), false)
	seedNotification(t, db, vendorID, base.Add(2*time.Hour), true)

	updated, err := repo.MarkAllRead(ctx, vendorID, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	var unread int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("vendor_id = ? AND read_at IS NULL", vendorID).
		Count(&unread).Error)
	assert.Zero(t, unread)
}
