package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
	apperrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
)

// VendorRepository exposes the vendor subscription rows the lifecycle engine
// and billing scheduler operate on.
type VendorRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	Create(ctx context.Context, vendor *models.Vendor) error
	Update(ctx context.Context, vendor *models.Vendor) error

	// ListExpiringWithin returns active vendors whose paid period ends inside
	// the lead window, oldest expiry first.
	ListExpiringWithin(ctx context.Context, now time.Time, lead time.Duration, limit int) ([]models.Vendor, error)
	// ListInGracePeriod returns vendors whose grace window is still open.
	ListInGracePeriod(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error)
	// ListGraceExpired returns vendors whose grace window has lapsed.
	ListGraceExpired(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error)

	StampExpiryWarning(ctx context.Context, vendorID uuid.UUID, at time.Time) error
	StampGraceWarning(ctx context.Context, vendorID uuid.UUID, at time.Time) error
}

// ServiceRepository manages the listing rows whose visibility follows the
// vendor account.
type ServiceRepository interface {
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Service, error)
	// CascadeStatus stamps every listing of the vendor to the given status.
	// The write is idempotent; rows already in the target status are skipped.
	CascadeStatus(ctx context.Context, vendorID uuid.UUID, status enums.ServiceStatus, at time.Time) (int64, error)
}

type vendorRepositoryImpl struct {
	client *db.Client
}

func NewVendorRepository(client *db.Client) VendorRepository {
	return &vendorRepositoryImpl{client: client}
}

func (r *vendorRepositoryImpl) Find(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.client.DB().WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepositoryImpl) Create(ctx context.Context, vendor *models.Vendor) error {
	if err := r.client.DB().WithContext(ctx).Create(vendor).Error; err != nil {
		if db.IsUniqueViolation(err, "vendors_email_key") {
			return apperrors.Wrap(apperrors.CodeConflict, err, "a vendor with this email already exists")
		}
		return err
	}
	return nil
}

// Update is the authoritative lifecycle write; it runs in its own
// transaction so a partially-applied save never becomes visible.
func (r *vendorRepositoryImpl) Update(ctx context.Context, vendor *models.Vendor) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Save(vendor).Error
	})
}

func (r *vendorRepositoryImpl) ListExpiringWithin(ctx context.Context, now time.Time, lead time.Duration, limit int) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.client.DB().WithContext(ctx).
		Where("subscription_status = ?", enums.SubscriptionStatusActive).
		Where("subscription_expiry > ? AND subscription_expiry <= ?", now, now.Add(lead)).
		Order("subscription_expiry ASC").
		Limit(limit).
		Find(&vendors).Error
	return vendors, err
}

func (r *vendorRepositoryImpl) ListInGracePeriod(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.client.DB().WithContext(ctx).
		Where("subscription_status = ?", enums.SubscriptionStatusGracePeriod).
		Where("grace_period_end > ?", now).
		Order("grace_period_end ASC").
		Limit(limit).
		Find(&vendors).Error
	return vendors, err
}

func (r *vendorRepositoryImpl) ListGraceExpired(ctx context.Context, now time.Time, limit int) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.client.DB().WithContext(ctx).
		Where("subscription_status = ?", enums.SubscriptionStatusGracePeriod).
		Where("grace_period_end <= ?", now).
		Order("grace_period_end ASC").
		Limit(limit).
		Find(&vendors).Error
	return vendors, err
}

func (r *vendorRepositoryImpl) StampExpiryWarning(ctx context.Context, vendorID uuid.UUID, at time.Time) error {
	return r.client.DB().WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("last_expiry_warning", at).Error
}

func (r *vendorRepositoryImpl) StampGraceWarning(ctx context.Context, vendorID uuid.UUID, at time.Time) error {
	return r.client.DB().WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("last_grace_warning", at).Error
}

type serviceRepositoryImpl struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepositoryImpl{db: db}
}

func (r *serviceRepositoryImpl) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at ASC").
		Find(&services).Error
	return services, err
}

func (r *serviceRepositoryImpl) CascadeStatus(ctx context.Context, vendorID uuid.UUID, status enums.ServiceStatus, at time.Time) (int64, error) {
	updates := map[string]any{
		"status":     status,
		"frozen":     status == enums.ServiceStatusFrozen,
		"updated_at": at,
	}
	if status == enums.ServiceStatusFrozen {
		updates["frozen_at"] = at
	} else {
		updates["frozen_at"] = nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("vendor_id = ? AND status <> ?", vendorID, status).
		Updates(updates)
	return result.RowsAffected, result.Error
}
