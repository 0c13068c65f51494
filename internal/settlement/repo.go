package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
)

// Repository reads settled orders for revenue attribution. Orders are
// written by the checkout flow; this side only queries.
type Repository interface {
	// ListForVendorBetween returns orders created in [from, to) that might
	// involve the vendor. Multi-vendor orders are matched in memory by the
	// calculator; the query only narrows the candidate set.
	ListForVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.Order, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListForVendorBetween(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("vendor_id = ? OR portions IS NOT NULL", vendorID).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}
