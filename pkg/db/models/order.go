package models

import (
	"time"

	"github.com/google/uuid"
)

// Order aggregates a checkout that may span several vendors. This core only
// reads orders; creation and mutation belong to the checkout flow.
//
// Orders written before multi-vendor checkout carry no portion list and
// attribute their entire total to the top-level VendorID.
type Order struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64          `gorm:"column:order_number;not null"`
	VendorID    *uuid.UUID     `gorm:"column:vendor_id;type:uuid;index"`
	TotalCents  int64          `gorm:"column:total_cents;not null"`
	Portions    []OrderPortion `gorm:"column:portions;type:jsonb;serializer:json"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderPortion is the slice of a multi-vendor order fulfilled by one vendor.
// TotalCents is computed at order creation; settlement never re-splits.
type OrderPortion struct {
	VendorID   uuid.UUID         `json:"vendorId"`
	Items      []OrderPortionRow `json:"items"`
	TotalCents int64             `json:"totalCents"`
}

// OrderPortionRow is a line item inside a vendor portion.
type OrderPortionRow struct {
	ServiceID  uuid.UUID `json:"serviceId"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"priceCents"`
}
