package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
)

// Service is a vendor listing whose visibility follows the vendor account.
type Service struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID   uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null;index"`
	Name       string              `gorm:"column:name;not null"`
	PriceCents int64               `gorm:"column:price_cents;not null;default:0"`
	Status     enums.ServiceStatus `gorm:"column:status;type:service_status;not null;default:'active'"`
	Frozen     bool                `gorm:"column:frozen;not null;default:false"`
	FrozenAt   *time.Time          `gorm:"column:frozen_at"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
