package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
)

// Vendor is the per-vendor subscription record driving storefront visibility.
//
// SubscriptionStatus is the single authoritative state; the customer-facing
// account status and the IsActive/Frozen listing flags are projections kept
// consistent with it by the lifecycle engine.
type Vendor struct {
	ID                   uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreName            string                   `gorm:"column:store_name;not null"`
	Email                string                   `gorm:"column:email;not null"`
	Phone                *string                  `gorm:"column:phone"`
	SubscriptionStatus   enums.SubscriptionStatus `gorm:"column:subscription_status;type:subscription_status;not null;default:'active'"`
	SubscriptionExpiry   time.Time                `gorm:"column:subscription_expiry;not null"`
	GracePeriodEnd       *time.Time               `gorm:"column:grace_period_end"`
	IsActive             bool                     `gorm:"column:is_active;not null;default:true"`
	Frozen               bool                     `gorm:"column:frozen;not null;default:false"`
	SuspendedAt          *time.Time               `gorm:"column:suspended_at"`
	FrozenAt             *time.Time               `gorm:"column:frozen_at"`
	LastExpiryWarning    *time.Time               `gorm:"column:last_expiry_warning"`
	LastGraceWarning     *time.Time               `gorm:"column:last_grace_warning"`
	RenewalFailureReason *string                  `gorm:"column:renewal_failure_reason"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// AccountStatus returns the derived customer-facing account state.
func (v Vendor) AccountStatus() enums.AccountStatus {
	return enums.AccountStatusFor(v.SubscriptionStatus)
}
