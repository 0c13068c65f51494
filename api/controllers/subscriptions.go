package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/responses"
	subsvc "github.com/Aniefiokidi/MAKEITSELL-sub000/internal/subscriptions"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	pkgerrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

// SubscriptionStanding is the public view of a vendor's billing standing.
type SubscriptionStanding struct {
	VendorID           uuid.UUID  `json:"vendorId"`
	StoreName          string     `json:"storeName"`
	AccountStatus      string     `json:"accountStatus"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	SubscriptionExpiry time.Time  `json:"subscriptionExpiry"`
	GracePeriodEnd     *time.Time `json:"gracePeriodEnd,omitempty"`
	IsActive           bool       `json:"isActive"`
	Frozen             bool       `json:"frozen"`
}

// NewSubscriptionStanding maps a vendor record to its public standing.
func NewSubscriptionStanding(vendor models.Vendor) SubscriptionStanding {
	return SubscriptionStanding{
		VendorID:           vendor.ID,
		StoreName:          vendor.StoreName,
		AccountStatus:      vendor.AccountStatus().String(),
		SubscriptionStatus: vendor.SubscriptionStatus.String(),
		SubscriptionExpiry: vendor.SubscriptionExpiry,
		GracePeriodEnd:     vendor.GracePeriodEnd,
		IsActive:           vendor.IsActive,
		Frozen:             vendor.Frozen,
	}
}

// VendorIDParam parses the {vendorID} route parameter.
func VendorIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "vendorID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id")
	}
	return id, nil
}

func SubscriptionStandingGet(vendors subsvc.VendorRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if vendors == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor repository unavailable"))
			return
		}

		vendorID, err := VendorIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := vendors.Find(r.Context(), vendorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vendor"))
			return
		}

		responses.WriteSuccess(w, NewSubscriptionStanding(*vendor))
	}
}
