package webhooks

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/controllers"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/responses"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/validators"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	pkgerrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
)

// paymentLifecycle is the slice of the lifecycle engine the webhook drives.
type paymentLifecycle interface {
	HandlePaymentSucceeded(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	HandlePaymentFailed(ctx context.Context, vendorID uuid.UUID, reason string) (*models.Vendor, error)
}

type paymentEventRequest struct {
	VendorID string `json:"vendorId" validate:"required,uuid"`
	Outcome  string `json:"outcome" validate:"required,oneof=succeeded failed"`
	Reason   string `json:"reason,omitempty"`
}

// PaymentEvent ingests the payment gateway's renewal callbacks. The gateway
// retries on non-2xx, so transient failures surface as 5xx while terminal
// state conflicts return 422 and stop the retry loop.
func PaymentEvent(engine paymentLifecycle, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle engine unavailable"))
			return
		}

		var payload paymentEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendorID, err := uuid.Parse(payload.VendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithVendorID(ctx, vendorID.String())
		}

		var vendor *models.Vendor
		switch payload.Outcome {
		case outcomeSucceeded:
			vendor, err = engine.HandlePaymentSucceeded(ctx, vendorID)
		case outcomeFailed:
			vendor, err = engine.HandlePaymentFailed(ctx, vendorID, payload.Reason)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "outcome must be succeeded or failed")
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, controllers.NewSubscriptionStanding(*vendor))
	}
}
