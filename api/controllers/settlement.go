package controllers

import (
	"net/http"
	"time"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/api/responses"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/internal/settlement"
	pkgerrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

func SalesSummaryGet(svc *settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		vendorID, err := VendorIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.SalesSummary(r.Context(), vendorID, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
