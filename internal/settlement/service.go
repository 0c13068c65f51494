package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	apperrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
)

var centsPerDollar = decimal.NewFromInt(100)

// Service aggregates per-vendor revenue over calendar-month windows.
type Service struct {
	repo Repository
	logg *logger.Logger
}

type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// WindowTotals is the vendor's attributed revenue for one window.
type WindowTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Cents   int64           `json:"cents"`
	Units   int64           `json:"units"`
	Orders  int64           `json:"orders"`
}

// SalesSummary holds month-to-date totals alongside the prior full month.
type SalesSummary struct {
	VendorID    uuid.UUID    `json:"vendorId"`
	MonthToDate WindowTotals `json:"monthToDate"`
	PriorMonth  WindowTotals `json:"priorMonth"`
}

// SalesSummary computes the vendor's month-to-date and prior-month totals
// as of the given instant.
func (s *Service) SalesSummary(ctx context.Context, vendorID uuid.UUID, now time.Time) (SalesSummary, error) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	priorStart := monthStart.AddDate(0, -1, 0)

	monthToDate, err := s.windowTotals(ctx, vendorID, monthStart, now)
	if err != nil {
		return SalesSummary{}, apperrors.Wrap(apperrors.CodeInternal, err, "summing month-to-date orders")
	}
	priorMonth, err := s.windowTotals(ctx, vendorID, priorStart, monthStart)
	if err != nil {
		return SalesSummary{}, apperrors.Wrap(apperrors.CodeInternal, err, "summing prior-month orders")
	}

	return SalesSummary{
		VendorID:    vendorID,
		MonthToDate: monthToDate,
		PriorMonth:  priorMonth,
	}, nil
}

func (s *Service) windowTotals(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (WindowTotals, error) {
	orders, err := s.repo.ListForVendorBetween(ctx, vendorID, from, to)
	if err != nil {
		return WindowTotals{}, err
	}

	var totals WindowTotals
	for _, order := range orders {
		if !PortionsConsistent(order) {
			s.warnInconsistent(ctx, order)
		}
		cents := AmountFor(order, vendorID)
		if cents == 0 && UnitsFor(order, vendorID) == 0 {
			continue
		}
		totals.Cents += cents
		totals.Units += UnitsFor(order, vendorID)
		totals.Orders++
	}
	totals.Revenue = decimal.NewFromInt(totals.Cents).Div(centsPerDollar)
	return totals, nil
}

func (s *Service) warnInconsistent(ctx context.Context, order models.Order) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})
	s.logg.Warn(logCtx, "order portion totals do not sum to order total")
}
