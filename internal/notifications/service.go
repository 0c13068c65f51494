package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/enums"
	apperrors "github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/errors"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/logger"
	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/pagination"
)

// Service manages the vendor-facing notification feed and doubles as the
// in-app delivery channel for billing events.
type Service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Now    func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

type ListInput struct {
	VendorID   uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

type ListResult struct {
	Notifications []models.Notification
	NextCursor    string
}

func (s *Service) List(ctx context.Context, input ListInput) (ListResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return ListResult{}, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	notifications, next, err := s.repo.List(ctx, listNotificationsParams{
		VendorID:   input.VendorID,
		Limit:      input.Limit,
		Cursor:     cursor,
		UnreadOnly: input.UnreadOnly,
	})
	if err != nil {
		return ListResult{}, apperrors.Wrap(apperrors.CodeInternal, err, "listing notifications")
	}

	result := ListResult{Notifications: notifications}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *Service) MarkRead(ctx context.Context, vendorID, notificationID uuid.UUID) error {
	mark, err := s.repo.MarkRead(ctx, vendorID, notificationID, s.now().UTC())
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "marking notification read")
	}
	if !mark.Found {
		return apperrors.New(apperrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, vendorID, s.now().UTC())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "marking notifications read")
	}
	return updated, nil
}

func (s *Service) deliver(ctx context.Context, contact VendorContact, kind enums.NotificationType, title, message string) error {
	notification := models.Notification{
		ID:        uuid.New(),
		VendorID:  contact.VendorID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("persisting %s notification: %w", kind, err)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"vendor_id":         contact.VendorID.String(),
		"notification_type": string(kind),
	})
	s.logg.Info(logCtx, "notification delivered")
	return nil
}

func (s *Service) SendSubscriptionConfirmation(ctx context.Context, contact VendorContact, paidThrough time.Time) error {
	message := fmt.Sprintf("Your subscription payment was received. %s is active through %s.",
		contact.StoreName, paidThrough.Format("Jan 2, 2006"))
	return s.deliver(ctx, contact, enums.NotificationTypeSubscriptionConfirmation, "Subscription renewed", message)
}

func (s *Service) SendRenewalFailed(ctx context.Context, contact VendorContact, reason string) error {
	message := fmt.Sprintf("We could not renew the subscription for %s: %s. Please update your payment method.",
		contact.StoreName, reason)
	return s.deliver(ctx, contact, enums.NotificationTypeRenewalFailed, "Renewal failed", message)
}

func (s *Service) SendGracePeriodWarning(ctx context.Context, contact VendorContact, daysRemaining int) error {
	message := fmt.Sprintf("Your subscription payment is overdue. %s will be frozen in %d day(s) unless payment is received.",
		contact.StoreName, daysRemaining)
	return s.deliver(ctx, contact, enums.NotificationTypeGracePeriodWarning, "Payment overdue", message)
}

func (s *Service) SendAccountFrozen(ctx context.Context, contact VendorContact, frozenAt time.Time) error {
	message := fmt.Sprintf("%s was frozen on %s because the grace period ended without payment. Renew to restore your listings.",
		contact.StoreName, frozenAt.Format("Jan 2, 2006"))
	return s.deliver(ctx, contact, enums.NotificationTypeAccountFrozen, "Account frozen", message)
}

func (s *Service) SendAccountReactivated(ctx context.Context, contact VendorContact) error {
	message := fmt.Sprintf("Welcome back! %s is active again and your listings are visible to buyers.", contact.StoreName)
	return s.deliver(ctx, contact, enums.NotificationTypeAccountReactivated, "Account reactivated", message)
}

func (s *Service) SendExpiryWarning(ctx context.Context, contact VendorContact, expiresAt time.Time) error {
	message := fmt.Sprintf("The subscription for %s expires on %s. Renew now to avoid an interruption.",
		contact.StoreName, expiresAt.Format("Jan 2, 2006"))
	return s.deliver(ctx, contact, enums.NotificationTypeExpiryWarning, "Subscription expiring soon", message)
}
