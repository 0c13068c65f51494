package enums

import "fmt"

// NotificationType identifies the typed sends the billing core makes.
type NotificationType string

const (
	NotificationTypeSubscriptionConfirmation NotificationType = "subscription_confirmation"
	NotificationTypeRenewalFailed            NotificationType = "renewal_failed"
	NotificationTypeGracePeriodWarning       NotificationType = "grace_period_warning"
	NotificationTypeAccountFrozen            NotificationType = "account_frozen"
	NotificationTypeAccountReactivated       NotificationType = "account_reactivated"
	NotificationTypeExpiryWarning            NotificationType = "expiry_warning"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSubscriptionConfirmation,
	NotificationTypeRenewalFailed,
	NotificationTypeGracePeriodWarning,
	NotificationTypeAccountFrozen,
	NotificationTypeAccountReactivated,
	NotificationTypeExpiryWarning,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
