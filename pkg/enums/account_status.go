package enums

// AccountStatus is the customer-facing view of a vendor account. It is a
// read-only projection of SubscriptionStatus; nothing writes it directly.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusFrozen  AccountStatus = "frozen"
	AccountStatusDeleted AccountStatus = "deleted"
)

// String implements fmt.Stringer.
func (s AccountStatus) String() string {
	return string(s)
}

// AccountStatusFor derives the account-level view from the authoritative
// subscription status. A vendor in its grace period is still active to
// customers; only freezing or deletion hides the storefront.
func AccountStatusFor(status SubscriptionStatus) AccountStatus {
	switch status {
	case SubscriptionStatusFrozen:
		return AccountStatusFrozen
	case SubscriptionStatusDeleted:
		return AccountStatusDeleted
	default:
		return AccountStatusActive
	}
}
