package enums

import "fmt"

// ServiceStatus mirrors the vendor's account standing onto each listed service.
type ServiceStatus string

const (
	ServiceStatusActive ServiceStatus = "active"
	ServiceStatusFrozen ServiceStatus = "frozen"
)

var validServiceStatuses = []ServiceStatus{
	ServiceStatusActive,
	ServiceStatusFrozen,
}

// String implements fmt.Stringer.
func (s ServiceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ServiceStatus) IsValid() bool {
	for _, candidate := range validServiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceStatus converts raw input into a ServiceStatus.
func ParseServiceStatus(value string) (ServiceStatus, error) {
	for _, candidate := range validServiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service status %q", value)
}
