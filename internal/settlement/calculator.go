package settlement

import (
	"github.com/google/uuid"

	"github.com/Aniefiokidi/MAKEITSELL-sub000/pkg/db/models"
)

// AmountFor returns the cents of an order attributable to the vendor.
//
// Portion lists are authoritative when present; the top-level vendor id is
// only consulted for legacy single-vendor orders written before portions
// existed. Orders that mention the vendor nowhere contribute zero. The
// lookup never errors so a malformed historical order can't sink a summary.
func AmountFor(order models.Order, vendorID uuid.UUID) int64 {
	if len(order.Portions) > 0 {
		for _, portion := range order.Portions {
			if portion.VendorID == vendorID {
				return portion.TotalCents
			}
		}
		return 0
	}
	if order.VendorID != nil && *order.VendorID == vendorID {
		return order.TotalCents
	}
	return 0
}

// UnitsFor returns the item quantity of an order attributable to the vendor.
// Legacy orders carry no line items and count as a single unit.
func UnitsFor(order models.Order, vendorID uuid.UUID) int64 {
	if len(order.Portions) > 0 {
		for _, portion := range order.Portions {
			if portion.VendorID != vendorID {
				continue
			}
			var units int64
			for _, row := range portion.Items {
				units += int64(row.Quantity)
			}
			return units
		}
		return 0
	}
	if order.VendorID != nil && *order.VendorID == vendorID {
		return 1
	}
	return 0
}

// PortionsConsistent reports whether the portion totals sum to the order
// total. Legacy orders without portions are trivially consistent.
func PortionsConsistent(order models.Order) bool {
	if len(order.Portions) == 0 {
		return true
	}
	var sum int64
	for _, portion := range order.Portions {
		sum += portion.TotalCents
	}
	return sum == order.TotalCents
}
