package procurement

import "slices"

// ShipmentStatus is a lifecycle position. Which statuses are reachable
// depends on the shipment's category.
type ShipmentStatus string

const (
	StatusOrdered          ShipmentStatus = "ordered"
	StatusPaid             ShipmentStatus = "paid"
	StatusInTransit        ShipmentStatus = "in_transit"
	StatusInTransitLeg1    ShipmentStatus = "in_transit_leg1"
	StatusInTransitLeg2    ShipmentStatus = "in_transit_leg2"
	StatusInTransitLeg3    ShipmentStatus = "in_transit_leg3"
	StatusArrived          ShipmentStatus = "arrived"
	StatusUnloading        ShipmentStatus = "unloading"
	StatusVerified         ShipmentStatus = "verified"
	StatusAvailableForSale ShipmentStatus = "available_for_sale"
	StatusSelling          ShipmentStatus = "selling"
	StatusSold             ShipmentStatus = "sold"
	StatusClosed           ShipmentStatus = "closed"
)

var (
	ironLifecycle = []ShipmentStatus{
		StatusOrdered, StatusPaid,
		StatusInTransitLeg1, StatusInTransitLeg2, StatusInTransitLeg3,
		StatusArrived, StatusUnloading, StatusVerified, StatusClosed,
	}
	retailLifecycle = []ShipmentStatus{
		StatusOrdered, StatusPaid, StatusInTransit, StatusArrived,
		StatusAvailableForSale, StatusSelling, StatusSold, StatusClosed,
	}
)

// IsValid checks if the status is known to any lifecycle
func (s ShipmentStatus) IsValid() bool {
	return slices.Contains(ironLifecycle, s) || slices.Contains(retailLifecycle, s)
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true once nothing more can happen to the shipment
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusClosed
}

// Lifecycle returns the ordered statuses of the category
func (c Category) Lifecycle() []ShipmentStatus {
	if c == CategoryIron {
		return ironLifecycle
	}
	return retailLifecycle
}

// HasStatus reports whether the status belongs to the category's lifecycle
func (c Category) HasStatus(s ShipmentStatus) bool {
	return slices.Contains(c.Lifecycle(), s)
}

// ReceptionStatus is the status a confirmed reception moves the shipment to
func (c Category) ReceptionStatus() ShipmentStatus {
	if c == CategoryIron {
		return StatusVerified
	}
	return StatusAvailableForSale
}

// CanReceiveIn reports whether a reception may be recorded in status s
func (c Category) CanReceiveIn(s ShipmentStatus) bool {
	if s == StatusArrived {
		return true
	}
	return c == CategoryIron && s == StatusUnloading
}

// CanTransition reports whether from -> to moves strictly forward in the
// category's lifecycle. Skipping intermediate statuses is allowed.
func (c Category) CanTransition(from, to ShipmentStatus) bool {
	lifecycle := c.Lifecycle()
	fromIdx := slices.Index(lifecycle, from)
	toIdx := slices.Index(lifecycle, to)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	return toIdx > fromIdx
}

// IsAutomatic reports whether the status can only be entered through a
// domain event (reception, first sale, sell-out) and never by an operator.
func (c Category) IsAutomatic(s ShipmentStatus) bool {
	switch s {
	case StatusSelling, StatusSold, StatusVerified:
		return true
	case StatusAvailableForSale:
		return c.RequiresReception()
	}
	return false
}

// IsSellable reports whether direct sales may be recorded against a shipment
// in status s.
func (c Category) IsSellable(s ShipmentStatus) bool {
	if c.SellsThroughInventory() {
		return false
	}
	return s == StatusAvailableForSale || s == StatusSelling
}
