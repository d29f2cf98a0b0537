package procurement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscrepancyStatus classifies a received line against its order
type DiscrepancyStatus string

const (
	DiscrepancyShort      DiscrepancyStatus = "short"
	DiscrepancyExcess     DiscrepancyStatus = "excess"
	DiscrepancyConforming DiscrepancyStatus = "conforming"
)

// ClassifyDiscrepancy returns received - ordered and its classification
func ClassifyDiscrepancy(ordered, received decimal.Decimal) (decimal.Decimal, DiscrepancyStatus) {
	difference := received.Sub(ordered)
	switch {
	case difference.IsNegative():
		return difference, DiscrepancyShort
	case difference.IsPositive():
		return difference, DiscrepancyExcess
	default:
		return difference, DiscrepancyConforming
	}
}

// Discrepancy is the ordered-vs-received comparison of one shipment line
type Discrepancy struct {
	ID               uuid.UUID
	ReceptionID      uuid.UUID
	LineKey          string
	OrderedQuantity  decimal.Decimal
	ReceivedQuantity decimal.Decimal
	Difference       decimal.Decimal
	Status           DiscrepancyStatus
}

// Reception records the one-time confirmation that goods arrived
type Reception struct {
	ID                    uuid.UUID
	ShipmentID            uuid.UUID
	ReceivedAt            time.Time
	Location              string
	ResponsiblePerson     string
	ReceivedBy            string
	CompensationRequested bool
	DeductionApplied      bool
	Notes                 string
	OffloadingCost        decimal.Decimal
	WorkerCount           int
	TotalReceived         decimal.Decimal
	Discrepancies         []Discrepancy
	CreatedAt             time.Time
}

// ReceptionInput is what the operator enters when goods arrive.
// Received is keyed by line key; a missing key defaults to the ordered quantity.
type ReceptionInput struct {
	ReceivedAt            time.Time
	Location              string
	ResponsiblePerson     string
	ReceivedBy            string
	Received              map[string]decimal.Decimal
	CompensationRequested bool
	DeductionApplied      bool
	Notes                 string
	OffloadingCost        decimal.Decimal
	WorkerCount           int
}

// Validate checks operator input before any state is touched
func (in ReceptionInput) Validate(lines []ShipmentLine) error {
	if strings.TrimSpace(in.ReceivedBy) == "" {
		return shared.ErrInvalidActor
	}
	if strings.TrimSpace(in.Location) == "" {
		return shared.NewDomainError("INVALID_LOCATION", "Reception location is required")
	}
	if in.OffloadingCost.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Offloading cost cannot be negative")
	}
	if in.WorkerCount < 0 {
		return shared.NewDomainError("INVALID_WORKER_COUNT", "Worker count cannot be negative")
	}
	if in.OffloadingCost.IsPositive() && in.WorkerCount == 0 {
		return shared.NewDomainError("INVALID_WORKER_COUNT", "Worker count is required when an offloading cost is paid")
	}
	known := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		known[l.Key] = struct{}{}
	}
	for key, qty := range in.Received {
		if _, ok := known[key]; !ok {
			return shared.NewDomainError("UNKNOWN_LINE", "Received quantity given for unknown line "+key)
		}
		if qty.IsNegative() {
			return shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative for line "+key)
		}
	}
	return nil
}

// reconcile builds the reception record, one discrepancy per shipment line
func (in ReceptionInput) reconcile(shipmentID uuid.UUID, lines []ShipmentLine) *Reception {
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	r := &Reception{
		ID:                    uuid.New(),
		ShipmentID:            shipmentID,
		ReceivedAt:            receivedAt,
		Location:              strings.TrimSpace(in.Location),
		ResponsiblePerson:     strings.TrimSpace(in.ResponsiblePerson),
		ReceivedBy:            in.ReceivedBy,
		CompensationRequested: in.CompensationRequested,
		DeductionApplied:      in.DeductionApplied,
		Notes:                 in.Notes,
		OffloadingCost:        in.OffloadingCost,
		WorkerCount:           in.WorkerCount,
		TotalReceived:         decimal.Zero,
		Discrepancies:         make([]Discrepancy, 0, len(lines)),
		CreatedAt:             time.Now(),
	}
	for _, line := range lines {
		received, ok := in.Received[line.Key]
		if !ok {
			received = line.OrderedQuantity
		}
		difference, status := ClassifyDiscrepancy(line.OrderedQuantity, received)
		r.Discrepancies = append(r.Discrepancies, Discrepancy{
			ID:               uuid.New(),
			ReceptionID:      r.ID,
			LineKey:          line.Key,
			OrderedQuantity:  line.OrderedQuantity,
			ReceivedQuantity: received,
			Difference:       difference,
			Status:           status,
		})
		r.TotalReceived = r.TotalReceived.Add(received)
	}
	return r
}

// ReceivedRows returns the discrepancy rows that actually brought goods in
func (r *Reception) ReceivedRows() []Discrepancy {
	rows := make([]Discrepancy, 0, len(r.Discrepancies))
	for _, d := range r.Discrepancies {
		if d.ReceivedQuantity.IsPositive() {
			rows = append(rows, d)
		}
	}
	return rows
}

// HasDiscrepancy reports whether any line was short or in excess
func (r *Reception) HasDiscrepancy() bool {
	for _, d := range r.Discrepancies {
		if d.Status != DiscrepancyConforming {
			return true
		}
	}
	return false
}
