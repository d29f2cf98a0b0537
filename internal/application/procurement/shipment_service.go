package procurement

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/event"
)

// EventHistory reads the journaled events of an aggregate
type EventHistory interface {
	History(ctx context.Context, aggregateID uuid.UUID) ([]event.JournalEntry, error)
}

// ShipmentService handles the shipment lifecycle and its cost ledger
type ShipmentService struct {
	shipmentRepo   procurement.ShipmentRepository
	eventPublisher shared.EventPublisher
	metrics        appshared.LedgerRecorder
	history        EventHistory
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(shipmentRepo procurement.ShipmentRepository) *ShipmentService {
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		metrics:      appshared.NoopRecorder{},
	}
}

// SetEventPublisher sets the event publisher
func (s *ShipmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *ShipmentService) SetMetrics(metrics appshared.LedgerRecorder) {
	s.metrics = appshared.RecorderOrNoop(metrics)
}

// SetHistory sets the event journal reader used by History
func (s *ShipmentService) SetHistory(history EventHistory) {
	s.history = history
}

// Create orders a new shipment. The code is allocated from origin,
// category and order date.
func (s *ShipmentService) Create(ctx context.Context, actor string, req CreateShipmentRequest) (*ShipmentResponse, error) {
	category, err := procurement.ParseCategory(req.Category)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", err.Error())
	}

	orderedAt := time.Now()
	if req.OrderedAt != nil && !req.OrderedAt.IsZero() {
		orderedAt = *req.OrderedAt
	}
	origin := strings.ToUpper(strings.TrimSpace(req.Origin))

	code, err := s.shipmentRepo.NextCode(ctx, origin, category, orderedAt)
	if err != nil {
		return nil, err
	}

	lines := make([]procurement.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = procurement.LineInput{Key: l.Key, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	shipment, err := procurement.NewShipment(code, category, origin, req.Supplier, lines, orderedAt, actor)
	if err != nil {
		return nil, err
	}
	shipment.Notes = req.Notes

	if err := s.shipmentRepo.Save(ctx, shipment); err != nil {
		return nil, err
	}

	s.publish(ctx, shipment)
	s.metrics.RecordShipmentCreated(ctx, string(category))

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// GetByID retrieves a shipment with its derived metrics
func (s *ShipmentService) GetByID(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// List retrieves shipments with filtering and pagination
func (s *ShipmentService) List(ctx context.Context, filter ShipmentListFilter) ([]ShipmentListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "ordered_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	shipments, total, err := s.shipmentRepo.FindAll(ctx, procurement.ShipmentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Category: procurement.Category(filter.Category),
		Status:   procurement.ShipmentStatus(filter.Status),
		Origin:   strings.ToUpper(filter.Origin),
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ShipmentListResponse, len(shipments))
	for i := range shipments {
		responses[i] = ToShipmentListResponse(&shipments[i])
	}
	return responses, total, nil
}

// AdvanceStatus moves a shipment forward on its category lifecycle
func (s *ShipmentService) AdvanceStatus(ctx context.Context, actor string, id uuid.UUID, req AdvanceStatusRequest) (*ShipmentResponse, error) {
	target := procurement.ShipmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown status "+req.Status)
	}

	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shipment.AdvanceStatus(target, actor); err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.Save(ctx, shipment); err != nil {
		return nil, err
	}

	s.publish(ctx, shipment)
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// AddExpense books an expense. When the shipment has already sold goods the
// response carries the impact preview computed before the expense was added.
func (s *ShipmentService) AddExpense(ctx context.Context, actor string, id uuid.UUID, req AddExpenseRequest) (*AddExpenseResponse, error) {
	stage, err := procurement.ParseExpenseStage(req.Stage)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_STAGE", err.Error())
	}
	date := time.Now()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var impact *procurement.ExpenseImpact
	if shipment.HasSales() {
		impact, err = shipment.PreviewExpense(req.Amount)
		if err != nil {
			return nil, err
		}
	}

	expense, err := shipment.AddExpense(date, stage, req.Description, req.Amount, req.Reference, actor)
	if err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.Save(ctx, shipment); err != nil {
		return nil, err
	}

	s.publish(ctx, shipment)
	s.metrics.RecordExpense(ctx, string(shipment.Category), string(stage), expense.Amount)

	return &AddExpenseResponse{
		Expense:     ToExpenseResponse(expense),
		TotalCost:   shipment.TotalCost(),
		CostPerUnit: shipment.CostPerUnit(),
		Impact:      impact,
	}, nil
}

// PreviewExpense projects an expense on the shipment without booking it
func (s *ShipmentService) PreviewExpense(ctx context.Context, id uuid.UUID, req PreviewExpenseRequest) (*procurement.ExpenseImpact, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return shipment.PreviewExpense(req.Amount)
}

// DeleteExpense removes an expense (admin only). Total cost returns to its
// value before the expense was added.
func (s *ShipmentService) DeleteExpense(ctx context.Context, id, expenseID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := shipment.RemoveExpense(expenseID); err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.Save(ctx, shipment); err != nil {
		return nil, err
	}

	s.publish(ctx, shipment)
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// History returns the journaled events of a shipment, oldest first
func (s *ShipmentService) History(ctx context.Context, id uuid.UUID) ([]HistoryEntryResponse, error) {
	if _, err := s.shipmentRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []HistoryEntryResponse{}, nil
	}

	entries, err := s.history.History(ctx, id)
	if err != nil {
		return nil, err
	}
	responses := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = HistoryEntryResponse{
			EventType:  e.EventType,
			Actor:      e.Actor,
			OccurredAt: e.OccurredAt,
			Payload:    json.RawMessage(e.Payload),
		}
	}
	return responses, nil
}

func (s *ShipmentService) publish(ctx context.Context, shipment *procurement.Shipment) {
	var collector appshared.EventCollector
	collector.Collect(shipment)
	collector.Publish(ctx, s.eventPublisher)
}
