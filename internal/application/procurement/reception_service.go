package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ReceptionService records the one-time reception of a shipment. The
// shipment update, the synthetic offloading expense and the derived stock
// units are written in one transaction.
type ReceptionService struct {
	txScope        appshared.TransactionScope
	eventPublisher shared.EventPublisher
	metrics        appshared.LedgerRecorder
}

// NewReceptionService creates a new ReceptionService
func NewReceptionService(txScope appshared.TransactionScope) *ReceptionService {
	return &ReceptionService{
		txScope: txScope,
		metrics: appshared.NoopRecorder{},
	}
}

// SetEventPublisher sets the event publisher
func (s *ReceptionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *ReceptionService) SetMetrics(metrics appshared.LedgerRecorder) {
	s.metrics = appshared.RecorderOrNoop(metrics)
}

// Record confirms the reception of a shipment
func (s *ReceptionService) Record(ctx context.Context, actor string, shipmentID uuid.UUID, req RecordReceptionRequest) (*ReceptionResult, error) {
	receivedAt := time.Now()
	if req.ReceivedAt != nil && !req.ReceivedAt.IsZero() {
		receivedAt = *req.ReceivedAt
	}

	var (
		collector appshared.EventCollector
		shipment  *procurement.Shipment
		units     []*inventory.StockUnit
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		collector.Reset()

		var err error
		shipment, err = repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}

		_, err = shipment.ConfirmReception(procurement.ReceptionInput{
			ReceivedAt:            receivedAt,
			Location:              req.Location,
			ResponsiblePerson:     req.ResponsiblePerson,
			ReceivedBy:            actor,
			Received:              req.Received,
			CompensationRequested: req.CompensationRequested,
			DeductionApplied:      req.DeductionApplied,
			Notes:                 req.Notes,
			OffloadingCost:        req.OffloadingCost,
			WorkerCount:           req.WorkerCount,
		})
		if err != nil {
			return err
		}
		if err := repos.Shipments().Save(ctx, shipment); err != nil {
			return err
		}

		// Priced from the post-reception cost per unit, offloading included
		units, err = inventory.DeriveFromReception(shipment)
		if err != nil {
			return err
		}
		if len(units) > 0 {
			if err := repos.StockUnits().SaveBatch(ctx, units); err != nil {
				return err
			}
		}

		collector.Collect(shipment)
		for _, u := range units {
			collector.Collect(u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	collector.Publish(ctx, s.eventPublisher)

	category := string(shipment.Category)
	s.metrics.RecordReception(ctx, category, shipment.Reception.HasDiscrepancy())
	if shipment.Reception.OffloadingCost.IsPositive() {
		s.metrics.RecordExpense(ctx, category, string(procurement.StageArrival), shipment.Reception.OffloadingCost)
	}

	logger.FromContext(ctx).Info("reception recorded",
		zap.String("shipment_code", shipment.Code),
		zap.String("total_received", shipment.Reception.TotalReceived.String()),
		zap.Bool("discrepancy", shipment.Reception.HasDiscrepancy()),
		zap.Int("stock_units", len(units)),
	)

	refs := make([]StockUnitRef, len(units))
	for i, u := range units {
		refs[i] = StockUnitRef{
			ID:             u.ID,
			Key:            u.Key,
			Quantity:       u.Quantity,
			CostPerUnit:    u.CostPerUnit,
			WholesalePrice: u.WholesalePrice,
			RetailPrice:    u.RetailPrice,
		}
	}
	return &ReceptionResult{
		Shipment:   ToShipmentResponse(shipment),
		StockUnits: refs,
	}, nil
}
