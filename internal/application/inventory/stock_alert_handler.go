package inventory

import (
	"context"
	"fmt"

	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Alert types
const (
	AlertStockUnitDepleted = "stock_unit_depleted"
	AlertShipmentSoldOut   = "shipment_sold_out"
)

// StockAlertHandler turns sell-out events into restock alerts for the
// purchasing desk: an iron diameter running out, or a shipment selling out.
type StockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a sell-out alert
type StockAlert struct {
	AlertType    string `json:"alert_type"`
	ShipmentID   string `json:"shipment_id"`
	ShipmentCode string `json:"shipment_code"`
	StockUnitID  string `json:"stock_unit_id,omitempty"`
	Key          string `json:"key,omitempty"`
	QuantitySold string `json:"quantity_sold,omitempty"`
}

// NewStockAlertHandler creates a new handler for sell-out events
func NewStockAlertHandler(logger *zap.Logger) *StockAlertHandler {
	return &StockAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockAlertHandler) WithNotifier(notifier StockAlertNotifier) *StockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockUnitDepleted, procurement.EventTypeShipmentStatusChanged}
}

// Handle builds an alert from a depletion or a move to sold
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var alert StockAlert
	switch e := event.(type) {
	case *inventory.StockUnitDepletedEvent:
		alert = StockAlert{
			AlertType:    AlertStockUnitDepleted,
			ShipmentID:   e.ShipmentID.String(),
			ShipmentCode: e.ShipmentCode,
			StockUnitID:  e.StockUnitID.String(),
			Key:          e.Key,
			QuantitySold: e.QuantitySold,
		}
	case *procurement.ShipmentStatusChangedEvent:
		if e.To != procurement.StatusSold {
			return nil
		}
		alert = StockAlert{
			AlertType:    AlertShipmentSoldOut,
			ShipmentID:   e.ShipmentID.String(),
			ShipmentCode: e.Code,
		}
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// notification failure never fails event handling
		h.logger.Error("failed to send stock alert",
			zap.String("alert_type", alert.AlertType),
			zap.String("shipment_code", alert.ShipmentCode),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("shipment_code", alert.ShipmentCode),
		zap.String("key", alert.Key),
		zap.String("quantity_sold", alert.QuantitySold),
	)
	return nil
}
