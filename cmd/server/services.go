package main

import (
	"fmt"

	financeapp "github.com/sahelbuild/backend/internal/application/finance"
	identityapp "github.com/sahelbuild/backend/internal/application/identity"
	inventoryapp "github.com/sahelbuild/backend/internal/application/inventory"
	partnerapp "github.com/sahelbuild/backend/internal/application/partner"
	printingapp "github.com/sahelbuild/backend/internal/application/printing"
	procurementapp "github.com/sahelbuild/backend/internal/application/procurement"
	reportapp "github.com/sahelbuild/backend/internal/application/report"
	salesapp "github.com/sahelbuild/backend/internal/application/sales"
	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/event"
	"github.com/sahelbuild/backend/internal/infrastructure/export"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence"
	"github.com/sahelbuild/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// services is the application layer of one process.
type services struct {
	jwt         *auth.JWTService
	revocations auth.RevocationList

	shipments  *procurementapp.ShipmentService
	receptions *procurementapp.ReceptionService
	stock      *inventoryapp.StockUnitService
	sales      *salesapp.SaleService
	payments   *financeapp.PaymentService
	customers  *partnerapp.CustomerService
	vehicles   *partnerapp.VehicleService
	portal     *partnerapp.PortalService
	reports    *reportapp.MetricsService
	auth       *identityapp.AuthService
	receipts   *receiptPrinting
}

func newServices(cfg *config.Config, db *persistence.Database, tel *telemetryProviders, revocations auth.RevocationList, log *zap.Logger) (*services, error) {
	metrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  tel.meters.Meter("sahel-ledger"),
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("create ledger metrics: %w", err)
	}

	// The journal keeps every aggregate's history; the alert handler tells
	// purchasing when a stock unit runs out.
	bus := event.NewBus(log)
	journal := event.NewJournalHandler(db.DB, log)
	bus.Subscribe(journal)
	bus.Subscribe(inventoryapp.NewStockAlertHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)))

	var (
		shipmentRepo  = persistence.NewGormShipmentRepository(db.DB)
		stockUnitRepo = persistence.NewGormStockUnitRepository(db.DB)
		customerRepo  = persistence.NewGormCustomerRepository(db.DB)
		vehicleRepo   = persistence.NewGormVehicleRepository(db.DB)
		saleRepo      = persistence.NewGormSaleRepository(db.DB)
		paymentRepo   = persistence.NewGormPaymentRepository(db.DB)
		txScope       = persistence.NewGormTransactionScope(db.DB)
		market        = cfg.App.MarketCountry()
	)

	s := &services{
		jwt:         auth.NewJWTService(cfg.JWT),
		revocations: revocations,
		shipments:   procurementapp.NewShipmentService(shipmentRepo),
		receptions:  procurementapp.NewReceptionService(txScope),
		stock:       inventoryapp.NewStockUnitService(stockUnitRepo),
		sales: salesapp.NewSaleService(txScope, saleRepo, customerRepo, vehicleRepo, salesapp.ReceiptSettings{
			Business: cfg.App.BusinessName,
			Currency: cfg.App.Currency,
		}),
		payments:  financeapp.NewPaymentService(txScope, paymentRepo),
		customers: partnerapp.NewCustomerService(customerRepo, market),
		vehicles:  partnerapp.NewVehicleService(vehicleRepo, saleRepo, market),
		reports:   reportapp.NewMetricsService(shipmentRepo),
	}

	s.shipments.SetEventPublisher(bus)
	s.shipments.SetMetrics(metrics)
	s.shipments.SetHistory(journal)
	s.receptions.SetEventPublisher(bus)
	s.receptions.SetMetrics(metrics)
	s.sales.SetEventPublisher(bus)
	s.sales.SetMetrics(metrics)
	s.payments.SetEventPublisher(bus)
	s.payments.SetMetrics(metrics)
	s.customers.SetEventPublisher(bus)
	s.vehicles.SetEventPublisher(bus)
	s.vehicles.SetRevoker(revocations, s.jwt.PortalTTL())
	s.reports.SetWorkbookWriter(export.NewPortfolioWorkbook(cfg.App.Currency))

	pins := auth.NewPINLimiter(cfg.Portal.PINAttemptsPerMinute, cfg.Portal.PINBurst)
	s.portal = partnerapp.NewPortalService(vehicleRepo, saleRepo, s.jwt, pins, log)
	s.auth = identityapp.NewAuthService(cfg.Auth.Operators, s.jwt, revocations, log)

	if s.receipts, err = newReceiptPrinting(cfg, s.sales, log); err != nil {
		return nil, err
	}
	return s, nil
}

// receiptService is nil when printing is disabled; the sale handler then
// answers receipt requests with 501.
func (s *services) receiptService() *printingapp.ReceiptService {
	if s.receipts == nil {
		return nil
	}
	return s.receipts.ReceiptService
}

func (s *services) close() {
	if s.receipts != nil {
		s.receipts.close()
	}
}
