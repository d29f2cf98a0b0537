package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/sahelbuild/backend/internal/domain/finance"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService records counter sales against shipments, stock units and
// consignment vehicles, and keeps customer accounts in step.
type SaleService struct {
	txScope        appshared.TransactionScope
	saleRepo       sales.SaleRepository
	customerRepo   partner.CustomerRepository
	vehicleRepo    partner.VehicleRepository
	settings       ReceiptSettings
	eventPublisher shared.EventPublisher
	metrics        appshared.LedgerRecorder
}

// NewSaleService creates a new SaleService
func NewSaleService(
	txScope appshared.TransactionScope,
	saleRepo sales.SaleRepository,
	customerRepo partner.CustomerRepository,
	vehicleRepo partner.VehicleRepository,
	settings ReceiptSettings,
) *SaleService {
	return &SaleService{
		txScope:      txScope,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		settings:     settings,
		metrics:      appshared.NoopRecorder{},
	}
}

// SetEventPublisher sets the event publisher
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *SaleService) SetMetrics(metrics appshared.LedgerRecorder) {
	s.metrics = appshared.RecorderOrNoop(metrics)
}

// RecordSale records an invoice. Every source line, the customer account and
// the initial payment are written in one transaction.
func (s *SaleService) RecordSale(ctx context.Context, actor string, req RecordSaleRequest) (*RecordSaleResult, error) {
	saleDate := time.Now()
	if req.SaleDate != nil && !req.SaleDate.IsZero() {
		saleDate = *req.SaleDate
	}
	method := finance.PaymentMethodCash
	if req.Method != "" {
		method = finance.PaymentMethod(req.Method)
	}

	var (
		collector appshared.EventCollector
		sale      *sales.Sale
		payment   *finance.PaymentRecord
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		collector.Reset()
		payment = nil

		var customer *partner.Customer
		if req.CustomerID != nil {
			var err error
			customer, err = repos.Customers().FindByID(ctx, *req.CustomerID)
			if err != nil {
				return err
			}
			if !customer.IsActive() {
				return shared.NewDomainError("CUSTOMER_INACTIVE", "Customer "+customer.Code+" is inactive")
			}
		}

		sources := newSourceSet(repos)
		wholesale := customer != nil && customer.IsWholesale()
		items := make([]sales.ItemInput, len(req.Items))
		for i, itemReq := range req.Items {
			item, err := sources.resolve(ctx, itemReq, wholesale)
			if err != nil {
				return err
			}
			items[i] = item
		}

		number, err := repos.Sales().NextNumber(ctx, saleDate)
		if err != nil {
			return err
		}
		sale, err = sales.NewSale(number, req.CustomerID, saleDate, items, req.Discount, actor, req.Notes)
		if err != nil {
			return err
		}
		if err := sale.CheckInitialPayment(req.InitialPayment); err != nil {
			return err
		}
		if customer != nil {
			if err := customer.CheckCredit(sale.Total.Sub(req.InitialPayment)); err != nil {
				return err
			}
		}

		for _, item := range sale.Items {
			if err := sources.take(ctx, item, actor); err != nil {
				return err
			}
		}

		if customer != nil {
			customer.RecordPurchase(sale.Total)
		}
		if req.InitialPayment.IsPositive() {
			payment, err = s.applyInitialPayment(ctx, repos, sale, customer, method, req.Reference, actor, req.InitialPayment)
			if err != nil {
				return err
			}
		}

		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		if payment != nil {
			if err := repos.Payments().Save(ctx, payment); err != nil {
				return err
			}
		}
		if err := sources.save(ctx, &collector); err != nil {
			return err
		}
		if customer != nil {
			if err := repos.Customers().Save(ctx, customer); err != nil {
				return err
			}
		}

		collector.Collect(sale)
		if customer != nil {
			collector.Collect(customer)
		}
		if payment != nil {
			collector.Collect(payment)
		}
		return nil
	})
	if err != nil {
		appshared.RecordRejection(ctx, s.metrics, err)
		return nil, err
	}

	collector.Publish(ctx, s.eventPublisher)
	s.metrics.RecordSale(ctx, string(sale.PaymentStatus), sale.Total)
	if payment != nil {
		s.metrics.RecordPayment(ctx, string(payment.Method), appshared.AllocationTargeted, payment.Amount)
	}

	logger.FromContext(ctx).Info("sale recorded",
		zap.String("number", sale.Number),
		zap.Bool("walk_in", sale.IsWalkIn()),
		zap.String("total", sale.Total.String()),
		zap.String("amount_due", sale.AmountDue.String()),
	)

	result := &RecordSaleResult{Sale: ToSaleResponse(sale)}
	if payment != nil {
		result.PaymentID = &payment.ID
	}
	return result, nil
}

// applyInitialPayment credits the counter payment to the new sale. A walk-in
// has no account to record a payment against, so its payment is only
// reflected on the sale itself.
func (s *SaleService) applyInitialPayment(
	ctx context.Context,
	repos appshared.TransactionalRepositories,
	sale *sales.Sale,
	customer *partner.Customer,
	method finance.PaymentMethod,
	reference, actor string,
	amount decimal.Decimal,
) (*finance.PaymentRecord, error) {
	if customer == nil {
		return nil, sale.ApplyPayment(amount)
	}

	plan, err := finance.AllocateToSale(amount, finance.OpenSale{
		SaleID:    sale.ID,
		Number:    sale.Number,
		SaleDate:  sale.SaleDate,
		CreatedAt: sale.CreatedAt,
		AmountDue: sale.AmountDue,
	})
	if err != nil {
		return nil, err
	}
	number, err := repos.Payments().NextNumber(ctx, sale.SaleDate)
	if err != nil {
		return nil, err
	}
	payment, err := finance.NewPaymentRecord(number, finance.PaymentInput{
		CustomerID: customer.ID,
		Date:       sale.SaleDate,
		Amount:     amount,
		Method:     method,
		Reference:  reference,
		Notes:      "Paid at sale " + sale.Number,
		ReceivedBy: actor,
	}, plan)
	if err != nil {
		return nil, err
	}
	if err := sale.ApplyPayment(amount); err != nil {
		return nil, err
	}
	if err := customer.ApplyPayment(amount); err != nil {
		return nil, err
	}
	return payment, nil
}

// DeleteSale removes a sale (admin only) and exactly reverses its effects:
// source counters, payment allocations and the customer account. Status
// transitions the sale caused are kept.
func (s *SaleService) DeleteSale(ctx context.Context, actor string, id uuid.UUID) error {
	var (
		collector appshared.EventCollector
		sale      *sales.Sale
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		collector.Reset()

		var err error
		sale, err = repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}

		sources := newSourceSet(repos)
		for _, item := range sale.Items {
			if err := sources.give(ctx, item); err != nil {
				return err
			}
		}

		payments, err := repos.Payments().FindByAllocatedSale(ctx, sale.ID)
		if err != nil {
			return err
		}
		refunded := decimal.Zero
		for i := range payments {
			p := &payments[i]
			refunded = refunded.Add(p.DetachSale(sale.ID))
			if p.IsEmpty() {
				if err := repos.Payments().Delete(ctx, p.ID); err != nil {
					return err
				}
				collector.Add(finance.NewPaymentDeletedEvent(p, actor))
				continue
			}
			if err := repos.Payments().Save(ctx, p); err != nil {
				return err
			}
		}

		if sale.CustomerID != nil {
			customer, err := repos.Customers().FindByID(ctx, *sale.CustomerID)
			if err != nil {
				return err
			}
			customer.ReversePurchase(sale.Total)
			if refunded.IsPositive() {
				customer.ReversePayment(refunded)
			}
			if err := repos.Customers().Save(ctx, customer); err != nil {
				return err
			}
		}

		if err := sources.save(ctx, &collector); err != nil {
			return err
		}
		if err := repos.Sales().Delete(ctx, sale.ID); err != nil {
			return err
		}
		collector.Add(sales.NewSaleDeletedEvent(sale, actor))
		return nil
	})
	if err != nil {
		return err
	}

	collector.Publish(ctx, s.eventPublisher)
	logger.FromContext(ctx).Info("sale deleted",
		zap.String("number", sale.Number),
		zap.String("total", sale.Total.String()),
		zap.String("deleted_by", actor),
	)
	return nil
}

// GetByID retrieves a sale
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "sale_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	list, total, err := s.saleRepo.FindAll(ctx, sales.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		CustomerID:    filter.CustomerID,
		VehicleID:     filter.VehicleID,
		PaymentStatus: sales.PaymentStatus(filter.PaymentStatus),
		From:          filter.From,
		To:            filter.To,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, len(list))
	for i := range list {
		responses[i] = ToSaleResponse(&list[i])
	}
	return responses, total, nil
}

// Receipt builds the printable view of a sale
func (s *SaleService) Receipt(ctx context.Context, id uuid.UUID) (*sales.Receipt, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	party := sales.WalkInParty
	if sale.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *sale.CustomerID)
		if err != nil {
			return nil, err
		}
		party = sales.ReceiptParty{Code: customer.Code, Name: customer.Name, Phone: customer.Phone}
	}

	var plates []string
	for _, vehicleID := range sale.VehicleIDs() {
		vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		plates = append(plates, vehicle.PlateNumber)
	}

	return sales.NewReceipt(sale, s.settings.Business, s.settings.Currency, party, plates), nil
}
