package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appshared "github.com/sahelbuild/backend/internal/application/shared"
	"github.com/sahelbuild/backend/internal/domain/finance"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"github.com/sahelbuild/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService applies customer payments to open sales and reverses them
type PaymentService struct {
	txScope        appshared.TransactionScope
	paymentRepo    finance.PaymentRepository
	eventPublisher shared.EventPublisher
	metrics        appshared.LedgerRecorder
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope appshared.TransactionScope, paymentRepo finance.PaymentRepository) *PaymentService {
	return &PaymentService{
		txScope:     txScope,
		paymentRepo: paymentRepo,
		metrics:     appshared.NoopRecorder{},
	}
}

// SetEventPublisher sets the event publisher
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *PaymentService) SetMetrics(metrics appshared.LedgerRecorder) {
	s.metrics = appshared.RecorderOrNoop(metrics)
}

func openSale(sale *sales.Sale) finance.OpenSale {
	return finance.OpenSale{
		SaleID:    sale.ID,
		Number:    sale.Number,
		SaleDate:  sale.SaleDate,
		CreatedAt: sale.CreatedAt,
		AmountDue: sale.AmountDue,
	}
}

// ApplyPayment records one payment for a customer. With a sale ID the whole
// amount goes to that sale; otherwise it is spread across the customer's
// open sales, oldest first. The sales, the payment record and the customer
// account are written in one transaction.
func (s *PaymentService) ApplyPayment(ctx context.Context, actor string, req ApplyPaymentRequest) (*ApplyPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "apply")
	defer span.End()

	allocation := appshared.AllocationOldestFirst
	if req.SaleID != nil {
		allocation = appshared.AllocationTargeted
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrAllocation, allocation,
	)

	date := time.Now()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	method := finance.PaymentMethodCash
	if req.Method != "" {
		method = finance.PaymentMethod(req.Method)
	}

	var (
		result *ApplyPaymentResult
		opErr  error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("apply_payment", map[string]string{"allocation": allocation}), func(c context.Context) {
		result, opErr = s.applyPayment(c, actor, req, date, method)
	})
	if opErr != nil {
		telemetry.RecordError(span, opErr)
		appshared.RecordRejection(ctx, s.metrics, opErr)
		return nil, opErr
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, result.Payment.ID.String())
	telemetry.SetOK(span)
	s.metrics.RecordPayment(ctx, string(method), allocation, req.Amount)
	logger.FromContext(ctx).Info("payment applied",
		zap.String("number", result.Payment.Number),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("allocation", allocation),
		zap.Int("sales", len(result.Sales)),
	)
	return result, nil
}

func (s *PaymentService) applyPayment(ctx context.Context, actor string, req ApplyPaymentRequest, date time.Time, method finance.PaymentMethod) (*ApplyPaymentResult, error) {
	var (
		collector appshared.EventCollector
		result    *ApplyPaymentResult
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		collector.Reset()

		customer, err := repos.Customers().FindByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}

		loaded := make(map[uuid.UUID]*sales.Sale)
		var plan *finance.AllocationPlan
		if req.SaleID != nil {
			sale, err := repos.Sales().FindByID(ctx, *req.SaleID)
			if err != nil {
				return err
			}
			if !sale.BelongsTo(customer.ID) {
				return shared.NewDomainError("SALE_CUSTOMER_MISMATCH",
					fmt.Sprintf("Sale %s does not belong to customer %s", sale.Number, customer.Code))
			}
			loaded[sale.ID] = sale
			plan, err = finance.AllocateToSale(req.Amount, openSale(sale))
			if err != nil {
				return err
			}
		} else {
			open, err := repos.Sales().FindOpenByCustomer(ctx, customer.ID)
			if err != nil {
				return err
			}
			candidates := make([]finance.OpenSale, len(open))
			for i := range open {
				loaded[open[i].ID] = &open[i]
				candidates[i] = openSale(&open[i])
			}
			plan, err = finance.AllocateOldestFirst(req.Amount, candidates)
			if err != nil {
				return err
			}
		}

		number, err := repos.Payments().NextNumber(ctx, date)
		if err != nil {
			return err
		}
		payment, err := finance.NewPaymentRecord(number, finance.PaymentInput{
			CustomerID: customer.ID,
			Date:       date,
			Amount:     req.Amount,
			Method:     method,
			Reference:  req.Reference,
			Notes:      req.Notes,
			ReceivedBy: actor,
		}, plan)
		if err != nil {
			return err
		}

		settled := make([]SettledSale, 0, len(plan.Allocations))
		for _, a := range plan.Allocations {
			sale := loaded[a.SaleID]
			if err := sale.ApplyPayment(a.Amount); err != nil {
				return err
			}
			if err := repos.Sales().Save(ctx, sale); err != nil {
				return err
			}
			collector.Collect(sale)
			settled = append(settled, SettledSale{
				SaleID:     a.SaleID,
				SaleNumber: a.SaleNumber,
				Amount:     a.Amount,
				Settled:    a.Settles,
			})
		}

		if err := customer.ApplyPayment(req.Amount); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		collector.Collect(payment, customer)

		result = &ApplyPaymentResult{
			Payment:         ToPaymentResponse(payment),
			Sales:           settled,
			CustomerBalance: customer.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	collector.Publish(ctx, s.eventPublisher)
	return result, nil
}

// DeletePayment removes a payment (admin only). Every allocation is taken
// back off its sale and the customer account is restored.
func (s *PaymentService) DeletePayment(ctx context.Context, actor string, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, id.String())

	var (
		collector appshared.EventCollector
		payment   *finance.PaymentRecord
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		collector.Reset()

		var err error
		payment, err = repos.Payments().FindByID(ctx, id)
		if err != nil {
			return err
		}

		for _, a := range payment.Allocations {
			sale, err := repos.Sales().FindByID(ctx, a.SaleID)
			if err != nil {
				return fmt.Errorf("load allocated sale %s: %w", a.SaleID, err)
			}
			if err := sale.ReversePayment(a.Amount); err != nil {
				return err
			}
			if err := repos.Sales().Save(ctx, sale); err != nil {
				return err
			}
			collector.Collect(sale)
		}

		customer, err := repos.Customers().FindByID(ctx, payment.CustomerID)
		if err != nil {
			return err
		}
		customer.ReversePayment(payment.Amount)
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		collector.Collect(customer)

		if err := repos.Payments().Delete(ctx, payment.ID); err != nil {
			return err
		}
		collector.Add(finance.NewPaymentDeletedEvent(payment, actor))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	collector.Publish(ctx, s.eventPublisher)
	logger.FromContext(ctx).Info("payment deleted",
		zap.String("number", payment.Number),
		zap.String("amount", payment.Amount.String()),
		zap.String("deleted_by", actor),
	)
	return nil
}

// GetByID retrieves a payment record
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// List retrieves payment records with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	list, total, err := s.paymentRepo.FindAll(ctx, finance.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		CustomerID: filter.CustomerID,
		SaleID:     filter.SaleID,
		Method:     finance.PaymentMethod(filter.Method),
		From:       filter.From,
		To:         filter.To,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, len(list))
	for i := range list {
		responses[i] = ToPaymentResponse(&list[i])
	}
	return responses, total, nil
}
