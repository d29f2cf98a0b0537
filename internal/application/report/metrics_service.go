package report

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/report"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// portfolioPageSize is the batch size used when walking all shipments
const portfolioPageSize = 100

// WorkbookWriter renders a portfolio as a spreadsheet
type WorkbookWriter interface {
	WritePortfolio(w io.Writer, portfolio *PortfolioResponse) error
}

// MetricsService computes shipment metrics on read. Nothing it returns is
// stored, so a new expense or sale shows up on the next call.
type MetricsService struct {
	shipmentRepo procurement.ShipmentRepository
	workbook     WorkbookWriter
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(shipmentRepo procurement.ShipmentRepository) *MetricsService {
	return &MetricsService{shipmentRepo: shipmentRepo}
}

// SetWorkbookWriter enables ExportPortfolio
func (s *MetricsService) SetWorkbookWriter(workbook WorkbookWriter) {
	s.workbook = workbook
}

// ShipmentMetrics returns the derived figures of one shipment
func (s *MetricsService) ShipmentMetrics(ctx context.Context, id uuid.UUID) (*ShipmentMetricsResponse, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToShipmentMetricsResponse(shipment)
	return &response, nil
}

// Portfolio computes metrics for every matching shipment, summarized
// overall and per category.
func (s *MetricsService) Portfolio(ctx context.Context, filter PortfolioFilter) (*PortfolioResponse, error) {
	shipments, err := s.loadAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &PortfolioResponse{
		Shipments:  make([]ShipmentMetricsResponse, 0, len(shipments)),
		ByCategory: make([]CategorySummary, 0, len(procurement.AllCategories)),
	}
	all := make([]report.Metrics, 0, len(shipments))
	byCategory := make(map[string][]report.Metrics)
	for i := range shipments {
		m := ToShipmentMetricsResponse(&shipments[i])
		response.Shipments = append(response.Shipments, m)
		all = append(all, m.Metrics)
		byCategory[m.Category] = append(byCategory[m.Category], m.Metrics)
	}

	response.Summary = report.Summarize(all)
	for _, c := range procurement.AllCategories {
		items, ok := byCategory[string(c)]
		if !ok {
			continue
		}
		response.ByCategory = append(response.ByCategory, CategorySummary{
			Category: string(c),
			Summary:  report.Summarize(items),
		})
	}
	return response, nil
}

// ExportPortfolio writes the portfolio as an XLSX workbook
func (s *MetricsService) ExportPortfolio(ctx context.Context, filter PortfolioFilter, w io.Writer) error {
	if s.workbook == nil {
		return shared.NewDomainError("EXPORT_DISABLED", "Spreadsheet export is not configured")
	}
	portfolio, err := s.Portfolio(ctx, filter)
	if err != nil {
		return err
	}
	if err := s.workbook.WritePortfolio(w, portfolio); err != nil {
		logger.FromContext(ctx).Error("failed to write portfolio workbook", zap.Error(err))
		return err
	}
	return nil
}

func (s *MetricsService) loadAll(ctx context.Context, filter PortfolioFilter) ([]procurement.Shipment, error) {
	var result []procurement.Shipment
	for page := 1; ; page++ {
		batch, total, err := s.shipmentRepo.FindAll(ctx, procurement.ShipmentFilter{
			Filter: shared.Filter{
				Page:     page,
				PageSize: portfolioPageSize,
				OrderBy:  "ordered_at",
				OrderDir: "asc",
			},
			Category: procurement.Category(filter.Category),
			Status:   procurement.ShipmentStatus(filter.Status),
			Origin:   strings.ToUpper(filter.Origin),
		})
		if err != nil {
			return nil, err
		}
		result = append(result, batch...)
		if len(batch) < portfolioPageSize || int64(len(result)) >= total {
			return result, nil
		}
	}
}
