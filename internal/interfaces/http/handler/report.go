package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/sahelbuild/backend/internal/application/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves shipment metrics. Every figure is computed on read.
type ReportHandler struct {
	BaseHandler
	metricsService *reportapp.MetricsService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(metricsService *reportapp.MetricsService) *ReportHandler {
	return &ReportHandler{
		metricsService: metricsService,
	}
}

// ShipmentMetrics handles GET /reports/shipments/:id/metrics
func (h *ReportHandler) ShipmentMetrics(c *gin.Context) {
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}

	metrics, err := h.metricsService.ShipmentMetrics(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, metrics)
}

// Portfolio handles GET /reports/shipments/metrics
func (h *ReportHandler) Portfolio(c *gin.Context) {
	var filter reportapp.PortfolioFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	portfolio, err := h.metricsService.Portfolio(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, portfolio)
}

// ExportPortfolio handles GET /reports/shipments/metrics.xlsx. The workbook
// is built in memory so a failure can still be reported as JSON.
func (h *ReportHandler) ExportPortfolio(c *gin.Context) {
	var filter reportapp.PortfolioFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	var buf bytes.Buffer
	if err := h.metricsService.ExportPortfolio(c.Request.Context(), filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := "shipment-metrics-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
