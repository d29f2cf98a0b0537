// Package export renders report data into downloadable files.
package export

import (
	"fmt"
	"io"

	"github.com/sahelbuild/backend/internal/application/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	summarySheet   = "Summary"
	shipmentsSheet = "Shipments"
)

var shipmentHeaders = []string{
	"Code", "Category", "Status", "Unit", "Total qty", "Sold", "Remaining",
	"Total cost", "Cost/unit", "Revenue", "Net profit", "Margin %",
	"Avg price", "Realized profit", "Potential profit",
}

// PortfolioWorkbook writes portfolio metrics as an XLSX workbook with a
// summary sheet and one row per shipment.
type PortfolioWorkbook struct {
	currency string
}

// NewPortfolioWorkbook creates a writer labelling amounts with currency
func NewPortfolioWorkbook(currency string) *PortfolioWorkbook {
	return &PortfolioWorkbook{currency: currency}
}

// sheetFormat holds the per-workbook text formatters, which are not safe
// for concurrent use
type sheetFormat struct {
	currency string
	printer  *message.Printer
	title    cases.Caser
}

func (p *PortfolioWorkbook) format() *sheetFormat {
	return &sheetFormat{
		currency: p.currency,
		printer:  message.NewPrinter(language.English),
		title:    cases.Title(language.English),
	}
}

// WritePortfolio implements report.WorkbookWriter
func (p *PortfolioWorkbook) WritePortfolio(w io.Writer, portfolio *report.PortfolioResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(shipmentsSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	format := p.format()
	if err := format.writeSummary(f, portfolio, bold); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := format.writeShipments(f, portfolio.Shipments, bold); err != nil {
		return fmt.Errorf("shipments sheet: %w", err)
	}
	return f.Write(w)
}

func (p *sheetFormat) writeSummary(f *excelize.File, portfolio *report.PortfolioResponse, bold int) error {
	s := portfolio.Summary
	rows := [][]interface{}{
		{"Portfolio", p.printer.Sprintf("%d shipments", s.Shipments)},
		{"Total cost", p.amount(s.TotalCost)},
		{"Revenue", p.amount(s.Revenue)},
		{"Net profit", p.amount(s.NetProfit)},
		{"Margin %", s.MarginPct.Round(2).InexactFloat64()},
		{"Potential profit", p.amount(s.PotentialProfit)},
		{},
		{"Category", "Shipments", "Total cost", "Revenue", "Net profit", "Margin %", "Potential profit"},
	}
	for _, c := range portfolio.ByCategory {
		rows = append(rows, []interface{}{
			p.title.String(c.Category),
			c.Shipments,
			c.TotalCost.InexactFloat64(),
			c.Revenue.InexactFloat64(),
			c.NetProfit.InexactFloat64(),
			c.MarginPct.Round(2).InexactFloat64(),
			c.PotentialProfit.InexactFloat64(),
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A6", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A8", "G8", bold); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "G", 18)
}

func (p *sheetFormat) writeShipments(f *excelize.File, shipments []report.ShipmentMetricsResponse, bold int) error {
	if err := f.SetSheetRow(shipmentsSheet, "A1", &shipmentHeaders); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(shipmentHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(shipmentsSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, m := range shipments {
		row := []interface{}{
			m.Code,
			p.title.String(m.Category),
			m.Status,
			m.QuantityUnit,
			m.TotalQuantity.InexactFloat64(),
			m.QuantitySold.InexactFloat64(),
			m.Remaining.InexactFloat64(),
			m.TotalCost.InexactFloat64(),
			m.CostPerUnit.Round(2).InexactFloat64(),
			m.Revenue.InexactFloat64(),
			m.NetProfit.InexactFloat64(),
			m.MarginPct.Round(2).InexactFloat64(),
			m.AverageSellingPrice.Round(2).InexactFloat64(),
			m.RealizedProfit.Round(2).InexactFloat64(),
			m.PotentialProfit.Round(2).InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(shipmentsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(shipmentsSheet, "A", "O", 16)
}

// amount renders a grouped amount with the currency, e.g. "1,250,000 NGN"
func (p *sheetFormat) amount(v decimal.Decimal) string {
	return p.printer.Sprintf("%d %s", v.Round(0).IntPart(), p.currency)
}
