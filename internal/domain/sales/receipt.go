package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptParty is the buyer block printed on a receipt
type ReceiptParty struct {
	Code  string `json:"code,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// ReceiptLine is one printed line
type ReceiptLine struct {
	Description string          `json:"description"`
	Source      SourceType      `json:"source"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Receipt is the stable view of a sale handed to the rendering layer
type Receipt struct {
	Number        string          `json:"number"`
	Date          time.Time       `json:"date"`
	Business      string          `json:"business"`
	Currency      string          `json:"currency"`
	Customer      ReceiptParty    `json:"customer"`
	Vehicles      []string        `json:"vehicles,omitempty"`
	SoldBy        string          `json:"sold_by"`
	Lines         []ReceiptLine   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Notes         string          `json:"notes,omitempty"`
}

// WalkInParty is printed for sales without a customer
var WalkInParty = ReceiptParty{Name: "Walk-in customer"}

// NewReceipt builds the receipt of a sale. vehicles are the plate numbers of
// any consignment vehicles the goods came from.
func NewReceipt(s *Sale, business, currency string, customer ReceiptParty, vehicles []string) *Receipt {
	lines := make([]ReceiptLine, len(s.Items))
	for i, item := range s.Items {
		lines[i] = ReceiptLine{
			Description: item.Description,
			Source:      item.SourceType,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return &Receipt{
		Number:        s.Number,
		Date:          s.SaleDate,
		Business:      business,
		Currency:      currency,
		Customer:      customer,
		Vehicles:      vehicles,
		SoldBy:        s.SoldBy,
		Lines:         lines,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		AmountPaid:    s.AmountPaid,
		AmountDue:     s.AmountDue,
		PaymentStatus: s.PaymentStatus,
		Notes:         s.Notes,
	}
}
