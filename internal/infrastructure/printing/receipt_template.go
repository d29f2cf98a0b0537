package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const receiptHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Number}}</title>
<style>
  body { font-family: "DejaVu Sans Mono", monospace; font-size: 11px; margin: 0; }
  h1 { font-size: 14px; text-align: center; margin: 0 0 4px; }
  .center { text-align: center; }
  .right { text-align: right; }
  table { width: 100%; border-collapse: collapse; }
  td, th { padding: 1px 0; vertical-align: top; }
  .totals td { border-top: 1px dashed #000; }
  .muted { color: #444; }
</style>
</head>
<body>
<h1>{{.Business}}</h1>
<div class="center">{{.Number}}<br>{{date .Date}}</div>
<hr>
<div>Customer: {{.Customer.Name}}{{with .Customer.Code}} ({{.}}){{end}}</div>
{{with .Customer.Phone}}<div>Phone: {{.}}</div>{{end}}
{{if .Vehicles}}<div>Vehicle: {{join .Vehicles}}</div>{{end}}
<div class="muted">Served by: {{.SoldBy}}</div>
<hr>
<table>
  <tr><th align="left">Item</th><th class="right">Qty</th><th class="right">Price</th><th class="right">Total</th></tr>
  {{range .Lines}}
  <tr>
    <td>{{.Description}}</td>
    <td class="right">{{qty .Quantity}}</td>
    <td class="right">{{money .UnitPrice}}</td>
    <td class="right">{{money .LineTotal}}</td>
  </tr>
  {{end}}
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="right">{{money .Subtotal}}</td></tr>
  {{if .Discount.IsPositive}}<tr><td>Discount</td><td class="right">-{{money .Discount}}</td></tr>{{end}}
  <tr><td><b>Total {{.Currency}}</b></td><td class="right"><b>{{money .Total}}</b></td></tr>
  <tr><td>Paid</td><td class="right">{{money .AmountPaid}}</td></tr>
  <tr><td>Balance due</td><td class="right">{{money .AmountDue}}</td></tr>
</table>
<div class="center">{{status .PaymentStatus}}</div>
{{with .Notes}}<p>{{.}}</p>{{end}}
<p class="center">Thank you for your business</p>
</body>
</html>`

// ReceiptTemplate renders a sale receipt as HTML. Safe for concurrent use.
type ReceiptTemplate struct {
	tmpl *template.Template
}

// groupDigits prints an integer with thousands separators. Printers and
// casers keep state, so a new one is made per call.
func groupDigits(v int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", v)
}

// NewReceiptTemplate parses the built-in receipt layout. Amounts are
// printed with thousands separators and without minor units.
func NewReceiptTemplate() *ReceiptTemplate {
	funcs := template.FuncMap{
		"money": func(v decimal.Decimal) string {
			return groupDigits(v.Round(0).IntPart())
		},
		"qty": func(v decimal.Decimal) string {
			if v.IsInteger() {
				return groupDigits(v.IntPart())
			}
			return v.StringFixed(3)
		},
		"date": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"join": func(values []string) string {
			var buf bytes.Buffer
			for i, v := range values {
				if i > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(v)
			}
			return buf.String()
		},
		"status": func(s sales.PaymentStatus) string {
			return cases.Title(language.English).String(string(s))
		},
	}
	return &ReceiptTemplate{
		tmpl: template.Must(template.New("receipt").Funcs(funcs).Parse(receiptHTML)),
	}
}

// Render produces the receipt document
func (t *ReceiptTemplate) Render(receipt *sales.Receipt) (string, error) {
	if receipt == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "receipt is nil", nil)
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, receipt); err != nil {
		return "", fmt.Errorf("execute receipt template: %w", err)
	}
	return buf.String(), nil
}
