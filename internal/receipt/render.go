package receipt

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"counterpos/m/domain"
	"counterpos/m/internal/config"
)

const dateLayout = "02/01/2006 03:04 pm"

var page = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return "₹" + d.StringFixed(2) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.Receipt.DisplayID}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; color: #222; }
.header { display: flex; justify-content: space-between; border-bottom: 2px solid #222; padding-bottom: 12px; }
.store { font-size: 20px; font-weight: bold; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { padding: 6px; border-bottom: 1px solid #ddd; text-align: left; }
td.num, th.num { text-align: right; }
.totals td { border: none; }
.grand td { font-weight: bold; font-size: 16px; border-top: 2px solid #222; }
.terms { margin-top: 24px; font-size: 12px; }
@media print { body { margin: 0; } }
</style>
</head>
<body onload="window.print()">
<div class="header">
  <div>
    <div class="store">{{.Profile.Name}}</div>
    {{with .Profile.Tagline}}<div>{{.}}</div>{{end}}
    {{with .Profile.Address}}<div>{{.}}</div>{{end}}
    {{with .Profile.Phone}}<div>Phone: {{.}}</div>{{end}}
  </div>
  <div><h2>RECEIPT</h2></div>
</div>
<table class="meta">
  <tr><td><strong>Bill To</strong><br>{{.Receipt.BillTo}}</td>
      <td class="num"><strong>Receipt #</strong> {{.Receipt.DisplayID}}<br>
      <strong>Receipt Date</strong> {{.Date}}<br>
      <strong>Payment</strong> {{.Receipt.PaymentMethod}}</td></tr>
</table>
<table>
  <thead><tr><th>Qty</th><th>Description</th><th class="num">Unit Price</th><th class="num">Amount</th></tr></thead>
  <tbody>
  {{range .Receipt.Lines}}<tr><td>{{.Quantity}}</td><td>{{.Name}}</td><td class="num">{{money .UnitPrice}}</td><td class="num">{{money .Amount}}</td></tr>
  {{end}}</tbody>
</table>
<table class="totals">
  <tr><td class="num">Subtotal</td><td class="num">{{money .Receipt.SubTotal}}</td></tr>
  {{if .Receipt.Discount.IsPositive}}<tr><td class="num">Discount</td><td class="num">-{{money .Receipt.Discount}}</td></tr>{{end}}
  <tr class="grand"><td class="num">TOTAL</td><td class="num">{{money .Receipt.Total}}</td></tr>
</table>
{{if .Profile.Terms}}<div class="terms"><strong>Terms &amp; Conditions</strong>
<ol>{{range .Profile.Terms}}<li>{{.}}</li>{{end}}</ol></div>{{end}}
</body>
</html>
`))

// Renderer writes printable HTML receipts for one store.
type Renderer struct {
	profile config.StoreProfile
	loc     *time.Location
}

func NewRenderer(profile config.StoreProfile, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{profile: profile, loc: loc}
}

func (r *Renderer) Render(w io.Writer, rec domain.Receipt) error {
	data := struct {
		Profile config.StoreProfile
		Receipt domain.Receipt
		Date    string
	}{
		Profile: r.profile,
		Receipt: rec,
		Date:    rec.IssuedAt.In(r.loc).Format(dateLayout),
	}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render receipt %s: %w", rec.SaleID, err)
	}
	return nil
}
