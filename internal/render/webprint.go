// internal/render/webprint.go
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"print-agent/internal/layout"
	"print-agent/internal/model"
	"print-agent/internal/receipt"
)

// The web print path has no device lifecycle: the agent hands the
// browser a self-contained document replicating the raster layout in
// text, and the browser's print dialog does the rest. Text is safe here,
// there is no glyph-corruption risk outside the thermal text mode.
var webReceiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"amount": func(d decimal.Decimal) string { return receipt.FormatAmount(d) },
	"label":  func(p model.PaymentMethod) string { return p.DisplayLabel() },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt #{{.Data.SaleID}}</title>
<style>
  body { margin: 0; font-family: "Helvetica Neue", Arial, sans-serif; }
  .receipt { width: {{.PaperWidth}}px; padding: {{.Padding}}px; margin: 0 auto; }
  .store-name { font-size: {{.Fonts.StoreName}}px; font-weight: bold; text-align: center; }
  .store-info { font-size: {{.Fonts.StoreInfo}}px; text-align: center; }
  .divider { font-size: {{.Fonts.Small}}px; text-align: center; overflow: hidden; white-space: nowrap; }
  .info-row { font-size: {{.Fonts.Normal}}px; display: flex; justify-content: space-between; }
  table { width: 100%; border-collapse: collapse; font-size: {{.Fonts.Normal}}px; }
  th { font-size: {{.Fonts.SectionTitle}}px; }
  th:nth-child(1), td:nth-child(1) { text-align: left; width: {{.Columns.NamePct}}%; }
  th:nth-child(2), td:nth-child(2) { text-align: center; width: {{.Columns.QuantityPct}}%; }
  th:nth-child(3), td:nth-child(3) { text-align: right; width: {{.Columns.PricePct}}%; }
  th:nth-child(4), td:nth-child(4) { text-align: right; width: {{.Columns.TotalPct}}%; }
  .total-row { font-size: {{.Fonts.Total}}px; font-weight: bold; display: flex; justify-content: space-between; }
  .notes { font-size: {{.Fonts.Small}}px; }
  .footer { font-size: {{.Fonts.StoreInfo}}px; text-align: center; }
  @media print { body { width: {{.PaperWidth}}px; } }
</style>
</head>
<body onload="window.print()">
<div class="receipt">
  <div class="store-name">{{.Data.StoreName}}</div>
  {{- if .Data.StoreAddress}}
  <div class="store-info">{{.Data.StoreAddress}}</div>
  {{- end}}
  {{- if .Data.StorePhone}}
  <div class="store-info">{{.Data.StorePhone}}</div>
  {{- end}}
  <div class="divider">{{.Divider}}</div>
  <div class="info-row"><span>Receipt #</span><span>{{.Data.SaleID}}</span></div>
  <div class="info-row"><span>Date</span><span>{{.Data.SaleDate}}</span></div>
  {{- if .Data.CustomerName}}
  <div class="info-row"><span>Customer</span><span>{{.Data.CustomerName}}</span></div>
  {{- end}}
  {{- if .Data.CustomerPhone}}
  <div class="info-row"><span>Phone</span><span>{{.Data.CustomerPhone}}</span></div>
  {{- end}}
  <div class="divider">{{.Divider}}</div>
  <table>
    <tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr>
    {{- range .Data.Items}}
    <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{amount .UnitPrice}}</td><td>{{amount .Total}}</td></tr>
    {{- end}}
  </table>
  <div class="divider">{{.Divider}}</div>
  <div class="total-row"><span>TOTAL</span><span>{{amount .Data.TotalAmount}}</span></div>
  <div class="divider">{{.Divider}}</div>
  <div class="info-row"><span>Payment</span><span>{{label .Data.PaymentMethod}}</span></div>
  {{- if .Data.Notes}}
  <div class="notes">{{.Data.Notes}}</div>
  {{- end}}
  <div class="divider">{{.Divider}}</div>
  <div class="footer">{{.Data.FooterLine}}</div>
</div>
</body>
</html>
`))

type webColumns struct {
	NamePct     int
	QuantityPct int
	PricePct    int
	TotalPct    int
}

type webReceiptModel struct {
	Data       *model.ReceiptData
	PaperWidth int
	Padding    int
	Fonts      layout.FontSizes
	Columns    webColumns
	Divider    string
}

// BuildHTML generates the self-contained printable document for the web
// path. Same visual hierarchy as the raster renderer, driven by the same
// layout config, at 1x scale.
func BuildHTML(data *model.ReceiptData, cfg layout.Config) (string, error) {
	model := webReceiptModel{
		Data:       data,
		PaperWidth: int(cfg.PaperWidth),
		Padding:    int(cfg.PaddingBase),
		Fonts:      cfg.Fonts,
		Columns: webColumns{
			NamePct:     int(cfg.Columns.Name * 100),
			QuantityPct: int(cfg.Columns.Quantity * 100),
			PricePct:    int(cfg.Columns.Price * 100),
			TotalPct:    int(cfg.Columns.Total * 100),
		},
		Divider: cfg.Divider(),
	}

	var buf bytes.Buffer
	if err := webReceiptTemplate.Execute(&buf, model); err != nil {
		return "", fmt.Errorf("failed to render web receipt: %w", err)
	}
	return buf.String(), nil
}
