// internal/render/document.go
package render

import (
	"fmt"

	"print-agent/internal/layout"
	"print-agent/internal/model"
	"print-agent/internal/receipt"
)

// Align controls horizontal text placement within a cell
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// FontRole names the typography role a row is drawn with. Sizes and
// line heights for each role come from the active layout config.
type FontRole string

const (
	RoleStoreName    FontRole = "store_name"
	RoleStoreInfo    FontRole = "store_info"
	RoleSectionTitle FontRole = "section_title"
	RoleNormal       FontRole = "normal"
	RoleSmall        FontRole = "small"
	RoleTotal        FontRole = "total"
)

// Cell is one horizontally bounded run of text within a row
type Cell struct {
	Text  string
	Width int
	Align Align
}

// Row is one visual line of the receipt. NoWrap rows are drawn on a
// single line regardless of measured width; divider rules use this so
// their computed width is never re-broken by the wrapper.
type Row struct {
	Role      FontRole
	Bold      bool
	NoWrap    bool
	MarginTop float64
	Cells     []Cell
}

// Document is the deterministic visual tree for one receipt: the full
// raster width, horizontal padding and the ordered rows between them.
type Document struct {
	Width   int
	Padding int
	Rows    []Row
}

// Build lays out a receipt into the fixed block order: store header,
// divider, sale info, divider, item table header, divider, item rows,
// divider, total, divider, payment method, optional notes, closing
// divider and footer line. Blocks for absent optional fields are omitted
// entirely. Pure with respect to (data, cfg).
func Build(data *model.ReceiptData, cfg layout.Config) *Document {
	content := int(cfg.ContentWidth())
	columns := cfg.ColumnWidths()
	divider := cfg.Divider()
	scale := cfg.Scale

	doc := &Document{
		Width:   int(cfg.ScaledWidth()),
		Padding: int(cfg.PaddingBase * scale),
	}

	full := func(role FontRole, text string, align Align, bold bool, margin float64) {
		doc.Rows = append(doc.Rows, Row{
			Role:      role,
			Bold:      bold,
			MarginTop: margin * scale,
			Cells:     []Cell{{Text: text, Width: content, Align: align}},
		})
	}
	rule := func(margin float64) {
		doc.Rows = append(doc.Rows, Row{
			Role:      RoleSmall,
			NoWrap:    true,
			MarginTop: margin * scale,
			Cells:     []Cell{{Text: divider, Width: content, Align: AlignCenter}},
		})
	}
	infoRow := func(label, value string) {
		doc.Rows = append(doc.Rows, Row{
			Role:      RoleNormal,
			MarginTop: cfg.Margins.Row * scale,
			Cells: []Cell{
				{Text: label, Width: content / 2, Align: AlignLeft},
				{Text: value, Width: content - content/2, Align: AlignRight},
			},
		})
	}
	tableRow := func(role FontRole, bold bool, name, qty, price, total string) {
		doc.Rows = append(doc.Rows, Row{
			Role:      role,
			Bold:      bold,
			MarginTop: cfg.Margins.Row * scale,
			Cells: []Cell{
				{Text: name, Width: columns.Name, Align: AlignLeft},
				{Text: qty, Width: columns.Quantity, Align: AlignCenter},
				{Text: price, Width: columns.Price, Align: AlignRight},
				{Text: total, Width: columns.Total, Align: AlignRight},
			},
		})
	}

	// Store header
	full(RoleStoreName, data.StoreName, AlignCenter, true, cfg.Margins.Header)
	if data.StoreAddress != "" {
		full(RoleStoreInfo, data.StoreAddress, AlignCenter, false, cfg.Margins.Row)
	}
	if data.StorePhone != "" {
		full(RoleStoreInfo, data.StorePhone, AlignCenter, false, cfg.Margins.Row)
	}
	rule(cfg.Margins.Section)

	// Sale info
	infoRow("Receipt #", fmt.Sprintf("%d", data.SaleID))
	infoRow("Date", data.SaleDate)
	if data.CustomerName != "" {
		infoRow("Customer", data.CustomerName)
	}
	if data.CustomerPhone != "" {
		infoRow("Phone", data.CustomerPhone)
	}
	rule(cfg.Margins.Section)

	// Item table
	tableRow(RoleSectionTitle, true, "Item", "Qty", "Price", "Total")
	rule(cfg.Margins.Row)
	for _, item := range data.Items {
		tableRow(RoleNormal, false,
			item.Name,
			fmt.Sprintf("%d", item.Quantity),
			receipt.FormatAmount(item.UnitPrice),
			receipt.FormatAmount(item.Total),
		)
	}
	rule(cfg.Margins.Section)

	// Total
	doc.Rows = append(doc.Rows, Row{
		Role:      RoleTotal,
		Bold:      true,
		MarginTop: cfg.Margins.Section * scale,
		Cells: []Cell{
			{Text: "TOTAL", Width: content / 2, Align: AlignLeft},
			{Text: receipt.FormatAmount(data.TotalAmount), Width: content - content/2, Align: AlignRight},
		},
	})
	rule(cfg.Margins.Section)

	// Payment method
	infoRow("Payment", data.PaymentMethod.DisplayLabel())

	// Notes
	if data.Notes != "" {
		full(RoleSmall, data.Notes, AlignLeft, false, cfg.Margins.Section)
	}

	// Footer
	rule(cfg.Margins.Footer)
	full(RoleStoreInfo, data.FooterLine, AlignCenter, false, cfg.Margins.Row)

	return doc
}
