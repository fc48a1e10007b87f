package render

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-agent/internal/layout"
	"print-agent/internal/model"
)

func aReceipt() *model.ReceiptData {
	return &model.ReceiptData{
		StoreName:     "MediCare Pharmacy",
		StoreAddress:  "12 Market Street",
		StorePhone:    "+255 700 000 001",
		SaleID:        12345,
		SaleDate:      "Aug 30, 2026 14:25",
		CustomerName:  "John Doe",
		PaymentMethod: model.PaymentCash,
		TotalAmount:   decimal.NewFromInt(45000),
		FooterLine:    "Thank you for your purchase!",
		Items: []model.ReceiptItem{
			{Name: "Paracetamol 500mg", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), Total: decimal.NewFromInt(10000)},
			{Name: "Amoxicillin 250mg", Quantity: 1, UnitPrice: decimal.NewFromInt(35000), Total: decimal.NewFromInt(35000)},
		},
	}
}

func rowTexts(doc *Document) []string {
	var texts []string
	for _, row := range doc.Rows {
		var parts []string
		for _, cell := range row.Cells {
			parts = append(parts, cell.Text)
		}
		texts = append(texts, strings.Join(parts, "|"))
	}
	return texts
}

func TestBuildBlockOrder(t *testing.T) {
	cfg := layout.Default()
	doc := Build(aReceipt(), cfg)

	texts := rowTexts(doc)
	if !strings.Contains(texts[0], "MediCare Pharmacy") {
		t.Errorf("first row should be the store name, got %q", texts[0])
	}

	joined := strings.Join(texts, "\n")
	order := []string{"MediCare Pharmacy", "Receipt #", "Date", "Customer", "Item|Qty|Price|Total", "Paracetamol", "TOTAL", "Payment", "Thank you"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(joined, marker)
		if idx < 0 {
			t.Fatalf("marker %q not found in document", marker)
		}
		if idx < last {
			t.Errorf("marker %q appears out of order", marker)
		}
		last = idx
	}
}

func TestBuildOmitsAbsentOptionalBlocks(t *testing.T) {
	data := aReceipt()
	data.CustomerName = ""
	data.CustomerPhone = ""
	data.Notes = ""
	data.StoreAddress = ""

	doc := Build(data, layout.Default())
	joined := strings.Join(rowTexts(doc), "\n")
	for _, absent := range []string{"Customer", "Phone", "Market Street"} {
		if strings.Contains(joined, absent) {
			t.Errorf("block %q should be omitted for absent field", absent)
		}
	}
}

func TestBuildUsesComputedDivider(t *testing.T) {
	cfg := layout.Default()
	doc := Build(aReceipt(), cfg)

	divider := cfg.Divider()
	found := 0
	for _, row := range doc.Rows {
		if row.NoWrap && len(row.Cells) == 1 && row.Cells[0].Text == divider {
			found++
		}
	}
	// header, info, table header, items, total, payment/footer rules
	if found < 5 {
		t.Errorf("expected at least 5 divider rules, found %d", found)
	}
}

func TestItemRowsUseColumnWidths(t *testing.T) {
	cfg := layout.Default()
	doc := Build(aReceipt(), cfg)
	widths := cfg.ColumnWidths()

	for _, row := range doc.Rows {
		if len(row.Cells) != 4 {
			continue
		}
		if row.Cells[0].Width != widths.Name || row.Cells[3].Width != widths.Total {
			t.Fatalf("table row widths %d/%d do not match layout %d/%d",
				row.Cells[0].Width, row.Cells[3].Width, widths.Name, widths.Total)
		}
		if row.Cells[0].Align != AlignLeft || row.Cells[1].Align != AlignCenter ||
			row.Cells[2].Align != AlignRight || row.Cells[3].Align != AlignRight {
			t.Fatal("table row alignment does not match left/center/right/right")
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	cfg := layout.Default()
	// 1x keeps the test image small
	cfg.Scale = 1

	rasterizer, err := NewRasterizer(cfg)
	if err != nil {
		t.Fatalf("rasterizer: %v", err)
	}

	first, err := rasterizer.Render(Build(aReceipt(), cfg))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := rasterizer.Render(Build(aReceipt(), cfg))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("two renders of identical input differ")
	}
	if first.Bounds().Dx() != int(cfg.ScaledWidth()) {
		t.Errorf("raster width = %d, want %d", first.Bounds().Dx(), int(cfg.ScaledWidth()))
	}
}

func TestCaptureProducesDecodablePNG(t *testing.T) {
	cfg := layout.Default()
	cfg.Scale = 1

	encoded := Capture(aReceipt(), cfg, zap.NewNop())
	if encoded == "" {
		t.Fatal("capture returned empty payload for a valid receipt")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("capture output is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("capture output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != int(cfg.ScaledWidth()) {
		t.Errorf("captured width = %d, want %d", img.Bounds().Dx(), int(cfg.ScaledWidth()))
	}
}

func TestWrapTextKeepsAllWords(t *testing.T) {
	cfg := layout.Default()
	rasterizer, err := NewRasterizer(cfg)
	if err != nil {
		t.Fatalf("rasterizer: %v", err)
	}
	face := rasterizer.face(RoleNormal, false)

	text := "Amoxicillin and Clavulanate Potassium 875mg film coated tablets"
	lines := wrapText(text, 200, face)
	if len(lines) < 2 {
		t.Fatalf("expected long text to wrap, got %d line(s)", len(lines))
	}
	if strings.Join(lines, " ") != text {
		t.Fatalf("wrapping lost words: %q", strings.Join(lines, " "))
	}
}

func TestBuildHTML(t *testing.T) {
	html, err := BuildHTML(aReceipt(), layout.Default())
	if err != nil {
		t.Fatalf("build html: %v", err)
	}

	for _, want := range []string{"MediCare Pharmacy", "Paracetamol 500mg", "45,000", "window.print()", "Cash"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestBuildHTMLOmitsAbsentBlocks(t *testing.T) {
	data := aReceipt()
	data.CustomerName = ""
	data.Notes = ""

	html, err := BuildHTML(data, layout.Default())
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if strings.Contains(html, "Customer") {
		t.Error("html should omit the customer row when absent")
	}
	if strings.Contains(html, `class="notes"`) {
		t.Error("html should omit the notes block when absent")
	}
}
