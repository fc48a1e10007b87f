// internal/receipt/formatter.go
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"print-agent/internal/config"
	"print-agent/internal/model"
)

// displayDateFormat is the fixed receipt date format: abbreviated month,
// day, year, hour:minute.
const displayDateFormat = "Jan 2, 2006 15:04"

// saleDateLayouts are the timestamp shapes the sales backend is known to
// emit, tried in order.
var saleDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatReceiptData transforms a raw sale record into the normalized
// receipt model. It is pure: no I/O, deterministic for identical inputs.
// Nullable backend fields become empty strings, never placeholder text;
// renderers key off the empty string to omit the block entirely.
func FormatReceiptData(sale *model.Sale, store config.StoreConfig) *model.ReceiptData {
	data := &model.ReceiptData{
		StoreName:     store.Name,
		StoreAddress:  store.Address,
		StorePhone:    store.Phone,
		SaleID:        sale.ID.Int(),
		SaleDate:      formatSaleDate(sale.SaleDate),
		CustomerName:  deref(sale.CustomerName),
		CustomerPhone: deref(sale.CustomerPhone),
		TotalAmount:   sale.TotalAmount.Decimal(),
		PaymentMethod: model.PaymentMethod(sale.PaymentMethod),
		Notes:         deref(sale.Notes),
		FooterLine:    store.FooterLine,
	}
	if data.FooterLine == "" {
		data.FooterLine = "Thank you for your purchase!"
	}

	data.Items = make([]model.ReceiptItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		data.Items = append(data.Items, model.ReceiptItem{
			Name:      item.ItemName,
			Quantity:  item.Quantity.Int(),
			UnitPrice: item.UnitPrice.Decimal(),
			Total:     item.TotalPrice.Decimal(),
		})
	}

	return data
}

// ValidateReceiptData is the boundary contract for anything entering the
// render/print pipeline. A nil error means the receipt is printable;
// failing validation must short-circuit before capture or print.
func ValidateReceiptData(data *model.ReceiptData) error {
	if data == nil {
		return fmt.Errorf("receipt data is nil")
	}
	if strings.TrimSpace(data.StoreName) == "" {
		return fmt.Errorf("receipt is missing a store name")
	}
	if data.SaleID <= 0 {
		return fmt.Errorf("receipt has invalid sale id %d", data.SaleID)
	}
	if strings.TrimSpace(data.SaleDate) == "" {
		return fmt.Errorf("receipt is missing a sale date")
	}
	if len(data.Items) == 0 {
		return fmt.Errorf("receipt has no items")
	}
	for i, item := range data.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("receipt item %d has no name", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("receipt item %q has invalid quantity %d", item.Name, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("receipt item %q has negative unit price", item.Name)
		}
	}
	if !data.TotalAmount.IsPositive() {
		return fmt.Errorf("receipt total must be positive, got %s", data.TotalAmount)
	}
	return nil
}

// FormatAmount renders a monetary amount with thousands separators, e.g.
// 45000 -> "45,000" and 1250.5 -> "1,250.50". Whole amounts print without
// a fractional part, matching printed pharmacy receipts.
func FormatAmount(amount decimal.Decimal) string {
	var digits string
	if amount.IsInteger() {
		digits = amount.StringFixed(0)
	} else {
		digits = amount.StringFixed(2)
	}

	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	whole, frac, hasFrac := strings.Cut(digits, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// formatSaleDate formats a backend timestamp for display. An unparsable
// value is kept verbatim: a wrong-looking date on paper beats a failed
// print.
func formatSaleDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, layout := range saleDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(displayDateFormat)
		}
	}
	return trimmed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
