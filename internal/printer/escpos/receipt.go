// internal/printer/escpos/receipt.go
package escpos

import (
	"fmt"
	"strings"

	"print-agent/internal/model"
	"print-agent/internal/receipt"
)

// Text-mode receipt printing. This is the fallback when no raster
// capture is available: glyphs outside the printer's code page will
// print corrupted, which the caller has already accepted by choosing
// this path.

// CharsPerLine returns the text columns for a dot width with the
// standard 12-dot font A.
func CharsPerLine(dotsPerLine int) int {
	return dotsPerLine / 12
}

// ReceiptCommands lays out a receipt as plain ESC/POS text commands
func ReceiptCommands(data *model.ReceiptData, dotsPerLine int) [][]byte {
	width := CharsPerLine(dotsPerLine)
	divider := strings.Repeat("-", width)

	commands := [][]byte{
		Commands.Initialize,
		Commands.AlignCenter,
		Commands.BoldOn,
		Commands.SizeDoubleBoth,
		textLine(data.StoreName),
		Commands.SizeNormal,
		Commands.BoldOff,
	}

	if data.StoreAddress != "" {
		commands = append(commands, textLine(data.StoreAddress))
	}
	if data.StorePhone != "" {
		commands = append(commands, textLine(data.StorePhone))
	}

	commands = append(commands, Commands.AlignLeft, textLine(divider))
	commands = append(commands,
		textLine(spread("Receipt #", fmt.Sprintf("%d", data.SaleID), width)),
		textLine(spread("Date", data.SaleDate, width)),
	)
	if data.CustomerName != "" {
		commands = append(commands, textLine(spread("Customer", data.CustomerName, width)))
	}
	if data.CustomerPhone != "" {
		commands = append(commands, textLine(spread("Phone", data.CustomerPhone, width)))
	}
	commands = append(commands, textLine(divider))

	// Item table: name, qty, price, total in fixed character columns
	nameW, qtyW, priceW := tableColumns(width)
	totalW := width - nameW - qtyW - priceW
	header := padRight("Item", nameW) + padCenter("Qty", qtyW) +
		padLeft("Price", priceW) + padLeft("Total", totalW)
	commands = append(commands, Commands.BoldOn, textLine(header), Commands.BoldOff, textLine(divider))

	for _, item := range data.Items {
		row := padRight(truncate(item.Name, nameW-1), nameW) +
			padCenter(fmt.Sprintf("%d", item.Quantity), qtyW) +
			padLeft(receipt.FormatAmount(item.UnitPrice), priceW) +
			padLeft(receipt.FormatAmount(item.Total), totalW)
		commands = append(commands, textLine(row))
	}

	commands = append(commands, textLine(divider))
	commands = append(commands,
		Commands.BoldOn,
		Commands.SizeDoubleBoth,
		textLine(spread("TOTAL", receipt.FormatAmount(data.TotalAmount), width/2)),
		Commands.SizeNormal,
		Commands.BoldOff,
	)
	commands = append(commands, textLine(divider))
	commands = append(commands, textLine(spread("Payment", data.PaymentMethod.DisplayLabel(), width)))

	if data.Notes != "" {
		commands = append(commands, textLine(data.Notes))
	}

	commands = append(commands,
		textLine(divider),
		Commands.AlignCenter,
		textLine(data.FooterLine),
		Commands.AlignLeft,
		FeedLines(4),
		Commands.CutFull,
	)

	return commands
}

func textLine(s string) []byte {
	return append([]byte(s), LF)
}

// tableColumns splits a character width into name/qty/price columns,
// mirroring the raster layout's default ratios.
func tableColumns(width int) (name, qty, price int) {
	name = width * 46 / 100
	qty = width * 14 / 100
	price = width * 18 / 100
	return name, qty, price
}

// spread places label left and value right with at least one space gap
func spread(label, value string, width int) string {
	gap := width - len([]rune(label)) - len([]rune(value))
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func padRight(s string, width int) string {
	if gap := width - len([]rune(s)); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - len([]rune(s)); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

func padCenter(s string, width int) string {
	gap := width - len([]rune(s))
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}
