// internal/model/receipt.go
package model

import (
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentMobile       PaymentMethod = "mobile"
	PaymentMobileWallet PaymentMethod = "mobile_wallet"
	PaymentCard         PaymentMethod = "card"
	PaymentCredit       PaymentMethod = "credit"
)

// paymentLabels maps internal payment codes to receipt display text
var paymentLabels = map[PaymentMethod]string{
	PaymentCash:         "Cash",
	PaymentMobile:       "Mobile Money",
	PaymentMobileWallet: "Mobile Wallet",
	PaymentCard:         "Card",
	PaymentCredit:       "Credit",
}

// DisplayLabel returns the human-readable label for a payment method.
// Unknown codes pass through unchanged so a new backend value still prints.
func (p PaymentMethod) DisplayLabel() string {
	if label, ok := paymentLabels[p]; ok {
		return label
	}
	return string(p)
}

// ReceiptItem is a single line of the itemized receipt table
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// ReceiptData is the normalized receipt model. It is built once by the
// formatter and treated as immutable by the render/print pipeline.
// Optional fields use the empty string for "absent"; renderers must omit
// their blocks entirely rather than print empty rows.
type ReceiptData struct {
	StoreName     string          `json:"store_name"`
	StoreAddress  string          `json:"store_address,omitempty"`
	StorePhone    string          `json:"store_phone,omitempty"`
	SaleID        int             `json:"sale_id"`
	SaleDate      string          `json:"sale_date"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Items         []ReceiptItem   `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	FooterLine    string          `json:"footer_line,omitempty"`
}

// HasCustomer reports whether any customer identity row should be rendered
func (r *ReceiptData) HasCustomer() bool {
	return r.CustomerName != "" || r.CustomerPhone != ""
}
