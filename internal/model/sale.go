// internal/model/sale.go
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// FlexInt is an integer that unmarshals from either a JSON number or a
// numeric string. The sales backend serializes some numeric columns as
// strings depending on the driver, so the agent accepts both.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", s, err)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// FlexDecimal is a decimal amount that unmarshals from a JSON number or a
// numeric string.
type FlexDecimal decimal.Decimal

func (f *FlexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexDecimal(decimal.Zero)
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = FlexDecimal(decimal.Zero)
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		*f = FlexDecimal(d)
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*f = FlexDecimal(d)
	return nil
}

func (f FlexDecimal) Decimal() decimal.Decimal { return decimal.Decimal(f) }

// SaleItem mirrors one line of the backend sale record
type SaleItem struct {
	ItemName   string      `json:"item_name"`
	Quantity   FlexInt     `json:"quantity"`
	UnitPrice  FlexDecimal `json:"unit_price"`
	TotalPrice FlexDecimal `json:"total_price"`
}

// Sale mirrors the backend sale record consumed by the print pipeline.
// Nullable columns arrive as JSON null and are kept as pointers so the
// formatter can distinguish "absent" from "empty".
type Sale struct {
	ID            FlexInt     `json:"id"`
	TotalAmount   FlexDecimal `json:"total_amount"`
	PaymentMethod string      `json:"payment_method"`
	IsPaid        bool        `json:"is_paid"`
	PaidDate      *string     `json:"paid_date"`
	CustomerName  *string     `json:"customer_name"`
	CustomerPhone *string     `json:"customer_phone"`
	Notes         *string     `json:"notes"`
	SaleDate      string      `json:"sale_date"`
	Items         []SaleItem  `json:"items"`
}
