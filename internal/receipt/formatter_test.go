package receipt

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"print-agent/internal/config"
	"print-agent/internal/model"
)

var testStore = config.StoreConfig{
	Name:    "MediCare Pharmacy",
	Address: "12 Market Street",
	Phone:   "+255 700 000 001",
}

func str(s string) *string { return &s }

func aValidSale() *model.Sale {
	return &model.Sale{
		ID:            12345,
		TotalAmount:   model.FlexDecimal(decimal.NewFromInt(45000)),
		PaymentMethod: "cash",
		IsPaid:        true,
		CustomerName:  str("John Doe"),
		SaleDate:      "2026-08-30T14:25:00Z",
		Items: []model.SaleItem{
			{
				ItemName:   "Paracetamol 500mg",
				Quantity:   2,
				UnitPrice:  model.FlexDecimal(decimal.NewFromInt(5000)),
				TotalPrice: model.FlexDecimal(decimal.NewFromInt(10000)),
			},
			{
				ItemName:   "Amoxicillin 250mg",
				Quantity:   1,
				UnitPrice:  model.FlexDecimal(decimal.NewFromInt(35000)),
				TotalPrice: model.FlexDecimal(decimal.NewFromInt(35000)),
			},
		},
	}
}

func TestFormatReceiptData(t *testing.T) {
	data := FormatReceiptData(aValidSale(), testStore)

	if data.SaleID != 12345 {
		t.Errorf("sale id = %d, want 12345", data.SaleID)
	}
	if data.StoreName != "MediCare Pharmacy" {
		t.Errorf("store name = %q", data.StoreName)
	}
	if data.CustomerName != "John Doe" {
		t.Errorf("customer name = %q, want John Doe", data.CustomerName)
	}
	if len(data.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(data.Items))
	}
	if !data.Items[0].Total.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("first item total = %s, want 10000", data.Items[0].Total)
	}
	if !data.TotalAmount.Equal(decimal.NewFromInt(45000)) {
		t.Errorf("total amount = %s, want 45000", data.TotalAmount)
	}
	if data.SaleDate != "Aug 30, 2026 14:25" {
		t.Errorf("sale date = %q", data.SaleDate)
	}
}

func TestFormattedSaleAlwaysValidates(t *testing.T) {
	data := FormatReceiptData(aValidSale(), testStore)
	if err := ValidateReceiptData(data); err != nil {
		t.Fatalf("formatted valid sale failed validation: %v", err)
	}
}

func TestNullableFieldsBecomeEmpty(t *testing.T) {
	sale := aValidSale()
	sale.CustomerName = nil
	sale.CustomerPhone = nil
	sale.Notes = nil

	data := FormatReceiptData(sale, testStore)
	if data.CustomerName != "" {
		t.Errorf("customer name = %q, want empty", data.CustomerName)
	}
	if data.CustomerPhone != "" {
		t.Errorf("customer phone = %q, want empty", data.CustomerPhone)
	}
	if data.Notes != "" {
		t.Errorf("notes = %q, want empty", data.Notes)
	}
	if data.HasCustomer() {
		t.Error("expected no customer rows for null customer fields")
	}
}

func TestValidateRejectsIncompleteReceipts(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.ReceiptData)
	}{
		{"missing store name", func(d *model.ReceiptData) { d.StoreName = "  " }},
		{"zero sale id", func(d *model.ReceiptData) { d.SaleID = 0 }},
		{"missing sale date", func(d *model.ReceiptData) { d.SaleDate = "" }},
		{"no items", func(d *model.ReceiptData) { d.Items = nil }},
		{"zero total", func(d *model.ReceiptData) { d.TotalAmount = decimal.Zero }},
		{"negative total", func(d *model.ReceiptData) { d.TotalAmount = decimal.NewFromInt(-5) }},
		{"zero quantity item", func(d *model.ReceiptData) { d.Items[0].Quantity = 0 }},
		{"nameless item", func(d *model.ReceiptData) { d.Items[0].Name = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := FormatReceiptData(aValidSale(), testStore)
			tc.mutate(data)
			if err := ValidateReceiptData(data); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSaleDecodesStringNumerics(t *testing.T) {
	raw := `{
		"id": "777",
		"total_amount": "12500.50",
		"payment_method": "card",
		"customer_name": null,
		"sale_date": "2026-01-15 09:30:00",
		"items": [
			{"item_name": "Ibuprofen 400mg", "quantity": "3", "unit_price": "4000", "total_price": "12000"}
		]
	}`

	var sale model.Sale
	if err := json.Unmarshal([]byte(raw), &sale); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sale.ID.Int() != 777 {
		t.Errorf("id = %d, want 777", sale.ID.Int())
	}
	if !sale.TotalAmount.Decimal().Equal(decimal.NewFromFloat(12500.50)) {
		t.Errorf("total = %s", sale.TotalAmount.Decimal())
	}
	if sale.Items[0].Quantity.Int() != 3 {
		t.Errorf("quantity = %d, want 3", sale.Items[0].Quantity.Int())
	}
	if sale.CustomerName != nil {
		t.Error("expected nil customer name")
	}

	data := FormatReceiptData(&sale, testStore)
	if data.SaleDate != "Jan 15, 2026 09:30" {
		t.Errorf("sale date = %q", data.SaleDate)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"950", "950"},
		{"45000", "45,000"},
		{"1234567", "1,234,567"},
		{"1250.5", "1,250.50"},
		{"-45000", "-45,000"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatAmount(d); got != tc.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPaymentMethodLabels(t *testing.T) {
	if got := model.PaymentMethod("mobile_wallet").DisplayLabel(); got != "Mobile Wallet" {
		t.Errorf("mobile_wallet label = %q", got)
	}
	if got := model.PaymentMethod("barter").DisplayLabel(); got != "barter" {
		t.Errorf("unknown method should pass through, got %q", got)
	}
}
