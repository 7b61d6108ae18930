package domain

import "slices"

// Invoice is one extracted line-item entry. Nullable fields are pointers:
// nil means the extraction could not determine the value, which is distinct
// from zero.
type Invoice struct {
	InvoiceID    string   `json:"invoiceId"`
	SerialNumber *string  `json:"serialNumber"`
	CustomerID   string   `json:"customerId"`
	CustomerName string   `json:"customerName"`
	ProductID    string   `json:"productId"`
	ProductName  string   `json:"productName"`
	Quantity     *float64 `json:"quantity"`
	Tax          *float64 `json:"tax"`
	TotalAmount  float64  `json:"totalAmount"`
	Date         *string  `json:"date"`
	Currency     string   `json:"currency"`
}

// Product is an extracted line-item product. MissingFields is the
// reconciliation ledger: every field the extraction could not populate is
// listed until a user edit supplies a valid value.
type Product struct {
	ProductID     string   `json:"productId"`
	ProductName   string   `json:"productName"`
	Quantity      *float64 `json:"quantity"`
	UnitPrice     *float64 `json:"unitPrice"`
	Tax           *float64 `json:"tax"`
	PriceWithTax  *float64 `json:"priceWithTax"`
	Currency      string   `json:"currency"`
	Discount      *float64 `json:"discount"`
	MissingFields []string `json:"missingFields"`
}

type Customer struct {
	CustomerID          string  `json:"customerId"`
	CustomerName        string  `json:"customerName"`
	PhoneNumber         string  `json:"phoneNumber"`
	TotalPurchaseAmount float64 `json:"totalPurchaseAmount"`
	Currency            string  `json:"currency"`
}

// ExtractionResult is the validated shape of one invoice-extraction response.
type ExtractionResult struct {
	Invoices  []Invoice  `json:"invoices"`
	Products  []Product  `json:"products"`
	Customers []Customer `json:"customers"`
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Classification is the purchase-order routing decision. It is not persisted
// as a domain entity.
type Classification struct {
	IsPurchaseOrder bool       `json:"isPurchaseOrder"`
	Confidence      Confidence `json:"confidence"`
}

// EffectivePriceWithTax returns the extraction-supplied value when present
// and non-zero, otherwise derives quantity*unitPrice+tax with nil treated
// as zero. The derived value is never stored back on the record.
func (p Product) EffectivePriceWithTax() float64 {
	if p.PriceWithTax != nil && *p.PriceWithTax != 0 {
		return *p.PriceWithTax
	}
	var qty, price, tax float64
	if p.Quantity != nil {
		qty = *p.Quantity
	}
	if p.UnitPrice != nil {
		price = *p.UnitPrice
	}
	if p.Tax != nil {
		tax = *p.Tax
	}
	return qty*price + tax
}

// ComputeMissingFields rebuilds the ledger from the current field values.
// A field is missing when its value is nil (numeric) or empty (text).
func (p Product) ComputeMissingFields() []string {
	var missing []string
	if p.ProductName == "" {
		missing = append(missing, "productName")
	}
	if p.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if p.UnitPrice == nil {
		missing = append(missing, "unitPrice")
	}
	if p.Tax == nil {
		missing = append(missing, "tax")
	}
	if p.Discount == nil {
		missing = append(missing, "discount")
	}
	if p.Currency == "" {
		missing = append(missing, "currency")
	}
	return missing
}

// MarkMissing adds field to the ledger if absent.
func (p *Product) MarkMissing(field string) {
	if !slices.Contains(p.MissingFields, field) {
		p.MissingFields = append(p.MissingFields, field)
		slices.Sort(p.MissingFields)
	}
}

// ClearMissing removes field from the ledger.
func (p *Product) ClearMissing(field string) {
	p.MissingFields = slices.DeleteFunc(p.MissingFields, func(f string) bool {
		return f == field
	})
}

func (p Product) IsMissing(field string) bool {
	return slices.Contains(p.MissingFields, field)
}
