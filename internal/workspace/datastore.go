// Package workspace holds the session-scoped state the review UI edits:
// extracted invoices, products and customers, plus the remote file listing.
package workspace

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ntimofeev/invoice-extractor/internal/core/domain"
)

// DataStore is the keyed collection of extracted records. Edits patch one
// record at a time; a patch against an unknown id is a no-op because the UI
// tolerates stale references.
type DataStore struct {
	mu        sync.RWMutex
	invoices  map[string]domain.Invoice
	products  map[string]domain.Product
	customers map[string]domain.Customer
}

func NewDataStore() *DataStore {
	return &DataStore{
		invoices:  make(map[string]domain.Invoice),
		products:  make(map[string]domain.Product),
		customers: make(map[string]domain.Customer),
	}
}

// MergeExtraction adds one validated extraction result. Records with ids
// already present are replaced; the missing-fields ledger is rebuilt from
// the incoming values.
func (s *DataStore) MergeExtraction(res domain.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range res.Invoices {
		s.invoices[inv.InvoiceID] = inv
	}
	for _, p := range res.Products {
		p.MissingFields = p.ComputeMissingFields()
		s.products[p.ProductID] = p
	}
	for _, c := range res.Customers {
		s.customers[c.CustomerID] = c
	}
}

// Invoices returns the invoice records ordered by id.
func (s *DataStore) Invoices() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceID < out[j].InvoiceID })
	return out
}

// Products returns the product records ordered by id. The priceWithTax
// column is filled on read: the extraction-supplied value when non-zero,
// otherwise quantity*unitPrice+tax.
func (s *DataStore) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		derived := p.EffectivePriceWithTax()
		p.PriceWithTax = &derived
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Customers returns the customer records ordered by id.
func (s *DataStore) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}

// UpdateProduct merges patch into the product with the given id. An explicit
// null or empty value marks the field missing; a valid value clears it from
// the ledger. Absent keys are untouched. Returns ok=false for unknown ids.
func (s *DataStore) UpdateProduct(id string, patch map[string]json.RawMessage) (domain.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false, nil
	}

	for field, raw := range patch {
		switch field {
		case "productName":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Product{}, false, err
			}
			p.ProductName = v
			syncTextField(&p, field, v)
		case "currency":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Product{}, false, err
			}
			p.Currency = v
			syncTextField(&p, field, v)
		case "quantity":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Product{}, false, err
			}
			p.Quantity = v
			syncNumericField(&p, field, v)
		case "unitPrice":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Product{}, false, err
			}
			p.UnitPrice = v
			syncNumericField(&p, field, v)
		case "tax":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Product{}, false, err
			}
			p.Tax = v
			syncNumericField(&p, field, v)
		case "discount":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Product{}, false, err
			}
			p.Discount = v
			syncNumericField(&p, field, v)
		case "priceWithTax":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Product{}, false, err
			}
			p.PriceWithTax = v
		default:
			// Unknown keys are dropped, matching the merge semantics of the
			// editing UI.
		}
	}

	s.products[id] = p
	return p, true, nil
}

// UpdateInvoice merges patch into the invoice with the given id. Unknown ids
// are a no-op.
func (s *DataStore) UpdateInvoice(id string, patch map[string]json.RawMessage) (domain.Invoice, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return domain.Invoice{}, false, nil
	}

	for field, raw := range patch {
		switch field {
		case "customerName":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			inv.CustomerName = v
		case "productName":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			inv.ProductName = v
		case "currency":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			inv.Currency = v
		case "serialNumber":
			v, err := decodeNullableString(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			inv.SerialNumber = v
		case "date":
			v, err := decodeNullableString(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			inv.Date = v
		case "quantity":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			inv.Quantity = v
		case "tax":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			inv.Tax = v
		case "totalAmount":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Invoice{}, false, err
			}
			if v != nil {
				inv.TotalAmount = *v
			}
		default:
		}
	}

	s.invoices[id] = inv
	return inv, true, nil
}

// UpdateCustomer merges patch into the customer with the given id. Unknown
// ids are a no-op.
func (s *DataStore) UpdateCustomer(id string, patch map[string]json.RawMessage) (domain.Customer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return domain.Customer{}, false, nil
	}

	for field, raw := range patch {
		switch field {
		case "customerName":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Customer{}, false, err
			}
			c.CustomerName = v
		case "phoneNumber":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Customer{}, false, err
			}
			c.PhoneNumber = v
		case "currency":
			v, err := decodeString(field, raw)
			if err != nil {
				return domain.Customer{}, false, err
			}
			c.Currency = v
		case "totalPurchaseAmount":
			v, err := decodeNumber(field, raw)
			if err != nil {
				return domain.Customer{}, false, err
			}
			if v != nil {
				c.TotalPurchaseAmount = *v
			}
		default:
		}
	}

	s.customers[id] = c
	return c, true, nil
}

// RemoveProduct deletes the record. Referencing invoices are left as-is;
// removing a missing id is a no-op.
func (s *DataStore) RemoveProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

func (s *DataStore) RemoveInvoice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.invoices, id)
}

func (s *DataStore) RemoveCustomer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.customers, id)
}

func syncNumericField(p *domain.Product, field string, v *float64) {
	if v == nil {
		p.MarkMissing(field)
	} else {
		p.ClearMissing(field)
	}
}

func syncTextField(p *domain.Product, field, v string) {
	if v == "" {
		p.MarkMissing(field)
	} else {
		p.ClearMissing(field)
	}
}

func decodeNumber(field string, raw json.RawMessage) (*float64, error) {
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, fmt.Sprintf("field %q", field), err)
	}
	return v, nil
}

func decodeString(field string, raw json.RawMessage) (string, error) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, fmt.Sprintf("field %q", field), err)
	}
	return v, nil
}

func decodeNullableString(field string, raw json.RawMessage) (*string, error) {
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, fmt.Sprintf("field %q", field), err)
	}
	return v, nil
}
