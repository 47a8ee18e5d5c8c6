package statement

import "strings"

// NotAvailable marks a field whose pattern did not match
const NotAvailable = "N/A"

// Field keys of the record, in display order
const (
	KeyBank           = "Bank"
	KeyCardholderName = "Cardholder Name"
	KeyCardLast4      = "Card Last 4 Digits"
	KeyBillingPeriod  = "Billing Period"
	KeyTotalAmountDue = "Total Amount Due"
	KeyPaymentDueDate = "Payment Due Date"
)

// recordKeys lists the six record keys in display order
var recordKeys = []string{
	KeyBank,
	KeyCardholderName,
	KeyCardLast4,
	KeyBillingPeriod,
	KeyTotalAmountDue,
	KeyPaymentDueDate,
}

// Fields is the normalized record extracted from a statement.
// Every value is either extracted text or NotAvailable.
type Fields struct {
	Bank           string `json:"Bank"`
	CardholderName string `json:"Cardholder Name"`
	CardLast4      string `json:"Card Last 4 Digits"`
	BillingPeriod  string `json:"Billing Period"`
	TotalAmountDue string `json:"Total Amount Due"`
	PaymentDueDate string `json:"Payment Due Date"`
}

// FieldEntry is a single key/value pair of a record
type FieldEntry struct {
	Key   string
	Value string
}

// blankFields returns a record for bank with every other field NotAvailable
func blankFields(bank Bank) *Fields {
	return &Fields{
		Bank:           bank.DisplayName(),
		CardholderName: NotAvailable,
		CardLast4:      NotAvailable,
		BillingPeriod:  NotAvailable,
		TotalAmountDue: NotAvailable,
		PaymentDueDate: NotAvailable,
	}
}

// Map returns the record as a flat string-keyed mapping. Whitespace-only
// values come back as NotAvailable.
func (f *Fields) Map() map[string]string {
	m := make(map[string]string, len(recordKeys))
	for _, e := range f.Entries() {
		m[e.Key] = e.Value
	}
	return m
}

// Entries returns the record in display order
func (f *Fields) Entries() []FieldEntry {
	return []FieldEntry{
		{KeyBank, orNotAvailable(f.Bank)},
		{KeyCardholderName, orNotAvailable(f.CardholderName)},
		{KeyCardLast4, orNotAvailable(f.CardLast4)},
		{KeyBillingPeriod, orNotAvailable(f.BillingPeriod)},
		{KeyTotalAmountDue, orNotAvailable(f.TotalAmountDue)},
		{KeyPaymentDueDate, orNotAvailable(f.PaymentDueDate)},
	}
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
