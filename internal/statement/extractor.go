package statement

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNoExtractor is returned when no field extractor is registered for a bank
var ErrNoExtractor = errors.New("no field extractor for bank")

// FieldExtractor pulls the fixed record out of a transcript for one issuer
type FieldExtractor interface {
	Extract(text string) *Fields
}

// Registry maps each bank to its field extractor
type Registry struct {
	extractors map[Bank]FieldExtractor
}

// NewRegistry creates a Registry with an extractor for every known bank
func NewRegistry() *Registry {
	return NewRegistryWith(map[Bank]FieldExtractor{
		Sample: sampleExtractor{},
		HDFC:   hdfcExtractor{},
		ICICI:  placeholderExtractor{bank: ICICI},
		SBI:    placeholderExtractor{bank: SBI},
		Axis:   placeholderExtractor{bank: Axis},
		Amex:   placeholderExtractor{bank: Amex},
	})
}

// NewRegistryWith creates a Registry from an explicit mapping
func NewRegistryWith(extractors map[Bank]FieldExtractor) *Registry {
	m := make(map[Bank]FieldExtractor, len(extractors))
	for bank, e := range extractors {
		m[bank] = e
	}
	return &Registry{extractors: m}
}

// Dispatch returns the extractor for bank. Unknown never has one.
func (r *Registry) Dispatch(bank Bank) (FieldExtractor, error) {
	if bank == Unknown {
		return nil, fmt.Errorf("%w: unknown", ErrNoExtractor)
	}
	e, ok := r.extractors[bank]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoExtractor, bank)
	}
	return e, nil
}

// Extract dispatches to the extractor for bank and runs it
func (r *Registry) Extract(bank Bank, text string) (*Fields, error) {
	e, err := r.Dispatch(bank)
	if err != nil {
		return nil, err
	}
	return e.Extract(text), nil
}

// group returns the first capture group of re in text, or NotAvailable
func group(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return NotAvailable
	}
	return orNotAvailable(m[1])
}

// placeholderExtractor reports only the bank. Issuers using it have no
// extraction rules yet.
type placeholderExtractor struct {
	bank Bank
}

func (p placeholderExtractor) Extract(string) *Fields {
	return blankFields(p.bank)
}
