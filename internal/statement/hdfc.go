package statement

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HDFC statements usually arrive through OCR, so most of these patterns are
// heuristics rather than labeled matches. The name is the first run of two or
// three all-caps tokens and the last four digits are the first standalone
// 4-digit group; either can pick up unrelated text. Nothing cross-checks them.
//
// RE2's \b and \d are ASCII-only. The name and digit patterns spell out
// Unicode word boundaries instead, so "ÉRIC DUPONT" does not yield "RIC DUPONT"
// and a Devanagari or Arabic-Indic digit run counts as digits. The labeled
// patterns below keep ASCII \s and \d; OCR output rarely needs more there.
var (
	hdfcName          = regexp.MustCompile(`(?:^|[^\pL\pN_])([A-Z]{3,}(?: [A-Z]{2,}){1,2})(?:[^\pL\pN_]|$)`)
	hdfcDigits        = regexp.MustCompile(`(\p{Nd}{4})(?:[^\pL\pN_]|$)`)
	hdfcBillingPeriod = regexp.MustCompile(`(?i)Billing Period[\s:]+([0-9/\- ]+[–-][0-9/\- ]+)`)
	hdfcTotalAmount   = regexp.MustCompile(`(?i)TOTAL AMOUNT[^\d]*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	hdfcAmountDue     = regexp.MustCompile(`(?i)AMOUNT DUE[^\d]*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	hdfcDueDate       = regexp.MustCompile(`Due Date\s*[:]?\s*([\d\-/]+)`)
)

type hdfcExtractor struct{}

func (hdfcExtractor) Extract(text string) *Fields {
	f := blankFields(HDFC)

	if m := hdfcName.FindStringSubmatch(text); m != nil {
		f.CardholderName = cases.Title(language.Und).String(m[1])
	}
	f.CardLast4 = hdfcLast4(text)
	f.BillingPeriod = group(hdfcBillingPeriod, text)

	f.TotalAmountDue = group(hdfcTotalAmount, text)
	if f.TotalAmountDue == NotAvailable {
		f.TotalAmountDue = group(hdfcAmountDue, text)
	}

	f.PaymentDueDate = group(hdfcDueDate, text)
	return f
}

// hdfcLast4 finds the first 4-digit group that is not followed by a word
// character or a hyphen, so date fragments like "2024-" are skipped.
func hdfcLast4(text string) string {
	for _, loc := range hdfcDigits.FindAllStringSubmatchIndex(text, -1) {
		end := loc[3]
		if end < len(text) && text[end] == '-' {
			continue
		}
		return text[loc[2]:loc[3]]
	}
	return NotAvailable
}
