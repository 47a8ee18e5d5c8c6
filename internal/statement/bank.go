package statement

import "regexp"

// Bank identifies the issuer whose template produced a statement
type Bank string

const (
	Unknown Bank = ""
	Sample  Bank = "SAMPLE"
	HDFC    Bank = "HDFC"
	ICICI   Bank = "ICICI"
	SBI     Bank = "SBI"
	Axis    Bank = "AXIS"
	Amex    Bank = "AMEX"
)

// knownBanks lists every known issuer in classification order
var knownBanks = []Bank{Sample, HDFC, ICICI, SBI, Axis, Amex}

// DisplayName returns the value reported in the Bank field
func (b Bank) DisplayName() string {
	switch b {
	case Sample:
		return "Sample"
	case Unknown:
		return "Unknown"
	default:
		return string(b)
	}
}

// Rule is a single step of the classification cascade
type Rule struct {
	Name    string
	Bank    Bank
	Pattern *regexp.Regexp
}

// rules are evaluated top to bottom and the first match wins.
// Both HDFC rules resolve to the same bank; the weaker one only exists as a fallback.
var rules = []Rule{
	{Name: "sample-marker", Bank: Sample, Pattern: regexp.MustCompile(`(?i)BUILDING BLOCKS STUDENT HANDOUT|Sample credit card statement`)},
	{Name: "hdfc-statement", Bank: HDFC, Pattern: regexp.MustCompile(`(?i)HDFC.*Credit Card Statement`)},
	{Name: "hdfc", Bank: HDFC, Pattern: regexp.MustCompile(`(?i)HDFC`)},
	{Name: "icici", Bank: ICICI, Pattern: regexp.MustCompile(`(?i)ICICI`)},
	{Name: "sbi", Bank: SBI, Pattern: regexp.MustCompile(`(?i)State Bank of India|SBI`)},
	{Name: "axis", Bank: Axis, Pattern: regexp.MustCompile(`(?i)Axis Bank|AXIS`)},
	{Name: "amex", Bank: Amex, Pattern: regexp.MustCompile(`(?i)American Express|Amex`)},
}

// Match returns the bank and the rule that identified it.
// When nothing matches it returns Unknown and a zero Rule.
func Match(text string) (Bank, Rule) {
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			return r.Bank, r
		}
	}
	return Unknown, Rule{}
}

// Classify returns the issuer of a transcript, or Unknown
func Classify(text string) Bank {
	bank, _ := Match(text)
	return bank
}
