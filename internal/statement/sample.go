package statement

import "regexp"

// Labeled patterns of the sample/teaching statement template
var (
	sampleName          = regexp.MustCompile(`Name:\s*(.+)`)
	sampleCardLast4     = regexp.MustCompile(`Account\s*Number:\s*[0-9\-]+([0-9]{4})`)
	sampleBillingPeriod = regexp.MustCompile(`Opening/Closing Date\s*([\d/\-]+ *[–-] *[\d/\-]+)`)
	sampleAmountDue     = regexp.MustCompile(`New Balance:\s*\$([\d,\.]+)`)
	sampleDueDate       = regexp.MustCompile(`Payment Due Date:\s*([\d/]+)`)
)

type sampleExtractor struct{}

func (sampleExtractor) Extract(text string) *Fields {
	f := blankFields(Sample)
	f.CardholderName = group(sampleName, text)
	f.CardLast4 = group(sampleCardLast4, text)
	f.BillingPeriod = group(sampleBillingPeriod, text)
	f.TotalAmountDue = group(sampleAmountDue, text)
	f.PaymentDueDate = group(sampleDueDate, text)
	return f
}
