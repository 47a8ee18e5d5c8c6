package scanning

import "strings"

// transcribePrompt is the shared prompt used by the LLM recognizers
const transcribePrompt = `You are an OCR engine reading one page of a scanned credit card statement.
Transcribe every piece of text on the page exactly as printed, top to bottom, left to right.

Important:
- Keep the original line breaks, numbers, dates, punctuation and capitalization
- Do not summarize, translate, correct or reformat anything
- Do not add commentary before or after the text
- Do not use markdown code blocks
- If the page has no readable text, return an empty response`

// fenceLanguages are the tags that may follow an opening code fence
var fenceLanguages = map[string]bool{
	"":          true,
	"text":      true,
	"txt":       true,
	"plaintext": true,
	"markdown":  true,
	"md":        true,
}

// cleanTranscription strips the wrappers LLMs put around plain text answers
func cleanTranscription(text string) string {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if i := strings.IndexByte(text, '\n'); i >= 0 && fenceLanguages[strings.ToLower(strings.TrimSpace(text[:i]))] {
			text = text[i+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	return strings.TrimSpace(text)
}
