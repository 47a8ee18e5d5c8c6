package scanning

import "image"

// Quality records how a transcript was produced
type Quality int

const (
	// QualityNative is text read from the document's own text layer
	QualityNative Quality = iota
	// QualityOCR is text recognized from rendered page images
	QualityOCR
	// QualityPlaceholder is an error description standing in for a transcript
	QualityPlaceholder
)

func (q Quality) String() string {
	switch q {
	case QualityNative:
		return "native"
	case QualityOCR:
		return "ocr"
	case QualityPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Transcript is the plain text recovered from a document
type Transcript struct {
	Text    string
	Quality Quality
}

// TextSource reads the native text layer of a document
type TextSource interface {
	// PageTexts returns the text of each page in order
	PageTexts(path string) ([]string, error)
}

// PageRenderer rasterizes the pages of a document
type PageRenderer interface {
	// RenderPages returns one image per page in order
	RenderPages(path string) ([]image.Image, error)
}

// Recognizer turns a page image into text
type Recognizer interface {
	// Recognize returns the text found in img
	Recognize(img image.Image) (string, error)
	// Close closes the recognizer and releases resources
	Close() error
}
