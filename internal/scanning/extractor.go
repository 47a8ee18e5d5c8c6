package scanning

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extractor recovers a transcript from a document. It reads the native text
// layer first and only renders and recognizes pages when that yields nothing
// but whitespace.
type Extractor struct {
	source     TextSource
	renderer   PageRenderer
	recognizer Recognizer
	debugDir   string
}

// NewExtractor creates a new Extractor
func NewExtractor(source TextSource, renderer PageRenderer, recognizer Recognizer) *Extractor {
	return &Extractor{
		source:     source,
		renderer:   renderer,
		recognizer: recognizer,
	}
}

// WithDebugDir makes the OCR path write each rendered page and the
// recognized text into dir
func (e *Extractor) WithDebugDir(dir string) *Extractor {
	e.debugDir = dir
	return e
}

// Extract returns the transcript of the document at path. It never fails:
// when OCR breaks, the transcript text is the error description.
func (e *Extractor) Extract(path string) Transcript {
	text := e.nativeText(path)
	if strings.TrimSpace(text) != "" {
		return Transcript{Text: text, Quality: QualityNative}
	}

	slog.Info("No native text found, falling back to OCR", "path", path)
	text, err := e.ocrText(path)
	if err != nil {
		slog.Error("OCR extraction failed", "path", path, "error", err)
		return Transcript{Text: fmt.Sprintf("OCR error: %v", err), Quality: QualityPlaceholder}
	}
	return Transcript{Text: text, Quality: QualityOCR}
}

func (e *Extractor) nativeText(path string) string {
	pages, err := e.source.PageTexts(path)
	if err != nil {
		slog.Warn("Native text extraction failed", "path", path, "error", err)
		return ""
	}

	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page)
		b.WriteString("\n")
	}
	return b.String()
}

func (e *Extractor) ocrText(path string) (string, error) {
	images, err := e.renderer.RenderPages(path)
	if err != nil {
		return "", fmt.Errorf("rendering pages: %w", err)
	}

	pages := make([]string, 0, len(images))
	for i, img := range images {
		e.saveDebugPage(path, i+1, img)

		text, err := e.recognizer.Recognize(Enhance(img))
		if err != nil {
			return "", fmt.Errorf("recognizing page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}

	text := strings.Join(pages, "\n")
	e.saveDebugText(path, text)
	return text, nil
}

// debugPath names an artifact after the document so concurrent requests
// don't overwrite each other
func (e *Extractor) debugPath(doc string, name string) string {
	return filepath.Join(e.debugDir, filepath.Base(doc)+"_"+name)
}

func (e *Extractor) saveDebugPage(doc string, page int, img image.Image) {
	if e.debugDir == "" {
		return
	}
	path := e.debugPath(doc, fmt.Sprintf("page_%d.png", page))
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("Failed to save debug page", "path", path, "error", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		slog.Warn("Failed to encode debug page", "path", path, "error", err)
		return
	}
	slog.Debug("Saved debug page", "path", path)
}

func (e *Extractor) saveDebugText(doc string, text string) {
	if e.debugDir == "" {
		return
	}
	path := e.debugPath(doc, "ocr_text.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		slog.Warn("Failed to save debug OCR text", "path", path, "error", err)
	}
}
