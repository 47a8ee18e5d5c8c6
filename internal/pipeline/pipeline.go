package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/zombor/statement-parser/internal/scanning"
	"github.com/zombor/statement-parser/internal/statement"
)

// previewLength is how much of a transcript is shown in diagnostics
const previewLength = 1000

// TextExtractor produces a transcript for a document
type TextExtractor interface {
	Extract(path string) scanning.Transcript
}

// ClassificationError is returned when no issuer rule matches a transcript
type ClassificationError struct {
	Transcript scanning.Transcript
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unsupported or unknown statement format (%s transcript, %d bytes)",
		e.Transcript.Quality, len(e.Transcript.Text))
}

// Preview returns the beginning of the transcript
func (e *ClassificationError) Preview() string {
	return Preview(e.Transcript.Text)
}

// Preview returns at most the first 1000 characters of text
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength])
}

// Pipeline turns a statement document into its field record
type Pipeline struct {
	extractor TextExtractor
	registry  *statement.Registry
	metrics   *Metrics
}

// New creates a new Pipeline. metrics may be nil.
func New(extractor TextExtractor, registry *statement.Registry, metrics *Metrics) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		registry:  registry,
		metrics:   metrics,
	}
}

// Run extracts, classifies and parses the document at path. When no issuer
// is recognized it returns a *ClassificationError carrying the transcript.
// The document itself is never modified.
func (p *Pipeline) Run(path string) (*statement.Fields, error) {
	transcript := p.extractor.Extract(path)
	p.metrics.observeTranscript(transcript.Quality)
	slog.Debug("Extracted text",
		"path", path,
		"quality", transcript.Quality.String(),
		"preview", Preview(transcript.Text),
	)

	bank, rule := statement.Match(transcript.Text)
	p.metrics.observeBank(bank)
	if bank == statement.Unknown {
		slog.Warn("Unsupported or unknown statement format",
			"path", path,
			"quality", transcript.Quality.String(),
			"preview", Preview(transcript.Text),
		)
		return nil, &ClassificationError{Transcript: transcript}
	}
	slog.Info("Classified statement", "path", path, "bank", string(bank), "rule", rule.Name)

	fields, err := p.registry.Extract(bank, transcript.Text)
	if err != nil {
		return nil, fmt.Errorf("extracting fields: %w", err)
	}
	return fields, nil
}
