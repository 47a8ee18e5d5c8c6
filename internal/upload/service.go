package upload

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/zombor/statement-parser/internal/statement"
)

// ErrTooManyPages is returned when a PDF exceeds the configured page limit
var ErrTooManyPages = errors.New("document has too many pages")

// Parser runs the parsing pipeline on a saved document
type Parser interface {
	Run(path string) (*statement.Fields, error)
}

// IDGenerator generates unique prefixes for uploaded files
type IDGenerator interface {
	Generate() string
}

// PageCounter counts the pages of a PDF
type PageCounter interface {
	PageCount(path string) (int, error)
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// pdfcpuPageCounter reads the page count with pdfcpu
type pdfcpuPageCounter struct{}

func (pdfcpuPageCounter) PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}

// Options tune how uploads are handled
type Options struct {
	// MaxPages rejects PDFs with more pages; 0 disables the check
	MaxPages int
	// KeepUploads leaves documents in the upload directory after parsing
	KeepUploads bool
}

// Service saves uploaded statements and runs them through the parser
type Service struct {
	parser      Parser
	storage     Storage
	idGenerator IDGenerator
	pageCounter PageCounter
	options     Options
}

// NewService creates a new Service with the default ID generator and page counter
func NewService(parser Parser, storage Storage, options Options) *Service {
	return &Service{
		parser:      parser,
		storage:     storage,
		idGenerator: &uuidGenerator{},
		pageCounter: pdfcpuPageCounter{},
		options:     options,
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(parser Parser, storage Storage, idGen IDGenerator, counter PageCounter, options Options) *Service {
	return &Service{
		parser:      parser,
		storage:     storage,
		idGenerator: idGen,
		pageCounter: counter,
		options:     options,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	// Browsers on Windows may send the full client path
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "statement"
	}

	ext = unsafeFilenameChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// Parse saves an uploaded statement and extracts its fields. Classification
// failures come back as *pipeline.ClassificationError.
func (s *Service) Parse(filename string, data []byte) (*statement.Fields, error) {
	name := fmt.Sprintf("%s_%s", s.idGenerator.Generate(), sanitizeFilename(filename))
	saved, err := s.storage.Save(name, data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}
	if !s.options.KeepUploads {
		defer func() {
			if err := s.storage.Delete(saved); err != nil {
				slog.Warn("Failed to delete upload", "filename", saved, "error", err)
			}
		}()
	}

	path := s.storage.Path(saved)
	if err := s.checkPages(path, data); err != nil {
		return nil, err
	}

	fields, err := s.parser.Run(path)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// checkPages enforces MaxPages on PDFs. Files pdfcpu cannot read are let
// through; the text extractor has its own fallbacks.
func (s *Service) checkPages(path string, data []byte) error {
	if s.options.MaxPages <= 0 || !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil
	}
	count, err := s.pageCounter.PageCount(path)
	if err != nil {
		slog.Warn("Could not count PDF pages", "path", path, "error", err)
		return nil
	}
	if count > s.options.MaxPages {
		return fmt.Errorf("%w: %d pages, limit is %d", ErrTooManyPages, count, s.options.MaxPages)
	}
	return nil
}
