package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// Fitz reads documents with MuPDF. It implements both TextSource and
// PageRenderer. Photographed statements (JPEG, PNG, GIF, HEIC) are treated as
// single-page documents without a text layer.
type Fitz struct{}

// NewFitz creates a new Fitz document reader
func NewFitz() *Fitz {
	return &Fitz{}
}

// PageTexts extracts the text layer of every page
func (f *Fitz) PageTexts(path string) ([]string, error) {
	isImage, err := isImageFile(path)
	if err != nil {
		return nil, err
	}
	if isImage {
		return nil, nil
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", n+1, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// RenderPages renders every page to an image
func (f *Fitz) RenderPages(path string) ([]image.Image, error) {
	isImage, err := isImageFile(path)
	if err != nil {
		return nil, err
	}
	if isImage {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		img, err := decodeImage(data)
		if err != nil {
			return nil, err
		}
		return []image.Image{img}, nil
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	images := make([]image.Image, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", n+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// isImageFile sniffs the first bytes of path for a raster image format
func isImageFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("reading file header: %w", err)
	}
	head = head[:n]

	if isHEICFormat(head) {
		return true, nil
	}
	switch http.DetectContentType(head) {
	case "image/png", "image/jpeg", "image/gif":
		return true, nil
	}
	return false, nil
}

// decodeImage decodes JPEG, PNG, GIF and HEIC/HEIF data
func decodeImage(data []byte) (image.Image, error) {
	// Go's standard image package doesn't support HEIC
	if isHEICFormat(data) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "unknown format") {
			return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files have an ftyp box at offset 4 with a HEIC-related brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1"
}

// encodePNG encodes img as PNG
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
