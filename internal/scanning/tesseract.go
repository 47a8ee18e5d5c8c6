package scanning

import (
	"bytes"
	"fmt"
	"image"
	"os/exec"
	"strings"
)

// Tesseract implements the Recognizer interface by running the tesseract
// command line tool. The page is piped in as PNG and the text read from stdout.
type Tesseract struct {
	path string
	lang string
}

// NewTesseract creates a new Tesseract Recognizer instance.
// path defaults to "tesseract" on $PATH; lang is passed as -l when set.
func NewTesseract(path string, lang string) (*Tesseract, error) {
	if path == "" {
		path = "tesseract"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("finding tesseract binary: %w", err)
	}
	return &Tesseract{path: resolved, lang: lang}, nil
}

// Recognize runs tesseract on a page image
func (t *Tesseract) Recognize(img image.Image) (string, error) {
	pngData, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	args := []string{"stdin", "stdout"}
	if t.lang != "" {
		args = append(args, "-l", t.lang)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(t.path, args...)
	cmd.Stdin = bytes.NewReader(pngData)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Close is a no-op; every call runs its own process
func (t *Tesseract) Close() error {
	return nil
}
