package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"
)

// ollamaTimeout bounds a single page; vision models are slow on full pages
const ollamaTimeout = 120 * time.Second

// Ollama implements the Recognizer interface using a local Ollama vision model.
// Models with usable OCR: llava:1.6, qwen2-vl:7b, minicpm-v.
type Ollama struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewOllama creates a new Ollama Recognizer instance
func NewOllama(baseURL string, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &Ollama{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/api/generate",
		model:    modelName,
		client:   &http.Client{Timeout: ollamaTimeout},
	}, nil
}

// generateRequest is the body of Ollama's /api/generate call
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Recognize transcribes the text on a page image
func (o *Ollama) Recognize(img image.Image) (string, error) {
	pngData, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(generateRequest{
		Model:   o.model,
		Prompt:  transcribePrompt,
		Images:  []string{base64.StdEncoding.EncodeToString(pngData)},
		Options: generateOptions{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ollamaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return cleanTranscription(out.Response), nil
}

// Close is a no-op; the HTTP client holds no resources
func (o *Ollama) Close() error {
	return nil
}
