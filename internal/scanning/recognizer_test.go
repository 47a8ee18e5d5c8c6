package scanning

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

func writeScript(dir, name, body string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755)).To(Succeed())
	return path
}

var _ = Describe("Tesseract", func() {
	var (
		dir  string
		page image.Image
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		page = image.NewGray(image.Rect(0, 0, 8, 8))
	})

	When("the binary cannot be found", func() {
		It("returns the error", func() {
			_, err := NewTesseract(filepath.Join(dir, "missing"), "")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("finding tesseract binary"))
		})
	})

	When("the binary succeeds", func() {
		It("returns its stdout", func() {
			bin := writeScript(dir, "tesseract", "cat > /dev/null\necho \"args: $*\"\n")
			t, err := NewTesseract(bin, "eng")
			Expect(err).NotTo(HaveOccurred())

			text, err := t.Recognize(page)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("args: stdin stdout -l eng\n"))
			Expect(t.Close()).To(Succeed())
		})

		It("pipes the page in as PNG", func() {
			bin := writeScript(dir, "tesseract", "head -c 4 | tail -c 3\n")
			t, err := NewTesseract(bin, "")
			Expect(err).NotTo(HaveOccurred())

			text, err := t.Recognize(page)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("PNG"))
		})
	})

	When("the binary fails", func() {
		It("returns the error with stderr", func() {
			bin := writeScript(dir, "tesseract", "cat > /dev/null\necho 'Error opening data file' >&2\nexit 1\n")
			t, err := NewTesseract(bin, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = t.Recognize(page)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("running tesseract"))
			Expect(err.Error()).To(ContainSubstring("Error opening data file"))
		})
	})
})

var _ = Describe("Ollama", func() {
	var (
		server *ghttp.Server
		ollama *Ollama
		page   image.Image
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		ollama, err = NewOllama(server.URL(), "llava")
		Expect(err).NotTo(HaveOccurred())
		page = image.NewGray(image.Rect(0, 0, 8, 8))
	})

	AfterEach(func() {
		server.Close()
	})

	When("the API answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/generate"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, err := io.ReadAll(r.Body)
					Expect(err).NotTo(HaveOccurred())
					var req generateRequest
					Expect(json.Unmarshal(body, &req)).To(Succeed())
					Expect(req.Model).To(Equal("llava"))
					Expect(req.Stream).To(BeFalse())
					Expect(req.Prompt).To(Equal(transcribePrompt))
					Expect(req.Options.Temperature).To(BeZero())
					Expect(req.Images).To(HaveLen(1))
					png, err := base64.StdEncoding.DecodeString(req.Images[0])
					Expect(err).NotTo(HaveOccurred())
					Expect(string(png[1:4])).To(Equal("PNG"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]interface{}{
					"response": "```\nHDFC BANK\n```",
					"done":     true,
				}),
			))
		})

		It("returns the cleaned transcription", func() {
			text, err := ollama.Recognize(page)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("HDFC BANK"))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the error", func() {
			_, err := ollama.Recognize(page)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 500"))
			Expect(err.Error()).To(ContainSubstring("model not loaded"))
		})
	})

	When("the API returns invalid JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "not json"))
		})

		It("returns the error", func() {
			_, err := ollama.Recognize(page)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("decoding response"))
		})
	})

	It("applies defaults", func() {
		o, err := NewOllama("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(o.endpoint).To(Equal("http://localhost:11434/api/generate"))
		Expect(o.model).To(Equal("llava"))
		Expect(o.Close()).To(Succeed())
	})
})

var _ = Describe("NewGemini", func() {
	It("requires an API key", func() {
		_, err := NewGemini("", "")
		Expect(err).To(MatchError("gemini api key is required"))
	})
})
