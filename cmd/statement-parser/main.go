package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zombor/statement-parser/internal/pipeline"
	"github.com/zombor/statement-parser/internal/scanning"
	"github.com/zombor/statement-parser/internal/statement"
	"github.com/zombor/statement-parser/internal/upload"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	flags := ff.NewFlagSet("statement-parser")
	var (
		port          = flags.IntLong("port", 8080, "HTTP server port")
		uploadDir     = flags.StringLong("upload-dir", "uploads", "Directory uploaded statements are written to")
		keepUploads   = flags.BoolLong("keep-uploads", "Keep uploaded statements after parsing")
		maxPages      = flags.IntLong("max-pages", 0, "Reject PDFs with more pages (0 for no limit)")
		secretKey     = flags.StringLong("secret-key", "dev-secret", "Key used to sign the flash message cookie")
		secureCookies = flags.BoolLong("secure-cookies", "Mark the flash message cookie Secure (requires HTTPS in front)")
		ocrEngine     = flags.StringLong("ocr", "tesseract", "OCR engine: 'tesseract', 'gemini' or 'ollama'")
		tesseractPath = flags.StringLong("tesseract-path", "tesseract", "Path to the tesseract binary")
		tesseractLang = flags.StringLong("tesseract-lang", "", "Tesseract language (e.g. eng)")
		geminiKey     = flags.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = flags.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = flags.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = flags.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, qwen2-vl)")
		debugDir      = flags.StringLong("debug-dir", "", "Write page images and OCR text here for inspection")
		authUser      = flags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = flags.StringLong("auth-pass", "", "Basic auth password (optional)")
		rateLimit     = flags.Float64Long("rate-limit", 0, "Uploads allowed per second (0 for no limit)")
		rateBurst     = flags.IntLong("rate-burst", 5, "Uploads allowed in a burst")
		showVersion   = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("STATEMENT_PARSER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize OCR engine based on type
	var (
		recognizer scanning.Recognizer
		err        error
	)
	switch *ocrEngine {
	case "tesseract":
		slog.Info("Initializing Tesseract...", "path", *tesseractPath, "lang", *tesseractLang)
		recognizer, err = scanning.NewTesseract(*tesseractPath, *tesseractLang)
		if err != nil {
			slog.Error("Failed to initialize Tesseract", "error", err)
			os.Exit(1)
		}
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini...", "model", *geminiModel)
		recognizer, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama...", "url", *ollamaURL, "model", *ollamaModel)
		recognizer, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid OCR engine", "ocr", *ocrEngine, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	defer recognizer.Close()

	fitz := scanning.NewFitz()
	extractor := scanning.NewExtractor(fitz, fitz, recognizer)
	if *debugDir != "" {
		if err := os.MkdirAll(*debugDir, 0755); err != nil {
			slog.Error("Failed to create debug directory", "error", err)
			os.Exit(1)
		}
		slog.Info("Writing debug artifacts", "dir", *debugDir)
		extractor = extractor.WithDebugDir(*debugDir)
	}

	metrics, err := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}
	parser := pipeline.New(extractor, statement.NewRegistry(), metrics)

	// Initialize storage
	slog.Info("Initializing upload directory...", "dir", *uploadDir)
	store, err := upload.NewLocalStorage(*uploadDir)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := upload.NewService(parser, store, upload.Options{
		MaxPages:    *maxPages,
		KeepUploads: *keepUploads,
	})

	server := upload.NewServer(service, upload.Config{
		BasicAuth: upload.BasicAuth{
			Username: *authUser,
			Password: *authPass,
		},
		SecretKey:     *secretKey,
		SecureCookies: *secureCookies,
		RateLimit:     *rateLimit,
		RateBurst:     *rateBurst,
	})

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}
	if *secretKey == "dev-secret" {
		slog.Warn("Using the default secret key; set --secret-key in production")
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
