package upload

import (
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const sessionName = "statement-parser"

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Config holds the process-wide settings the server needs
type Config struct {
	BasicAuth BasicAuth
	// SecretKey signs the session cookie that carries flash messages
	SecretKey string
	// SecureCookies marks the session cookie Secure; only set it behind TLS
	SecureCookies bool
	// RateLimit caps uploads per second; 0 disables limiting
	RateLimit float64
	RateBurst int
	// Gatherer backs /metrics; defaults to the global registry
	Gatherer prometheus.Gatherer
}

// Server handles HTTP requests for statement uploads
type Server struct {
	service   *Service
	basicAuth BasicAuth
	sessions  sessions.Store
	limiter   *rate.Limiter
	metrics   http.Handler
	mux       *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, cfg Config) *Server {
	return NewServerWithMux(service, cfg, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, cfg Config, mux *http.ServeMux) *Server {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	store := sessions.NewCookieStore([]byte(cfg.SecretKey))
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	// The cookie store defaults to Secure, which plain HTTP clients never send back
	store.Options.Secure = cfg.SecureCookies

	s := &Server{
		service:   service,
		basicAuth: cfg.BasicAuth,
		sessions:  store,
		metrics:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		mux:       mux,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(credentials[0]), []byte(s.basicAuth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(credentials[1]), []byte(s.basicAuth.Password)) == 1
	return userOK && passOK
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Statement Parser"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// rateLimit rejects requests beyond the configured upload rate
func (s *Server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			slog.Warn("Upload rate limit exceeded", "remote", r.RemoteAddr)
			corsError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /metrics", s.requireAuth(s.metrics.ServeHTTP))

	s.mux.HandleFunc("POST /api/statements", s.requireAuth(s.rateLimit(s.handleParseStatement)))

	s.mux.HandleFunc("GET /result", s.requireAuth(s.handleResult))
	s.mux.HandleFunc("POST /{$}", s.requireAuth(s.rateLimit(s.handleUpload)))
	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.corsMiddleware(s.mux))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
