package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/zombor/statement-parser/internal/pipeline"
	"github.com/zombor/statement-parser/internal/statement"
)

// maxFormSize bounds multipart uploads; scanned statements can be large
const maxFormSize = int64(50 << 20) // 50MB

// Messages shown to the user after a failed upload
const (
	msgNoFilePart    = "No file part"
	msgNoSelection   = "No selected file"
	msgTooLarge      = "File is too large. Maximum size is 50MB."
	msgReadError     = "Error reading file. Please try again."
	msgUnknownFormat = "Unsupported or unknown statement format. Preview of extracted text is printed in your console."
	msgParseError    = "Error processing statement. Please try again."
)

// errUpload is an upload problem that should be reported to the user
type errUpload struct {
	message string
	status  int
}

func (e *errUpload) Error() string {
	return e.message
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// readUpload pulls the "file" part out of a multipart request
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			return "", nil, &errUpload{msgTooLarge, http.StatusRequestEntityTooLarge}
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return "", nil, &errUpload{msgNoFilePart, http.StatusBadRequest}
		}
		return "", nil, &errUpload{"Error parsing form", http.StatusBadRequest}
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		// A file input submitted without a selection arrives as a plain value
		if _, ok := r.MultipartForm.Value["file"]; ok {
			return "", nil, &errUpload{msgNoSelection, http.StatusBadRequest}
		}
		return "", nil, &errUpload{msgNoFilePart, http.StatusBadRequest}
	}
	defer f.Close()

	if header.Filename == "" {
		return "", nil, &errUpload{msgNoSelection, http.StatusBadRequest}
	}
	if header.Size > maxFormSize {
		return "", nil, &errUpload{msgTooLarge, http.StatusRequestEntityTooLarge}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		return "", nil, &errUpload{msgReadError, http.StatusInternalServerError}
	}
	return header.Filename, data, nil
}

// handleIndex serves the upload form with any pending flash messages
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, uploadTemplate, map[string]interface{}{
		"Messages": s.popFlashes(w, r),
	})
}

// handleUpload parses an uploaded statement from the HTML form
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(w, r)
	if err != nil {
		s.flashAndReturn(w, r, err.Error())
		return
	}

	fields, err := s.service.Parse(filename, data)
	if err != nil {
		s.flashAndReturn(w, r, parseFailureMessage(filename, err))
		return
	}

	payload, err := json.Marshal(fields.Map())
	if err != nil {
		slog.Error("Error encoding fields", "error", err)
		s.flashAndReturn(w, r, msgParseError)
		return
	}
	http.Redirect(w, r, "/result?data="+url.QueryEscape(string(payload)), http.StatusSeeOther)
}

// handleResult renders a field record passed in the query string
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get("data")
	if data == "" {
		http.Error(w, "No data to show.", http.StatusBadRequest)
		return
	}

	var fields statement.Fields
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		http.Error(w, fmt.Sprintf("Error decoding data: %v", err), http.StatusInternalServerError)
		return
	}

	render(w, http.StatusOK, resultTemplate, map[string]interface{}{
		"Entries": fields.Entries(),
	})
}

// handleParseStatement parses an uploaded statement and returns JSON
func (s *Server) handleParseStatement(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	filename, data, err := readUpload(w, r)
	if err != nil {
		var uploadErr *errUpload
		status := http.StatusBadRequest
		if errors.As(err, &uploadErr) {
			status = uploadErr.status
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	fields, err := s.service.Parse(filename, data)
	var classErr *pipeline.ClassificationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, fields.Map())
	case errors.As(err, &classErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":   msgUnknownFormat,
			"preview": classErr.Preview(),
		})
	case errors.Is(err, ErrTooManyPages):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	default:
		slog.Error("Error processing statement", "filename", filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgParseError})
	}
}

// parseFailureMessage maps a Service.Parse error to a flash message
func parseFailureMessage(filename string, err error) string {
	var classErr *pipeline.ClassificationError
	switch {
	case errors.As(err, &classErr):
		slog.Info("Extracted text preview", "filename", filename, "preview", classErr.Preview())
		return msgUnknownFormat
	case errors.Is(err, ErrTooManyPages):
		return err.Error()
	default:
		slog.Error("Error processing statement", "filename", filename, "error", err)
		return msgParseError
	}
}

// flashAndReturn stores a message for the next page view and sends the
// browser back to the upload form
func (s *Server) flashAndReturn(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := s.sessions.Get(r, sessionName)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		slog.Warn("Failed to save session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// popFlashes returns and clears pending flash messages
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := s.sessions.Get(r, sessionName)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		slog.Warn("Failed to save session", "error", err)
	}

	messages := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
