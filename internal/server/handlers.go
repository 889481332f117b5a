package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
	"github.com/MeKo-Tech/tokenprinter/internal/images"
	"github.com/MeKo-Tech/tokenprinter/internal/settings"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// convertHandler runs one conversion synchronously and returns its result.
func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.requireJSON(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var req convert.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res := s.runConversion("http", req, nil)
	writeJSON(w, statusForResult(res), res)
}

// runConversion fills blank folders from the stored defaults, runs the
// converter and records metrics. Progress is logged at debug level and also
// forwarded to progress when it is set.
func (s *Server) runConversion(source string, req convert.Request, progress convert.ProgressCallback) convert.Result {
	req = s.withDefaults(req)

	sinks := convert.NewMultiProgressCallback(convert.NewLogProgressCallback(slog.Default(), slog.LevelDebug))
	if progress != nil {
		sinks.Add(progress)
	}

	opts := s.options
	opts.Progress = sinks
	start := time.Now()
	res := s.newConverter(opts).Run(req)
	recordConversion(source, res, time.Since(start))

	if res.Success {
		slog.Info("Conversion finished", "source", source, "count", res.Count, "path", res.OutputPath)
	} else {
		slog.Warn("Conversion failed", "source", source, "error", res.Message)
	}
	return res
}

func (s *Server) withDefaults(req convert.Request) convert.Request {
	if s.settings == nil {
		return req
	}
	st, err := s.settings.Load()
	if err != nil {
		slog.Warn("Ignoring unreadable settings", "error", err)
	}
	return req.WithDefaults(st.DefaultInput, st.DefaultOutput)
}

// settingsHandler reads or updates the stored default folders.
func (s *Server) settingsHandler(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		s.writeErrorResponse(w, "Settings store not configured", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		st, err := s.settings.Load()
		if err != nil {
			slog.Warn("Settings file unreadable, returning defaults", "error", err)
		}
		writeJSON(w, http.StatusOK, st)
	case http.MethodPut:
		if !s.requireJSON(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		var upd SettingsUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			s.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		st, err := s.settings.Update(func(cur *settings.Settings) {
			if upd.DefaultInput != nil {
				cur.DefaultInput = *upd.DefaultInput
			}
			if upd.DefaultOutput != nil {
				cur.DefaultOutput = *upd.DefaultOutput
			}
		})
		if err != nil {
			s.writeErrorResponse(w, "Failed to save settings: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, st)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// statusForResult maps a conversion outcome to an HTTP status.
func statusForResult(res convert.Result) int {
	if res.Success {
		return http.StatusOK
	}
	var decodeErr *images.DecodeError
	switch {
	case convert.IsUserError(res.Err):
		return http.StatusBadRequest
	case errors.As(res.Err, &decodeErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requireJSON rejects bodies that are not application/json. Browsers send
// text/plain cross-origin without a preflight, so this keeps pages from
// triggering writes through simple requests.
func (s *Server) requireJSON(w http.ResponseWriter, r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		s.writeErrorResponse(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	return true
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Log error, but can't send another response
		slog.Error("Error encoding response", "error", err)
	}
}
