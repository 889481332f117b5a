package server

import (
	"net/http"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
	"github.com/MeKo-Tech/tokenprinter/internal/settings"
)

// conversionRunner is the part of convert.Converter the server needs.
type conversionRunner interface {
	Run(req convert.Request) convert.Result
}

// settingsStore persists default folders between requests.
type settingsStore interface {
	Load() (settings.Settings, error)
	Update(fn func(*settings.Settings)) (settings.Settings, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	corsOrigin   string
	version      string
	maxBodyBytes int64
	options      convert.Options
	settings     settingsStore
	newConverter func(convert.Options) conversionRunner
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	Version    string
	// Convert is used for every conversion. Progress is replaced per request.
	Convert  convert.Options
	Settings *settings.Store
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is written for requests that fail before a conversion starts.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SettingsUpdate is the body of PUT /settings. Nil fields are left unchanged.
type SettingsUpdate struct {
	DefaultInput  *string `json:"default_input"`
	DefaultOutput *string `json:"default_output"`
}

const defaultMaxBodyBytes = 1 << 20

// NewServer creates a new conversion server instance.
func NewServer(config Config) *Server {
	s := &Server{
		corsOrigin:   config.CORSOrigin,
		version:      config.Version,
		maxBodyBytes: defaultMaxBodyBytes,
		options:      config.Convert,
		newConverter: func(opts convert.Options) conversionRunner { return convert.New(opts) },
	}
	if config.Settings != nil {
		s.settings = config.Settings
	}
	return s
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", instrument("/health", s.corsMiddleware(s.healthHandler)))
	mux.HandleFunc("/settings", instrument("/settings", s.corsMiddleware(s.settingsHandler)))
	mux.HandleFunc("/convert", instrument("/convert", s.corsMiddleware(s.convertHandler)))
	mux.HandleFunc("/ws", s.convertWebSocketHandler)
	mux.Handle("/metrics", metricsHandler())
}
