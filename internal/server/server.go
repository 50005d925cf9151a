package server

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ajramos/gmail-web/internal/config"
	"github.com/ajramos/gmail-web/internal/db"
	"github.com/ajramos/gmail-web/pkg/auth"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Server holds the HTTP surface of the application
type Server struct {
	cfg      *config.Config
	flow     *auth.Flow
	sessions *db.SessionStore
	searches []config.SavedSearch
	log      *slog.Logger
	mux      *http.ServeMux
}

// New wires the handlers onto a fresh mux
func New(cfg *config.Config, flow *auth.Flow, sessions *db.SessionStore, searches []config.SavedSearch, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		flow:     flow,
		sessions: sessions,
		searches: searches,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/callback", s.handleCallback)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET /inbox", s.handleInbox)
	mux.HandleFunc("GET /inbox/export.csv", s.handleExport)
	mux.HandleFunc("GET /message/{id}", s.handleMessage)
	s.mux = mux

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.mux
}
