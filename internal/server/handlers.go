package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ajramos/gmail-web/internal/config"
	"github.com/ajramos/gmail-web/internal/export"
	gmailwrap "github.com/ajramos/gmail-web/internal/gmail"
	"github.com/ajramos/gmail-web/internal/render"
	"github.com/ajramos/gmail-web/pkg/auth"
)

// inboxPageSize is how many messages the inbox view shows
const inboxPageSize = 25

// metadataHeaders are the only headers the inbox listing needs
var metadataHeaders = []string{"From", "Subject", "Date"}

type inboxData struct {
	NeedsLogin bool
	Rows       []render.Row
	Query      string
	Searches   []config.SavedSearch
}

type messageData struct {
	ID      string
	Subject string
	From    string
	To      string
	Cc      string
	Date    string
	Labels  []string
	Body    string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/inbox", http.StatusFound)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(r)
	if sessionID == "" {
		sessionID = newSessionID()
	}

	state := uuid.NewString()
	if err := s.sessions.Create(r.Context(), sessionID, state); err != nil {
		s.log.Error("could not create session", "error", err)
		http.Error(w, "could not start login", http.StatusInternalServerError)
		return
	}

	s.setSessionCookie(w, sessionID)
	http.Redirect(w, r, s.flow.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(r)
	if sessionID == "" {
		http.Error(w, "missing OAuth session", http.StatusBadRequest)
		return
	}

	state, ok, err := s.sessions.State(r.Context(), sessionID)
	if err != nil {
		s.log.Error("could not load OAuth state", "error", err)
		http.Error(w, "could not complete login", http.StatusInternalServerError)
		return
	}
	if !ok || state != r.URL.Query().Get("state") {
		http.Error(w, "OAuth state mismatch", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "authorization code not received", http.StatusBadRequest)
		return
	}

	token, err := s.flow.Exchange(r.Context(), code)
	if err != nil {
		s.log.Error("token exchange failed", "error", err)
		http.Error(w, "could not obtain token", http.StatusBadRequest)
		return
	}

	encoded, err := auth.EncodeToken(token)
	if err != nil {
		s.log.Error("could not encode token", "error", err)
		http.Error(w, "could not complete login", http.StatusInternalServerError)
		return
	}
	if err := s.sessions.SaveToken(r.Context(), sessionID, encoded); err != nil {
		s.log.Error("could not persist token", "error", err)
		http.Error(w, "could not complete login", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/inbox", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID := s.sessionID(r); sessionID != "" {
		if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
			s.log.Warn("could not delete session", "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/inbox", http.StatusFound)
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	client, ok, err := s.gmailClient(r)
	if err != nil {
		s.log.Error("could not build Gmail client", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		s.renderPage(w, "inbox.html", inboxData{NeedsLogin: true, Query: query, Searches: s.searches})
		return
	}

	refs, _, err := client.ListMessagesPage(r.Context(), query, inboxPageSize, "")
	if err != nil {
		s.log.Error("could not list inbox", "error", err)
		http.Error(w, "could not load inbox", http.StatusBadGateway)
		return
	}

	rows := make([]render.Row, 0, len(refs))
	for _, ref := range refs {
		msg, err := client.GetMessageMetadata(r.Context(), ref.Id, metadataHeaders...)
		if err != nil {
			s.log.Warn("skipping message in listing", "id", ref.Id, "error", err)
			continue
		}
		rows = append(rows, render.AssembleRow(msg))
	}

	s.renderPage(w, "inbox.html", inboxData{Rows: rows, Query: query, Searches: s.searches})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	client, ok, err := s.gmailClient(r)
	if err != nil {
		s.log.Error("could not build Gmail client", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	id := r.PathValue("id")
	msg, err := client.GetMessage(r.Context(), id)
	if err != nil {
		// Surface provider failures on a single message as not found
		s.log.Warn("could not fetch message", "id", id, "error", err)
		http.NotFound(w, r)
		return
	}

	headers := gmailwrap.MessageHeaders(msg)
	body := gmailwrap.ExtractBody(msg.Payload)

	text := body.Text
	if text == "" {
		text = render.HTMLToText(body.HTML)
	}

	s.renderPage(w, "message.html", messageData{
		ID:      msg.Id,
		Subject: headers.Get("Subject"),
		From:    headers.Get("From"),
		To:      headers.Get("To"),
		Cc:      headers.Get("Cc"),
		Date:    headers.Get("Date"),
		Labels:  s.labelNames(r, client, msg.LabelIds),
		Body:    render.NormalizeNewlines(text),
	})
}

// labelNames resolves label IDs to their display names. Resolution is
// best-effort: on lookup failure the raw IDs are shown.
func (s *Server) labelNames(r *http.Request, client *gmailwrap.Client, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	labels, err := client.ListLabels(r.Context())
	if err != nil {
		s.log.Warn("could not list labels", "error", err)
		return ids
	}

	byID := make(map[string]string, len(labels))
	for _, l := range labels {
		if l != nil && l.Name != "" {
			byID[l.Id] = l.Name
		}
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	client, ok, err := s.gmailClient(r)
	if err != nil {
		s.log.Error("could not build Gmail client", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	query := r.URL.Query().Get("q")
	maxRows := export.ParseMaxRows(r.URL.Query().Get("max"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inbox.csv"`)

	exporter := export.NewExporter(client, s.log)
	if err := exporter.Export(r.Context(), w, query, maxRows); err != nil {
		// Headers are already out; the download is truncated
		s.log.Error("export aborted", "query", query, "max", maxRows, "error", err)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("template render failed", "template", name, "error", err)
	}
}
