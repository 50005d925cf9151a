package server

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	gmailwrap "github.com/ajramos/gmail-web/internal/gmail"
	"github.com/ajramos/gmail-web/pkg/auth"
)

// sessionID returns the session cookie value, if any
func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(s.cfg.Server.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// newSessionID issues a fresh opaque session identifier
func newSessionID() string {
	return uuid.NewString()
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Server.CookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Server.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// gmailClient builds an authorized Gmail client for the request's
// session. ok is false when the session has no stored token; refreshed
// tokens are written back to the session row.
func (s *Server) gmailClient(r *http.Request) (*gmailwrap.Client, bool, error) {
	sessionID := s.sessionID(r)
	if sessionID == "" {
		return nil, false, nil
	}

	raw, ok, err := s.sessions.Token(r.Context(), sessionID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	token, err := auth.DecodeToken(raw)
	if err != nil {
		return nil, false, err
	}

	ctx := r.Context()
	save := func(tok *oauth2.Token) error {
		encoded, err := auth.EncodeToken(tok)
		if err != nil {
			return err
		}
		return s.sessions.SaveToken(ctx, sessionID, encoded)
	}

	service, err := s.flow.NewGmailService(ctx, token, save)
	if err != nil {
		return nil, false, err
	}

	return gmailwrap.NewClient(service), true, nil
}
