package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Flow drives the web OAuth2 authorization-code flow. The credentials
// file path is explicit configuration; no candidate locations are probed.
type Flow struct {
	CredentialsPath string
	RedirectURL     string
	Scopes          []string

	config *oauth2.Config
}

// NewFlow creates a flow from the OAuth client credentials JSON
func NewFlow(credentialsPath, redirectURL string, scopes ...string) (*Flow, error) {
	f := &Flow{
		CredentialsPath: credentialsPath,
		RedirectURL:     redirectURL,
		Scopes:          scopes,
	}

	config, err := f.loadCredentials()
	if err != nil {
		return nil, err
	}
	config.RedirectURL = redirectURL
	f.config = config

	return f, nil
}

// loadCredentials loads OAuth2 credentials from file
func (f *Flow) loadCredentials() (*oauth2.Config, error) {
	data, err := os.ReadFile(f.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(data, f.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("could not parse credentials file: %w", err)
	}

	return config, nil
}

// AuthCodeURL builds the authorization URL for the given CSRF state.
// Offline access and consent prompt ensure a refresh token is granted.
func (f *Flow) AuthCodeURL(state string) string {
	return f.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades an authorization code for a token
func (f *Flow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("could not exchange authorization code for token: %w", err)
	}
	return token, nil
}

// SaveTokenFunc persists a refreshed token
type SaveTokenFunc func(*oauth2.Token) error

// NewGmailService builds a Gmail service authorized by the given token.
// When the underlying token source refreshes the token, the refreshed
// value is handed to save (if non-nil) so the caller can persist it.
func (f *Flow) NewGmailService(ctx context.Context, token *oauth2.Token, save SaveTokenFunc) (*gmail.Service, error) {
	if token == nil {
		return nil, fmt.Errorf("nil token")
	}

	var src oauth2.TokenSource = f.config.TokenSource(ctx, token)
	if save != nil {
		src = &savingTokenSource{src: src, last: token, save: save}
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("could not create Gmail service: %w", err)
	}

	return service, nil
}

// savingTokenSource persists tokens whenever the wrapped source rotates them
type savingTokenSource struct {
	src  oauth2.TokenSource
	last *oauth2.Token
	save SaveTokenFunc
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || token.AccessToken != s.last.AccessToken {
		s.last = token
		if err := s.save(token); err != nil {
			return nil, fmt.Errorf("could not save refreshed token: %w", err)
		}
	}
	return token, nil
}

// EncodeToken serializes a token for storage
func EncodeToken(token *oauth2.Token) (string, error) {
	if token == nil {
		return "", fmt.Errorf("nil token")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("could not encode token: %w", err)
	}
	return string(data), nil
}

// DecodeToken deserializes a stored token
func DecodeToken(raw string) (*oauth2.Token, error) {
	token := &oauth2.Token{}
	if err := json.Unmarshal([]byte(raw), token); err != nil {
		return nil, fmt.Errorf("could not decode token: %w", err)
	}
	return token, nil
}
