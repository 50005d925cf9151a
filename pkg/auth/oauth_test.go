package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

const testCredentialsJSON = `{
  "web": {
    "client_id": "client-id.apps.googleusercontent.com",
    "client_secret": "secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost:8080/auth/callback"]
  }
}`

func writeTestCredentials(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	assert.NoError(t, os.WriteFile(path, []byte(testCredentialsJSON), 0600))
	return path
}

func TestNewFlow(t *testing.T) {
	path := writeTestCredentials(t)

	flow, err := NewFlow(path, "http://localhost:8080/auth/callback",
		"https://www.googleapis.com/auth/gmail.readonly")

	assert.NoError(t, err)
	assert.NotNil(t, flow)
	assert.Equal(t, path, flow.CredentialsPath)
	assert.Equal(t, "http://localhost:8080/auth/callback", flow.RedirectURL)
}

func TestNewFlow_MissingCredentials(t *testing.T) {
	flow, err := NewFlow(filepath.Join(t.TempDir(), "absent.json"), "http://localhost/cb")

	assert.Error(t, err)
	assert.Nil(t, flow)
	assert.Contains(t, err.Error(), "could not read credentials file")
}

func TestNewFlow_MalformedCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	flow, err := NewFlow(path, "http://localhost/cb")

	assert.Error(t, err)
	assert.Nil(t, flow)
	assert.Contains(t, err.Error(), "could not parse credentials file")
}

func TestFlow_AuthCodeURL(t *testing.T) {
	flow, err := NewFlow(writeTestCredentials(t), "http://localhost:8080/auth/callback",
		"https://www.googleapis.com/auth/gmail.readonly")
	assert.NoError(t, err)

	url := flow.AuthCodeURL("state-token-123")

	assert.Contains(t, url, "state=state-token-123")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "prompt=consent")
	assert.Contains(t, url, "redirect_uri=")
}

func TestFlow_NewGmailService_NilToken(t *testing.T) {
	flow, err := NewFlow(writeTestCredentials(t), "http://localhost/cb")
	assert.NoError(t, err)

	service, err := flow.NewGmailService(context.Background(), nil, nil)

	assert.Error(t, err)
	assert.Nil(t, service)
}

func TestEncodeDecodeToken_RoundTrip(t *testing.T) {
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}

	raw, err := EncodeToken(token)
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)

	decoded, err := DecodeToken(raw)
	assert.NoError(t, err)
	assert.Equal(t, token.AccessToken, decoded.AccessToken)
	assert.Equal(t, token.RefreshToken, decoded.RefreshToken)
	assert.Equal(t, token.TokenType, decoded.TokenType)
	assert.True(t, token.Expiry.Equal(decoded.Expiry))
}

func TestEncodeToken_NilToken(t *testing.T) {
	raw, err := EncodeToken(nil)
	assert.Error(t, err)
	assert.Empty(t, raw)
}

func TestDecodeToken_Malformed(t *testing.T) {
	token, err := DecodeToken("{broken")
	assert.Error(t, err)
	assert.Nil(t, token)
}

// fakeTokenSource rotates once to a refreshed token
type fakeTokenSource struct {
	tokens []*oauth2.Token
	calls  int
}

func (f *fakeTokenSource) Token() (*oauth2.Token, error) {
	if f.calls >= len(f.tokens) {
		return f.tokens[len(f.tokens)-1], nil
	}
	tok := f.tokens[f.calls]
	f.calls++
	return tok, nil
}

func TestSavingTokenSource_PersistsRotatedToken(t *testing.T) {
	initial := &oauth2.Token{AccessToken: "one"}
	refreshed := &oauth2.Token{AccessToken: "two"}

	var saved []*oauth2.Token
	src := &savingTokenSource{
		src:  &fakeTokenSource{tokens: []*oauth2.Token{initial, refreshed}},
		last: initial,
		save: func(tok *oauth2.Token) error {
			saved = append(saved, tok)
			return nil
		},
	}

	// First call returns the unchanged token; no save
	tok, err := src.Token()
	assert.NoError(t, err)
	assert.Equal(t, "one", tok.AccessToken)
	assert.Empty(t, saved)

	// Second call rotates; save fires once
	tok, err = src.Token()
	assert.NoError(t, err)
	assert.Equal(t, "two", tok.AccessToken)
	assert.Len(t, saved, 1)
	assert.Equal(t, "two", saved[0].AccessToken)
}

func TestSavingTokenSource_SaveFailure(t *testing.T) {
	src := &savingTokenSource{
		src:  &fakeTokenSource{tokens: []*oauth2.Token{{AccessToken: "fresh"}}},
		last: &oauth2.Token{AccessToken: "stale"},
		save: func(*oauth2.Token) error { return fmt.Errorf("disk full") },
	}

	tok, err := src.Token()
	assert.Error(t, err)
	assert.Nil(t, tok)
	assert.Contains(t, err.Error(), "could not save refreshed token")
}
