package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SessionStore handles browser session and OAuth token persistence.
// A session row starts with only a pending OAuth state; the token is
// attached once the authorization callback completes.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new session store from a base store
func NewSessionStore(store *Store) *SessionStore {
	if store == nil {
		return nil
	}
	return &SessionStore{db: store.DB()}
}

// Create inserts a new session with a pending OAuth state
func (ss *SessionStore) Create(ctx context.Context, sessionID, state string) error {
	if ss == nil || ss.db == nil {
		return fmt.Errorf("session store not initialized")
	}
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("empty session id")
	}
	now := time.Now().Unix()
	_, err := ss.db.ExecContext(ctx, `INSERT INTO sessions(id, oauth_state, created_at, updated_at)
VALUES(?,?,?,?)
ON CONFLICT(id) DO UPDATE SET oauth_state=excluded.oauth_state, updated_at=excluded.updated_at;
`, sessionID, state, now, now)
	return err
}

// State returns the pending OAuth state for a session, if any
func (ss *SessionStore) State(ctx context.Context, sessionID string) (string, bool, error) {
	if ss == nil || ss.db == nil {
		return "", false, fmt.Errorf("session store not initialized")
	}
	var state string
	err := ss.db.QueryRowContext(ctx, `SELECT oauth_state FROM sessions WHERE id=?`, sessionID).Scan(&state)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return state, state != "", nil
}

// SaveToken attaches a serialized OAuth token to a session and clears
// the pending state
func (ss *SessionStore) SaveToken(ctx context.Context, sessionID, tokenJSON string) error {
	if ss == nil || ss.db == nil {
		return fmt.Errorf("session store not initialized")
	}
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(tokenJSON) == "" {
		return fmt.Errorf("invalid token inputs")
	}
	res, err := ss.db.ExecContext(ctx, `UPDATE sessions SET token_json=?, oauth_state='', updated_at=? WHERE id=?`,
		tokenJSON, time.Now().Unix(), sessionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("unknown session %s", sessionID)
	}
	return nil
}

// Token returns the serialized OAuth token for a session if present
func (ss *SessionStore) Token(ctx context.Context, sessionID string) (string, bool, error) {
	if ss == nil || ss.db == nil {
		return "", false, fmt.Errorf("session store not initialized")
	}
	var token string
	err := ss.db.QueryRowContext(ctx, `SELECT token_json FROM sessions WHERE id=?`, sessionID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

// Delete removes a session and its stored token
func (ss *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if ss == nil || ss.db == nil {
		return fmt.Errorf("session store not initialized")
	}
	_, err := ss.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, sessionID)
	return err
}

// PurgeOlderThan removes sessions not updated since the cutoff.
// Returns the number of sessions removed.
func (ss *SessionStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if ss == nil || ss.db == nil {
		return 0, fmt.Errorf("session store not initialized")
	}
	res, err := ss.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
