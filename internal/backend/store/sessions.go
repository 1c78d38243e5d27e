package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

const tokenBytes = 32

// DefaultSessionTTL is how long an issued token stays valid.
const DefaultSessionTTL = 90 * 24 * time.Hour

// SessionStore issues and resolves bearer tokens.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// EnsureUser creates the user row if it does not exist yet.
func (s *SessionStore) EnsureUser(id, name string) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		id, name, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// CreateToken issues a fresh bearer token for the user.
func (s *SessionStore) CreateToken(userID string, ttl time.Duration) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	now := time.Now().UTC()
	if _, err := s.db.Exec(
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		token, userID, now, now.Add(ttl),
	); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to its user id. Returns "" for unknown or
// expired tokens.
func (s *SessionStore) Lookup(token string) (string, error) {
	var userID string
	var expiresAt time.Time
	err := s.db.QueryRow(
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token,
	).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if time.Now().UTC().After(expiresAt) {
		return "", nil
	}
	return userID, nil
}

// DeleteExpired prunes dead sessions. Run it on a ticker.
func (s *SessionStore) DeleteExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
