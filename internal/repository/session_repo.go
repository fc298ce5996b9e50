package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/liliang-cn/chaosagent/internal/domain"
)

// SessionRepository handles session persistence
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.Title, session.CreatedAt, session.UpdatedAt)

	return err
}

// Get retrieves a session by ID, nil when absent
func (r *SessionRepository) Get(id string) (*domain.Session, error) {
	session := &domain.Session{}

	err := r.db.QueryRow(`
		SELECT id, title, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// List returns all sessions, most recently active first
func (r *SessionRepository) List() ([]*domain.Session, error) {
	rows, err := r.db.Query(`
		SELECT id, title, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session := &domain.Session{}
		if err := rows.Scan(&session.ID, &session.Title,
			&session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Touch updates a session's updated_at timestamp
func (r *SessionRepository) Touch(id string) error {
	_, err := r.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// SetTitleIfEmpty derives the session title from its first user turn.
func (r *SessionRepository) SetTitleIfEmpty(id, title string) error {
	_, err := r.db.Exec(`UPDATE sessions SET title = ? WHERE id = ? AND title = ''`, title, id)
	return err
}

// Delete removes a session and, via cascade, its messages
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// CreateMessage appends a message to a session
func (r *SessionRepository) CreateMessage(message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	sourcesJSON, _ := json.Marshal(message.Sources)

	_, err := r.db.Exec(`
		INSERT INTO messages (id, session_id, role, content, intent, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, message.ID, message.SessionID, message.Role, message.Content,
		message.Intent, string(sourcesJSON), message.CreatedAt)

	return err
}

// GetMessages retrieves all messages for a session in append order
func (r *SessionRepository) GetMessages(sessionID string) ([]*domain.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, role, content, intent, sources, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		var intent, sourcesJSON sql.NullString

		if err := rows.Scan(&message.ID, &message.SessionID, &message.Role,
			&message.Content, &intent, &sourcesJSON, &message.CreatedAt); err != nil {
			return nil, err
		}

		if intent.Valid {
			message.Intent = intent.String
		}
		if sourcesJSON.Valid && sourcesJSON.String != "" {
			json.Unmarshal([]byte(sourcesJSON.String), &message.Sources)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// CountSessions returns the total number of sessions
func (r *SessionRepository) CountSessions() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}

// CountMessages returns the total number of messages
func (r *SessionRepository) CountMessages() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
