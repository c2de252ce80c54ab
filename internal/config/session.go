package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fenilsonani/dupsweep/internal/models"
)

// SavedSession is a finished scan persisted for later review or cleanup
type SavedSession struct {
	ID         string                  `json:"id"`
	Timestamp  time.Time               `json:"timestamp"`
	Status     string                  `json:"status"`
	Categories []SavedCategory         `json:"categories"`
	Groups     []models.DuplicateGroup `json:"groups"`
	Notes      string                  `json:"notes,omitempty"`
}

// SavedCategory is the stored outcome of one category
type SavedCategory struct {
	Category models.Category `json:"category"`
	Status   string          `json:"status"`
	Groups   int             `json:"groups"`
	Error    string          `json:"error,omitempty"`
}

// Redundant returns every item except the first of each group
func (s *SavedSession) Redundant() []models.Item {
	var items []models.Item
	for _, g := range s.Groups {
		items = append(items, g.Redundant()...)
	}
	return items
}

// SessionManager manages session persistence
type SessionManager struct {
	sessionsDir string
}

// NewSessionManager creates a session manager rooted at dir. An empty dir
// selects ~/.config/dupsweep/sessions.
func NewSessionManager(dir string) (*SessionManager, error) {
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(configDir, "sessions")
	}

	// Create sessions directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &SessionManager{
		sessionsDir: dir,
	}, nil
}

// Save saves a session to disk
func (sm *SessionManager) Save(session *SavedSession) error {
	if session.ID == "" {
		return fmt.Errorf("session has no id")
	}

	// Set timestamp if not set
	if session.Timestamp.IsZero() {
		session.Timestamp = time.Now()
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(sm.path(session.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load loads a session from disk by ID
func (sm *SessionManager) Load(id string) (*SavedSession, error) {
	data, err := os.ReadFile(sm.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session SavedSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// List returns all saved sessions, newest first
func (sm *SessionManager) List() ([]*SavedSession, error) {
	entries, err := os.ReadDir(sm.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []*SavedSession
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		session, err := sm.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Skip invalid sessions
			continue
		}

		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})

	return sessions, nil
}

// Delete deletes a session by ID
func (sm *SessionManager) Delete(id string) error {
	if err := os.Remove(sm.path(id)); err != nil {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// GetLatest returns the most recent session
func (sm *SessionManager) GetLatest() (*SavedSession, error) {
	sessions, err := sm.List()
	if err != nil {
		return nil, err
	}

	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions found")
	}

	return sessions[0], nil
}

// CleanOldSessions removes sessions older than specified days
func (sm *SessionManager) CleanOldSessions(days int) error {
	sessions, err := sm.List()
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -days)

	for _, session := range sessions {
		if session.Timestamp.Before(cutoff) {
			if err := sm.Delete(session.ID); err != nil {
				// Keep going; a stale file is harmless
				continue
			}
		}
	}

	return nil
}

// GetSessionsDir returns the sessions directory path
func (sm *SessionManager) GetSessionsDir() string {
	return sm.sessionsDir
}

func (sm *SessionManager) path(id string) string {
	return filepath.Join(sm.sessionsDir, filepath.Base(id)+".json")
}
