// Package session keeps player credentials for rejoin UX. The bearer token
// lives only in memory with a bounded lifetime; only non-sensitive metadata
// is ever persisted.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PlayerAuth is the in-memory credential record. It is never persisted.
type PlayerAuth struct {
	PlayerID  string
	Token     string
	ExpiresAt time.Time
}

// PlayerMetadata is the non-sensitive record persisted for rejoin UX.
// It deliberately has no token field.
type PlayerMetadata struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	SessionCode string `json:"session_code"`
	Team        string `json:"team,omitempty"`
}

// MetadataStore persists PlayerMetadata between runs.
type MetadataStore interface {
	Load() (PlayerMetadata, bool)
	Save(meta PlayerMetadata) error
	Delete() error
}

// Store holds one player's session state: credentials in memory only,
// metadata mirrored to a MetadataStore.
type Store struct {
	meta   MetadataStore
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu   sync.Mutex
	auth *PlayerAuth
}

// NewStore creates a Store with the given token lifetime. A nil meta
// disables persistence.
func NewStore(meta MetadataStore, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		meta:   meta,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Put records a player's credentials in memory and persists the metadata.
func (s *Store) Put(auth PlayerAuth, meta PlayerMetadata) {
	s.mu.Lock()
	auth.ExpiresAt = s.now().Add(s.ttl)
	s.auth = &auth
	s.mu.Unlock()

	if s.meta != nil {
		if err := s.meta.Save(meta); err != nil {
			s.logger.Debug().Err(err).Msg("metadata save failed")
		}
	}
}

// Auth returns the stored credentials. Past expiry it reports no session
// and clears all backing state, including persisted metadata.
func (s *Store) Auth() (PlayerAuth, bool) {
	s.mu.Lock()
	auth := s.auth
	expired := auth != nil && !s.now().Before(auth.ExpiresAt)
	if expired {
		s.auth = nil
	}
	s.mu.Unlock()

	if expired {
		s.clearMeta()
		return PlayerAuth{}, false
	}
	if auth == nil {
		return PlayerAuth{}, false
	}
	return *auth, true
}

// Metadata returns the persisted rejoin metadata, if any.
func (s *Store) Metadata() (PlayerMetadata, bool) {
	if s.meta == nil {
		return PlayerMetadata{}, false
	}
	return s.meta.Load()
}

// Clear drops both the in-memory credentials and the persisted metadata.
func (s *Store) Clear() {
	s.mu.Lock()
	s.auth = nil
	s.mu.Unlock()
	s.clearMeta()
}

func (s *Store) clearMeta() {
	if s.meta == nil {
		return
	}
	if err := s.meta.Delete(); err != nil {
		s.logger.Debug().Err(err).Msg("metadata delete failed")
	}
}

// FileMetadataStore persists metadata as a JSON file.
type FileMetadataStore struct {
	path string
}

// NewFileMetadataStore stores metadata at the given path.
func NewFileMetadataStore(path string) *FileMetadataStore {
	return &FileMetadataStore{path: path}
}

// Load reads the metadata file; a missing or unreadable file means no
// stored session.
func (f *FileMetadataStore) Load() (PlayerMetadata, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return PlayerMetadata{}, false
	}
	var meta PlayerMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return PlayerMetadata{}, false
	}
	return meta, true
}

// Save writes the metadata file, creating parent directories as needed.
func (f *FileMetadataStore) Save(meta PlayerMetadata) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Delete removes the metadata file; a missing file is not an error.
func (f *FileMetadataStore) Delete() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
