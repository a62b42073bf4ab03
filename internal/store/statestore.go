// Package store persists draft monitoring state so a restarted process can
// resume mid-draft without replaying from pick one.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/adamrubinsky/draft-copilot/internal/models"
)

const stateFile = "draft_state.json"

// StateStore reads and writes draft snapshots under a data directory.
type StateStore struct {
	path string
}

// New builds a store rooted at dataDir.
func New(dataDir string) *StateStore {
	return &StateStore{path: filepath.Join(dataDir, stateFile)}
}

// Save writes a snapshot atomically via a temp file rename, so a crash
// mid-write never leaves a truncated state file.
func (s *StateStore) Save(snapshot models.DraftStateSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal draft state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write draft state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace draft state: %w", err)
	}
	return nil
}

// Load returns the saved snapshot for a draft, or nil when none exists,
// the file is unreadable, or the snapshot belongs to a different draft.
func (s *StateStore) Load(draftID string) *models.DraftStateSnapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("read draft state")
		}
		return nil
	}

	var snapshot models.DraftStateSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("discarding corrupt draft state")
		return nil
	}
	if snapshot.DraftID != draftID {
		return nil
	}
	return &snapshot
}

// Clear removes any saved snapshot.
func (s *StateStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
