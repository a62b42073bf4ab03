package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamrubinsky/draft-copilot/internal/models"
)

func sampleSnapshot() models.DraftStateSnapshot {
	return models.DraftStateSnapshot{
		DraftID:       "draft-1",
		UserTeamID:    "6",
		CurrentPick:   48,
		LastPickCount: 47,
		LastUpdated:   "2026-08-24T12:00:00Z",
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(sampleSnapshot()))

	loaded := s.Load("draft-1")
	require.NotNil(t, loaded)
	assert.Equal(t, sampleSnapshot(), *loaded)
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	assert.Nil(t, s.Load("draft-1"))
}

func TestLoadDifferentDraft(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(sampleSnapshot()))
	assert.Nil(t, s.Load("draft-2"))
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFile), []byte("{nope"), 0o644))

	s := New(dir)
	assert.Nil(t, s.Load("draft-1"))
}

func TestSaveOverwrites(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(sampleSnapshot()))

	updated := sampleSnapshot()
	updated.LastPickCount = 60
	require.NoError(t, s.Save(updated))

	loaded := s.Load("draft-1")
	require.NotNil(t, loaded)
	assert.Equal(t, 60, loaded.LastPickCount)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Save(sampleSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, stateFile, entries[0].Name())
}

func TestClear(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(sampleSnapshot()))
	require.NoError(t, s.Clear())
	assert.Nil(t, s.Load("draft-1"))
	require.NoError(t, s.Clear())
}
