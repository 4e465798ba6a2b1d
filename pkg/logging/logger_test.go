package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestLoggerWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "run-1")
	require.NoError(t, err)
	defer logger.Close()

	require.NoError(t, logger.Info(CategorySimulation, "run_started", "kickoff", map[string]any{"pairings": 4}))
	require.NoError(t, logger.Error(CategoryModel, "call_failed", "boom", nil))

	events := readEvents(t, filepath.Join(dir, "runs", "run-1.jsonl"))
	require.Len(t, events, 2)

	assert.Equal(t, LevelInfo, events[0].Level)
	assert.Equal(t, CategorySimulation, events[0].Category)
	assert.Equal(t, "run_started", events[0].EventType)
	assert.Equal(t, "run-1", events[0].RunID)
	assert.Equal(t, float64(4), events[0].Details["pairings"])
	assert.False(t, events[0].Timestamp.IsZero())

	// Errors also land in the shared error file.
	errors := readEvents(t, filepath.Join(dir, "errors.jsonl"))
	require.Len(t, errors, 1)
	assert.Equal(t, "call_failed", errors[0].EventType)
}

func TestLoggerMinLevel(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "run-2")
	require.NoError(t, err)
	defer logger.Close()

	require.NoError(t, logger.Debug(CategoryPersona, "skipped", "", nil))
	require.NoError(t, logger.Info(CategoryPersona, "kept", "", nil))

	logger.SetMinLevel(LevelDebug)
	require.NoError(t, logger.Debug(CategoryPersona, "kept_after_lowering", "", nil))

	events := readEvents(t, filepath.Join(dir, "runs", "run-2.jsonl"))
	require.Len(t, events, 2)
	assert.Equal(t, "kept", events[0].EventType)
	assert.Equal(t, "kept_after_lowering", events[1].EventType)
}

func TestPairingLoggerStampsID(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "run-3")
	require.NoError(t, err)
	defer logger.Close()

	plog := logger.Pairing("pairing-42")
	require.NoError(t, plog.Info(CategoryNegotiation, "round_completed", "", nil))

	events := readEvents(t, filepath.Join(dir, "runs", "run-3.jsonl"))
	require.Len(t, events, 1)
	assert.Equal(t, "pairing-42", events[0].PairingID)
	assert.Equal(t, "run-3", events[0].RunID)
}
