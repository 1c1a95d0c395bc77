// Package state persists the outcome of the latest run per project
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	pcontext "github.com/jenkinsbuilder/jenkinsbuilder/pkg/context"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// StateManager reads and writes {workspace}/.jenkinsbuilder/state/{project}.json
type StateManager struct {
	stateDir string
	logger   logger.Logger
	mu       sync.Mutex
	current  map[string]*types.RunRecord
}

// NewStateManager creates a state manager for a workspace
func NewStateManager(workspace string, log logger.Logger) *StateManager {
	if log == nil {
		log = logger.Discard()
	}
	return &StateManager{
		stateDir: filepath.Join(workspace, ".jenkinsbuilder", "state"),
		logger:   log,
		current:  make(map[string]*types.RunRecord),
	}
}

// Path returns the state file of a project
func (sm *StateManager) Path(project string) string {
	return filepath.Join(sm.stateDir, project+".json")
}

// Begin records a running invocation. Counters carry over from the previous
// record; a corrupt previous record is replaced.
func (sm *StateManager) Begin(ctx context.Context, project string, command types.Command) (*types.RunRecord, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	started, ok := pcontext.GetStartTime(ctx)
	if !ok {
		started = time.Now()
	}

	record := &types.RunRecord{
		RunID:     pcontext.GetRunID(ctx),
		Project:   project,
		Command:   command,
		Status:    types.RunStatusRunning,
		StartedAt: started,
	}

	previous, err := sm.loadStateFile(project)
	switch {
	case err == nil:
		record.RunCount = previous.RunCount
		record.Failures = previous.Failures
	case !errors.Is(err, fs.ErrNotExist):
		sm.logger.Warn("Replacing unreadable state file",
			logger.WithField("project", project),
			logger.WithField("error", err))
	}
	record.RunCount++

	if err := sm.saveStateFile(record); err != nil {
		return nil, err
	}
	sm.current[project] = record
	return record, nil
}

// Finish completes the record opened by Begin
func (sm *StateManager) Finish(project string, runErr error, version, archive string) (*types.RunRecord, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	record, ok := sm.current[project]
	if !ok {
		return nil, fmt.Errorf("no run in progress for %s", project)
	}

	record.FinishedAt = time.Now()
	record.Duration = record.FinishedAt.Sub(record.StartedAt)
	record.Version = version
	record.Archive = archive
	if runErr != nil {
		record.Status = types.RunStatusFailed
		record.LastError = runErr.Error()
		record.Failures++
	} else {
		record.Status = types.RunStatusSucceeded
		record.LastError = ""
	}

	delete(sm.current, project)
	if err := sm.saveStateFile(record); err != nil {
		return record, err
	}
	return record, nil
}

// Read returns the stored record for a project, or nil when none exists
func (sm *StateManager) Read(project string) (*types.RunRecord, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	record, err := sm.loadStateFile(project)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return record, err
}

// Private methods

func (sm *StateManager) loadStateFile(project string) (*types.RunRecord, error) {
	data, err := os.ReadFile(sm.Path(project))
	if err != nil {
		return nil, err
	}

	var record types.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return &record, nil
}

func (sm *StateManager) saveStateFile(record *types.RunRecord) error {
	if err := os.MkdirAll(sm.stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	stateFile := sm.Path(record.Project)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write atomically
	tempFile := stateFile + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tempFile, stateFile); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename state file: %w", err)
	}
	return nil
}
