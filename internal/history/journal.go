// Package history keeps an append-only journal of finished runs.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"packci/internal/core"
)

// JobRecord is the journaled outcome of one job.
type JobRecord struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Artifact   string `json:"artifact,omitempty"`
	Digest     string `json:"digest,omitempty"`
	FailedStep string `json:"failedStep,omitempty"`
}

// RunRecord is one journal line, written when a run finishes.
type RunRecord struct {
	RunID    string      `json:"runId"`
	Workflow string      `json:"workflow"`
	Branch   string      `json:"branch"`
	Commit   string      `json:"commit"`
	Status   string      `json:"status"`
	Finished time.Time   `json:"finished"`
	Jobs     []JobRecord `json:"jobs"`
}

// NewRecord flattens a run result into a journal record.
func NewRecord(res *core.RunResult) RunRecord {
	rec := RunRecord{
		RunID:    res.ID,
		Workflow: res.Workflow,
		Branch:   res.Event.Branch,
		Commit:   res.Event.Commit,
		Status:   string(res.Status),
		Finished: res.Finished,
	}
	names := make([]string, 0, len(res.Jobs))
	for name := range res.Jobs {
		names = append(names, name)
	}
	// stable job order in the journal
	sort.Strings(names)
	for _, name := range names {
		jr := res.Jobs[name]
		rec.Jobs = append(rec.Jobs, JobRecord{
			Name:       name,
			Status:     string(jr.Status),
			Artifact:   jr.Artifact,
			Digest:     jr.Digest,
			FailedStep: jr.FailedStep,
		})
	}
	return rec
}

// Journal persists run records as JSON lines (one record per line).
type Journal struct {
	mu      sync.Mutex
	records []RunRecord
	path    string
}

// OpenJournal loads an existing journal file or starts an empty one.
func OpenJournal(path string) (*Journal, error) {
	j := &Journal{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec RunRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		j.records = append(j.records, rec)
	}
	return j, nil
}

// Append writes a record to disk and keeps it in memory.
func (j *Journal) Append(rec RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("write journal file: %w", err)
	}
	j.records = append(j.records, rec)
	return nil
}

// Records returns a copy of all journaled runs, oldest first.
func (j *Journal) Records() []RunRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]RunRecord, len(j.records))
	copy(out, j.records)
	return out
}
