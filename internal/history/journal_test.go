package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packci/internal/core"
)

func sampleRecord(id string) RunRecord {
	return RunRecord{
		RunID:    id,
		Workflow: "build binaries",
		Branch:   "dev",
		Commit:   "abc123",
		Status:   string(core.RunSucceeded),
		Finished: time.Now().UTC().Truncate(time.Second),
		Jobs: []JobRecord{
			{Name: "ubuntu", Status: string(core.JobSucceeded), Artifact: "bin-ubuntu", Digest: "d1"},
		},
	}
}

func TestJournalAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	j, err := OpenJournal(path)
	require.NoError(t, err)

	require.NoError(t, j.Append(sampleRecord("run-1")))
	require.NoError(t, j.Append(sampleRecord("run-2")))
	assert.Len(t, j.Records(), 2)

	// reopen: records survive the process
	j2, err := OpenJournal(path)
	require.NoError(t, err)
	recs := j2.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "run-1", recs[0].RunID)
	assert.Equal(t, "run-2", recs[1].RunID)
	assert.Equal(t, "bin-ubuntu", recs[0].Jobs[0].Artifact)
}

func TestJournalOpenMissingFile(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, j.Records())
}

func TestNewRecordOrdersJobs(t *testing.T) {
	res := &core.RunResult{
		ID:       "run-9",
		Workflow: "build binaries",
		Event:    core.PushEvent{Branch: "dev", Commit: "abc123"},
		Status:   core.RunFailed,
		Finished: time.Now().UTC(),
		Jobs: map[string]*core.JobResult{
			"windows": {Name: "windows", Status: core.JobSucceeded, Artifact: "bin-win", Digest: "d3"},
			"ubuntu":  {Name: "ubuntu", Status: core.JobFailed, FailedStep: core.StepInstallDeps},
			"macos":   {Name: "macos", Status: core.JobSucceeded, Artifact: "bin-mac", Digest: "d2"},
		},
	}

	rec := NewRecord(res)
	assert.Equal(t, "run-9", rec.RunID)
	assert.Equal(t, string(core.RunFailed), rec.Status)
	require.Len(t, rec.Jobs, 3)
	assert.Equal(t, "macos", rec.Jobs[0].Name)
	assert.Equal(t, "ubuntu", rec.Jobs[1].Name)
	assert.Equal(t, "windows", rec.Jobs[2].Name)
	assert.Equal(t, core.StepInstallDeps, rec.Jobs[1].FailedStep)
}
