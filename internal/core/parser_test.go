package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorkflow = `
name: build binaries
on:
  push:
    branches: [dev]
jobs:
  ubuntu:
    runs-on: ubuntu
    runtime: "3.8"
    manifest: requirements.txt
    entrypoint: __main__.py
    output-dir: bin
    artifact: bin-ubuntu
  macos:
    runs-on: macos
    runtime: "3.8"
    manifest: requirements.txt
    entrypoint: __main__.py
    output-dir: bin
    artifact: bin-mac
  windows:
    runs-on: windows
    runtime: "3.8"
    manifest: requirements.txt
    entrypoint: __main__.py
    artifact: bin-win
`

func TestParseWorkflow(t *testing.T) {
	wf, err := ParseWorkflow([]byte(sampleWorkflow))
	require.NoError(t, err)

	assert.Equal(t, "build binaries", wf.Name)
	assert.Equal(t, []string{"dev"}, wf.On.Push.Branches)
	require.Len(t, wf.Jobs, 3)

	ubuntu := wf.Jobs["ubuntu"]
	assert.Equal(t, "ubuntu", ubuntu.RunsOn)
	assert.Equal(t, "3.8", ubuntu.Runtime)
	assert.Equal(t, "requirements.txt", ubuntu.Manifest)
	assert.Equal(t, "__main__.py", ubuntu.Entrypoint)
	assert.Equal(t, "bin", ubuntu.OutputDir)
	assert.Equal(t, "bin-ubuntu", ubuntu.Artifact)

	// windows publishes the packager output directly
	assert.Empty(t, wf.Jobs["windows"].OutputDir)
	assert.Equal(t, "bin-win", wf.Jobs["windows"].Artifact)
}

func TestParseWorkflowInvalidYAML(t *testing.T) {
	_, err := ParseWorkflow([]byte(":::not yaml"))
	assert.Error(t, err)
}

func TestLoadWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleWorkflow), 0o644))

	wf, err := LoadWorkflow(path)
	require.NoError(t, err)
	assert.Len(t, wf.Jobs, 3)

	_, err = LoadWorkflow(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadWorkflows(t *testing.T) {
	base := func() *Workflow {
		wf, err := ParseWorkflow([]byte(sampleWorkflow))
		require.NoError(t, err)
		return wf
	}

	tests := []struct {
		name   string
		mutate func(*Workflow)
	}{
		{"no jobs", func(wf *Workflow) { wf.Jobs = nil }},
		{"no trigger branches", func(wf *Workflow) { wf.On.Push.Branches = nil }},
		{"unknown platform", func(wf *Workflow) {
			j := wf.Jobs["ubuntu"]
			j.RunsOn = "solaris"
			wf.Jobs["ubuntu"] = j
		}},
		{"missing runtime", func(wf *Workflow) {
			j := wf.Jobs["ubuntu"]
			j.Runtime = ""
			wf.Jobs["ubuntu"] = j
		}},
		{"missing entrypoint", func(wf *Workflow) {
			j := wf.Jobs["macos"]
			j.Entrypoint = ""
			wf.Jobs["macos"] = j
		}},
		{"missing manifest", func(wf *Workflow) {
			j := wf.Jobs["windows"]
			j.Manifest = ""
			wf.Jobs["windows"] = j
		}},
		{"missing artifact name", func(wf *Workflow) {
			j := wf.Jobs["windows"]
			j.Artifact = ""
			wf.Jobs["windows"] = j
		}},
		{"duplicate artifact name", func(wf *Workflow) {
			j := wf.Jobs["macos"]
			j.Artifact = "bin-ubuntu"
			wf.Jobs["macos"] = j
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wf := base()
			tc.mutate(wf)
			assert.Error(t, wf.Validate())
		})
	}
}
