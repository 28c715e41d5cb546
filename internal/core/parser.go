package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Platform labels a job's runs-on may use.
var knownPlatforms = map[string]bool{
	"ubuntu":  true,
	"macos":   true,
	"windows": true,
}

// DefaultPackager is used when a job does not name a packaging tool.
const DefaultPackager = "pyinstaller"

// ParseWorkflow parses YAML content into a Workflow and validates it.
func ParseWorkflow(data []byte) (*Workflow, error) {
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return &wf, nil
}

// LoadWorkflow reads a workflow file and returns a Workflow.
func LoadWorkflow(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseWorkflow(data)
}

// Validate checks the workflow is runnable: every job needs a platform,
// runtime, entrypoint, manifest and a unique artifact name.
func (w *Workflow) Validate() error {
	if len(w.Jobs) == 0 {
		return fmt.Errorf("workflow has no jobs")
	}
	if len(w.On.Push.Branches) == 0 {
		return fmt.Errorf("workflow has no push trigger branches")
	}

	seen := map[string]string{} // artifact name -> job name
	for name, job := range w.Jobs {
		if !knownPlatforms[job.RunsOn] {
			return fmt.Errorf("job %q: unknown runs-on %q", name, job.RunsOn)
		}
		if job.Runtime == "" {
			return fmt.Errorf("job %q: runtime is required", name)
		}
		if job.Entrypoint == "" {
			return fmt.Errorf("job %q: entrypoint is required", name)
		}
		if job.Manifest == "" {
			return fmt.Errorf("job %q: manifest is required", name)
		}
		if job.Artifact == "" {
			return fmt.Errorf("job %q: artifact name is required", name)
		}
		if other, dup := seen[job.Artifact]; dup {
			return fmt.Errorf("jobs %q and %q both publish artifact %q", other, name, job.Artifact)
		}
		seen[job.Artifact] = name
	}
	return nil
}
