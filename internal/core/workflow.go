package core

// Workflow is the whole build-and-publish definition loaded from YAML.
type Workflow struct {
	Name string         `yaml:"name"`
	On   Trigger        `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Trigger describes which events start a run.
type Trigger struct {
	Push PushTrigger `yaml:"push"`
}

// PushTrigger lists the branches a push must land on to start a run.
type PushTrigger struct {
	Branches []string `yaml:"branches"`
}

// Job is one independent platform build. Jobs have no dependencies on
// each other and may run in parallel.
type Job struct {
	RunsOn     string `yaml:"runs-on"`    // platform label (ubuntu, macos, windows)
	Runtime    string `yaml:"runtime"`    // pinned interpreter version (e.g. "3.8")
	Manifest   string `yaml:"manifest"`   // dependency manifest (e.g. requirements.txt)
	Entrypoint string `yaml:"entrypoint"` // single entry point file handed to the packager
	Packager   string `yaml:"packager"`   // packaging tool, defaults to pyinstaller
	OutputDir  string `yaml:"output-dir"` // optional: move the binary here before upload
	Artifact   string `yaml:"artifact"`   // artifact name, unique per job
}

// Step is a single shell instruction inside a job plan.
type Step struct {
	Name string
	Run  string
}
