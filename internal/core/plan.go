package core

import "fmt"

// DistDir is where the packager drops its output. Jobs without an
// output-dir publish this directory as-is.
const DistDir = "dist"

// Fixed step names, also reported as the failing step on error.
const (
	StepCheckout       = "checkout"
	StepProvision      = "provision runtime"
	StepInstallDeps    = "install dependencies"
	StepInstallPacker  = "install packager"
	StepPackage        = "package"
	StepRelocate       = "relocate output"
	StepUploadArtifact = "upload artifact"
)

// BuildPlan expands a job into its ordered shell steps. Relocation and
// upload are handled by the runner itself, not by the shell.
func BuildPlan(job Job) []Step {
	packager := job.Packager
	if packager == "" {
		packager = DefaultPackager
	}
	bin := "python" + job.Runtime

	return []Step{
		{Name: StepProvision, Run: fmt.Sprintf("%s --version", bin)},
		{Name: StepInstallDeps, Run: fmt.Sprintf("%s -m pip install -r %s", bin, job.Manifest)},
		{Name: StepInstallPacker, Run: fmt.Sprintf("%s -m pip install %s", bin, packager)},
		{Name: StepPackage, Run: fmt.Sprintf("%s --onefile --distpath %s %s", packager, DistDir, job.Entrypoint)},
	}
}
