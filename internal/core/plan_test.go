package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanOrder(t *testing.T) {
	job := Job{
		RunsOn:     "ubuntu",
		Runtime:    "3.8",
		Manifest:   "requirements.txt",
		Entrypoint: "__main__.py",
	}
	plan := BuildPlan(job)
	require.Len(t, plan, 4)

	// strict order: provision, deps, packager, package
	assert.Equal(t, StepProvision, plan[0].Name)
	assert.Equal(t, StepInstallDeps, plan[1].Name)
	assert.Equal(t, StepInstallPacker, plan[2].Name)
	assert.Equal(t, StepPackage, plan[3].Name)

	assert.Equal(t, "python3.8 --version", plan[0].Run)
	assert.Equal(t, "python3.8 -m pip install -r requirements.txt", plan[1].Run)
	assert.Equal(t, "python3.8 -m pip install pyinstaller", plan[2].Run)
	assert.Equal(t, "pyinstaller --onefile --distpath dist __main__.py", plan[3].Run)
}

func TestBuildPlanCustomPackager(t *testing.T) {
	job := Job{Runtime: "3.11", Manifest: "reqs.txt", Entrypoint: "app.py", Packager: "nuitka"}
	plan := BuildPlan(job)

	assert.Equal(t, "python3.11 -m pip install nuitka", plan[2].Run)
	assert.Equal(t, "nuitka --onefile --distpath dist app.py", plan[3].Run)
}
