package core

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// StepRunner executes a single shell step inside a workspace.
// The runner swaps this out in tests.
type StepRunner interface {
	RunStep(ctx context.Context, step Step, dir string, timeout time.Duration) (string, error)
}

// Executor is responsible for running steps (commands)
type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// RunStep executes a single step in the given workspace dir and returns
// its combined output + error.
func (e *Executor) RunStep(ctx context.Context, step Step, dir string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Run the step in a shell (sh -c "cmd")
	cmd := exec.CommandContext(ctx, "sh", "-c", step.Run)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}
