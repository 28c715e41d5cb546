package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"packci/internal/artifact"
	"packci/internal/storage"
	"packci/pkg/utils"
)

// CheckoutProvider materializes the triggering commit into a workspace dir.
type CheckoutProvider interface {
	Checkout(ctx context.Context, repo, branch, commit, dst string) error
}

// JobResult is the outcome of one job.
type JobResult struct {
	Name       string    `json:"name"`
	Status     JobStatus `json:"status"`
	Artifact   string    `json:"artifact,omitempty"` // set on success
	Digest     string    `json:"digest,omitempty"`   // sha256 over published files
	FailedStep string    `json:"failedStep,omitempty"`
	Error      string    `json:"error,omitempty"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
}

// RunResult is the outcome of one workflow run.
type RunResult struct {
	ID       string                `json:"id"`
	Workflow string                `json:"workflow"`
	Event    PushEvent             `json:"event"`
	Status   RunStatus             `json:"status"`
	Jobs     map[string]*JobResult `json:"jobs"`
	Started  time.Time             `json:"started"`
	Finished time.Time             `json:"finished"`
}

// Runner ties together scheduler + checkout + executor + log storage +
// artifact store for one engine instance.
type Runner struct {
	Scheduler     *Scheduler
	Checkout      CheckoutProvider
	Steps         StepRunner
	Logs          *storage.LogStorage
	Artifacts     artifact.Store
	WorkspaceRoot string
	StepTimeout   time.Duration
}

// NewRunner builds a runner with the default shell executor.
func NewRunner(co CheckoutProvider, logs *storage.LogStorage, store artifact.Store, workspaceRoot string, stepTimeout time.Duration) *Runner {
	if stepTimeout <= 0 {
		stepTimeout = 5 * time.Minute
	}
	return &Runner{
		Scheduler:     NewScheduler(),
		Checkout:      co,
		Steps:         NewExecutor(),
		Logs:          logs,
		Artifacts:     store,
		WorkspaceRoot: workspaceRoot,
		StepTimeout:   stepTimeout,
	}
}

// RunWorkflow executes every job the event triggers, in parallel. Jobs
// are isolated: one failing never stops the others. Returns nil when
// the event does not trigger the workflow.
func (r *Runner) RunWorkflow(ctx context.Context, runID string, wf *Workflow, ev PushEvent) *RunResult {
	names := r.Scheduler.Match(wf, ev)
	if len(names) == 0 {
		return nil
	}

	res := &RunResult{
		ID:       runID,
		Workflow: wf.Name,
		Event:    ev,
		Status:   RunRunning,
		Jobs:     make(map[string]*JobResult, len(names)),
		Started:  time.Now().UTC(),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string, job Job) {
			defer wg.Done()
			jr := r.RunJob(ctx, runID, name, job, ev)
			mu.Lock()
			res.Jobs[name] = jr
			mu.Unlock()
		}(name, wf.Jobs[name])
	}
	wg.Wait()

	res.Finished = time.Now().UTC()
	res.Status = AggregateStatus(res.Jobs)
	return res
}

// RunJob executes one job's plan sequentially in a fresh workspace.
// The first failing step aborts the job; no retry, no artifact.
func (r *Runner) RunJob(ctx context.Context, runID, name string, job Job, ev PushEvent) *JobResult {
	jr := &JobResult{Name: name, Status: JobRunning, Started: time.Now().UTC()}
	logger := log.WithFields(log.Fields{"run": runID, "job": name, "platform": job.RunsOn})

	workspace := filepath.Join(r.WorkspaceRoot, runID, name)
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return jr.fail(StepCheckout, fmt.Errorf("create workspace: %w", err))
	}
	// workspaces are ephemeral, gone once the job is done
	defer os.RemoveAll(workspace)

	logger.Info("job started")

	if err := r.Checkout.Checkout(ctx, ev.Repo, ev.Branch, ev.Commit, workspace); err != nil {
		logger.WithError(err).Error("checkout failed")
		return jr.fail(StepCheckout, err)
	}

	for _, step := range BuildPlan(job) {
		out, err := r.Steps.RunStep(ctx, step, workspace, r.StepTimeout)
		if r.Logs != nil {
			if _, lerr := r.Logs.SaveLog(runID, name, step.Name, out); lerr != nil {
				logger.WithError(lerr).Warn("failed to save step log")
			}
		}
		if err != nil {
			logger.WithFields(log.Fields{"step": step.Name}).WithError(err).Error("step failed")
			return jr.fail(step.Name, err)
		}
		logger.WithFields(log.Fields{"step": step.Name}).Debug("step ok")
	}

	// Jobs with an output-dir normalize the packager output into it, so
	// their artifact carries that directory (bin/<binary>). Jobs without
	// one publish the dist/ contents as produced.
	publishDir := filepath.Join(workspace, DistDir)
	if job.OutputDir != "" {
		stage := filepath.Join(workspace, ".publish")
		if err := relocate(publishDir, filepath.Join(stage, job.OutputDir)); err != nil {
			logger.WithError(err).Error("relocate failed")
			return jr.fail(StepRelocate, err)
		}
		publishDir = stage
	}

	digest, err := utils.DigestDir(publishDir)
	if err != nil {
		return jr.fail(StepUploadArtifact, fmt.Errorf("digest output: %w", err))
	}

	if err := r.Artifacts.Upload(ctx, job.Artifact, publishDir); err != nil {
		logger.WithError(err).Error("artifact upload failed")
		return jr.fail(StepUploadArtifact, err)
	}

	jr.Status = JobSucceeded
	jr.Artifact = job.Artifact
	jr.Digest = digest
	jr.Finished = time.Now().UTC()
	logger.WithFields(log.Fields{"artifact": job.Artifact}).Info("job succeeded")
	return jr
}

func (jr *JobResult) fail(step string, err error) *JobResult {
	jr.Status = JobFailed
	jr.FailedStep = step
	jr.Error = err.Error()
	jr.Finished = time.Now().UTC()
	return jr
}

// relocate moves every entry of src into a fresh dst directory.
func relocate(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Rename(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
