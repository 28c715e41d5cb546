package core

// JobStatus is the runtime state of one job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether a job reached an end state.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// RunStatus is the aggregate state of a run, derived from its jobs.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// AggregateStatus folds job statuses into a run status. A run is
// terminal only when every job is; one failed job fails the run even
// though the other jobs still publish their artifacts.
func AggregateStatus(jobs map[string]*JobResult) RunStatus {
	failed := false
	for _, j := range jobs {
		if !j.Status.Terminal() {
			return RunRunning
		}
		if j.Status == JobFailed {
			failed = true
		}
	}
	if failed {
		return RunFailed
	}
	return RunSucceeded
}
