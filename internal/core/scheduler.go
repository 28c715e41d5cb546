package core

import "sort"

// Scheduler decides which jobs a push event starts.
type Scheduler struct{}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Match returns the jobs to run for a push event, sorted by name so the
// launch order is deterministic. A push to a branch outside the trigger
// list starts nothing.
func (s *Scheduler) Match(wf *Workflow, ev PushEvent) []string {
	if !branchTriggered(wf.On.Push.Branches, ev.Branch) {
		return nil
	}
	names := make([]string, 0, len(wf.Jobs))
	for name := range wf.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func branchTriggered(branches []string, branch string) bool {
	for _, b := range branches {
		if b == branch {
			return true
		}
	}
	return false
}
