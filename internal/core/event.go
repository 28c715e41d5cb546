package core

// PushEvent is the trigger input: a commit landed on a branch.
type PushEvent struct {
	Repo   string `json:"repo"`   // clone URL or local path
	Branch string `json:"branch"` // branch the commit landed on
	Commit string `json:"commit"` // commit SHA
	Actor  string `json:"actor"`  // who pushed (optional)
}
