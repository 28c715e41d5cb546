package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"packci/internal/artifact"
	"packci/internal/checkout"
	"packci/internal/core"
	"packci/internal/history"
	"packci/internal/security"
	"packci/internal/storage"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  packci run      -workflow <file> -src <dir> -branch <name> [-commit <sha>] [-out <dir>]")
	fmt.Println("  packci validate <workflow.yaml>")
	fmt.Println("  packci submit   -server <url> -repo <url> -branch <name> [-commit <sha>] [-secret <hex>]")
	fmt.Println("  packci history  <runs.jsonl>")
	fmt.Println("  packci secret")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	case "submit":
		cmdSubmit(os.Args[2:])
	case "history":
		cmdHistory(os.Args[2:])
	case "secret":
		cmdSecret()
	default:
		usage()
	}
}

// run executes a workflow locally against a source directory, as if a
// push event had arrived for it.
func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	wfPath := fs.String("workflow", "workflow.yaml", "workflow file")
	src := fs.String("src", ".", "source directory to build")
	branch := fs.String("branch", "dev", "branch the synthetic push lands on")
	commit := fs.String("commit", "", "commit SHA (informational for local runs)")
	out := fs.String("out", "./artifacts", "artifact store directory")
	logDir := fs.String("logs", "./logs", "step log directory")
	timeout := fs.Duration("timeout", 5*time.Minute, "per-step timeout")
	fs.Parse(args)

	wf, err := core.LoadWorkflow(*wfPath)
	if err != nil {
		fatal("load workflow: %v", err)
	}

	workspaceRoot, err := os.MkdirTemp("", "packci-run-")
	if err != nil {
		fatal("create workspace root: %v", err)
	}
	defer os.RemoveAll(workspaceRoot)

	runner := core.NewRunner(
		checkout.NewDirProvider(),
		storage.NewLogStorage(*logDir),
		artifact.NewFSStore(*out),
		workspaceRoot,
		*timeout,
	)

	ev := core.PushEvent{Repo: *src, Branch: *branch, Commit: *commit, Actor: "local"}
	res := runner.RunWorkflow(context.Background(), uuid.NewString(), wf, ev)
	if res == nil {
		fmt.Printf("branch %q does not trigger workflow %q, nothing to run\n", *branch, wf.Name)
		return
	}

	names := make([]string, 0, len(res.Jobs))
	for name := range res.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		jr := res.Jobs[name]
		if jr.Status == core.JobSucceeded {
			fmt.Printf("job %-10s %s  artifact=%s digest=%s\n", jr.Name, jr.Status, jr.Artifact, short(jr.Digest))
		} else {
			fmt.Printf("job %-10s %s  step=%q: %s\n", jr.Name, jr.Status, jr.FailedStep, jr.Error)
		}
	}
	fmt.Printf("run %s: %s\n", res.ID, res.Status)
	if res.Status == core.RunFailed {
		os.Exit(1)
	}
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		usage()
	}
	wf, err := core.LoadWorkflow(args[0])
	if err != nil {
		fatal("invalid workflow: %v", err)
	}
	fmt.Printf("workflow %q ok: %d job(s), trigger branches %v\n", wf.Name, len(wf.Jobs), wf.On.Push.Branches)
}

// submit sends a push event to a running server, signing it when a
// secret is given.
func cmdSubmit(args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	server := fs.String("server", "http://localhost:8080", "server base URL")
	repo := fs.String("repo", "", "repository clone URL")
	branch := fs.String("branch", "dev", "branch")
	commit := fs.String("commit", "", "commit SHA")
	actor := fs.String("actor", "", "who pushed")
	secret := fs.String("secret", "", "webhook secret")
	fs.Parse(args)

	if *repo == "" {
		fatal("submit: -repo is required")
	}

	payload, err := json.Marshal(core.PushEvent{Repo: *repo, Branch: *branch, Commit: *commit, Actor: *actor})
	if err != nil {
		fatal("encode event: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *server+"/events/push", bytes.NewReader(payload))
	if err != nil {
		fatal("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *secret != "" {
		req.Header.Set(security.SignatureHeader, security.SignPayload([]byte(*secret), payload))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatal("send event: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		fmt.Println("accepted, but branch does not trigger the workflow")
		return
	}
	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("server response (%d): %s\n", resp.StatusCode, bytes.TrimSpace(body))
}

func cmdHistory(args []string) {
	if len(args) < 1 {
		usage()
	}
	journal, err := history.OpenJournal(args[0])
	if err != nil {
		fatal("open journal: %v", err)
	}
	for _, rec := range journal.Records() {
		fmt.Printf("%s  %s  %s@%s  %s\n",
			rec.Finished.Format(time.RFC3339), rec.RunID, rec.Branch, short(rec.Commit), rec.Status)
		for _, jr := range rec.Jobs {
			if jr.Artifact != "" {
				fmt.Printf("    %-10s %-9s artifact=%s digest=%s\n", jr.Name, jr.Status, jr.Artifact, short(jr.Digest))
			} else {
				fmt.Printf("    %-10s %-9s step=%q\n", jr.Name, jr.Status, jr.FailedStep)
			}
		}
	}
}

func cmdSecret() {
	secret, err := security.GenerateSecret()
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(secret)
}

func short(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
