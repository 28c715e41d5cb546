package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"packci/internal/artifact"
	"packci/internal/checkout"
	"packci/internal/config"
	"packci/internal/core"
	"packci/internal/history"
	"packci/internal/security"
	"packci/internal/storage"
)

// Server holds the engine plus an in-memory registry of runs.
type Server struct {
	cfg      *config.Config
	workflow *core.Workflow
	runner   *core.Runner
	store    artifact.Store
	journal  *history.Journal

	mu   sync.Mutex
	runs map[string]*core.RunResult
}

func NewServer(cfg *config.Config) (*Server, error) {
	wf, err := core.LoadWorkflow(cfg.Engine.WorkflowPath)
	if err != nil {
		return nil, fmt.Errorf("load workflow: %w", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	journal, err := history.OpenJournal(cfg.Engine.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	runner := core.NewRunner(
		checkout.NewGitProvider(),
		storage.NewLogStorage(cfg.Engine.LogDir),
		store,
		cfg.Engine.WorkspaceRoot,
		cfg.Engine.StepTimeout,
	)

	return &Server{
		cfg:      cfg,
		workflow: wf,
		runner:   runner,
		store:    store,
		journal:  journal,
		runs:     make(map[string]*core.RunResult),
	}, nil
}

func buildStore(cfg *config.Config) (artifact.Store, error) {
	switch cfg.Artifacts.Backend {
	case "fs":
		return artifact.NewFSStore(cfg.Artifacts.Dir), nil
	case "s3":
		return artifact.NewS3Store(cfg.Artifacts.S3)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Artifacts.Backend)
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/events/push", s.handlePushEvent)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/artifacts", s.handleListArtifacts)
	r.Get("/artifacts/{name}", s.handleArtifactFiles)
	r.Get("/artifacts/{name}/*", s.handleDownloadFile)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /events/push -> start a run if the branch is triggered
func (s *Server) handlePushEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	if secret := s.cfg.Server.WebhookSecret; secret != "" {
		sig := r.Header.Get(security.SignatureHeader)
		if !security.VerifySignature([]byte(secret), body, sig) {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var ev core.PushEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	if ev.Branch == "" || ev.Repo == "" {
		http.Error(w, "event needs repo and branch", http.StatusBadRequest)
		return
	}

	if len(s.runner.Scheduler.Match(s.workflow, ev)) == 0 {
		// branch not in the trigger list: nothing to do
		w.WriteHeader(http.StatusNoContent)
		return
	}

	runID := uuid.NewString()
	s.mu.Lock()
	s.runs[runID] = &core.RunResult{
		ID:       runID,
		Workflow: s.workflow.Name,
		Event:    ev,
		Status:   core.RunRunning,
		Jobs:     map[string]*core.JobResult{},
		Started:  time.Now().UTC(),
	}
	s.mu.Unlock()

	log.WithFields(log.Fields{"run": runID, "branch": ev.Branch, "commit": ev.Commit}).Info("run started")
	go s.execute(runID, ev)

	writeJSON(w, http.StatusAccepted, map[string]string{"id": runID, "status": string(core.RunRunning)})
}

func (s *Server) execute(runID string, ev core.PushEvent) {
	res := s.runner.RunWorkflow(context.Background(), runID, s.workflow, ev)
	if res == nil {
		return
	}

	s.mu.Lock()
	s.runs[runID] = res
	s.mu.Unlock()

	if err := s.journal.Append(history.NewRecord(res)); err != nil {
		log.WithError(err).Warn("failed to journal run")
	}
	log.WithFields(log.Fields{"run": runID, "status": res.Status}).Info("run finished")
}

// GET /runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]*core.RunResult, 0, len(s.runs))
	for _, res := range s.runs {
		out = append(out, res)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// GET /runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	res, ok := s.runs[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /artifacts
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, "list artifacts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// GET /artifacts/{name}
func (s *Server) handleArtifactFiles(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	files, err := s.store.Files(r.Context(), name)
	if errors.Is(err, artifact.ErrNotFound) {
		http.Error(w, "artifact not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "list files: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "files": files})
}

// GET /artifacts/{name}/* -> stream one file
func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path := chi.URLParam(r, "*")

	rc, err := s.store.Open(r.Context(), name, path)
	if errors.Is(err, artifact.ErrNotFound) {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "open file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		log.WithError(err).Warn("artifact download aborted")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func initLogger(cfg *config.Config) {
	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	initLogger(cfg)

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.routes()}

	go func() {
		log.WithField("addr", addr).Info("packci server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	log.Info("server stopped")
}
