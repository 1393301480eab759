package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/caffeineduck/plotpad/cadence"
	"github.com/caffeineduck/plotpad/fileio"
	"github.com/caffeineduck/plotpad/notebook"
	"github.com/caffeineduck/plotpad/render/htmlchart"
	"github.com/caffeineduck/plotpad/render/svgchart"
	"github.com/caffeineduck/plotpad/state"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server hosting notebook sessions",
	Long: `Start an HTTP server where each session is a notebook with its own
execution environment and refresh loop.

Endpoints:
  POST   /sessions                 Create session, returns {"session_id":"..."}
  POST   /sessions/{id}/source     Replace the script text
  POST   /sessions/{id}/run        Request a run
  POST   /sessions/{id}/reset      Start a fresh environment
  PUT    /sessions/{id}/mode       Change the run cadence
  POST   /sessions/{id}/open       Open a script from the workspace
  POST   /sessions/{id}/save       Save the script into the workspace
  GET    /sessions/{id}/log        Log lines, ?since=N for new ones
  GET    /sessions/{id}/frame.svg  Latest plots as SVG
  GET    /sessions/{id}/frame.png  Latest plots as PNG
  GET    /sessions/{id}/frame.html Latest plots as an HTML page
  GET    /sessions/{id}/state      Session state as YAML
  DELETE /sessions/{id}            Close session
  GET    /health                   Health check`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("root", ".", "Workspace directory for open and save")
	serveCmd.Flags().Duration("ttl", 15*time.Minute, "Close sessions idle for this long")
	serveCmd.Flags().Duration("interval", 100*time.Millisecond, "Refresh interval for continuously running sessions")
	rootCmd.AddCommand(serveCmd)
}

var errSessionClosed = errors.New("session closed")

// serverSession owns one notebook. Only its loop goroutine touches the
// notebook; handlers send it work through reqs.
type serverSession struct {
	reqs     chan func(*notebook.Notebook)
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
	interval time.Duration

	mu       sync.Mutex
	lastUsed time.Time
	surface  *svgchart.Surface
}

func newServerSession(nb *notebook.Notebook, interval time.Duration) *serverSession {
	ss := &serverSession{
		reqs:     make(chan func(*notebook.Notebook)),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		interval: interval,
		lastUsed: time.Now(),
		surface:  svgchart.New(),
	}
	go ss.loop(nb)
	return ss
}

func (ss *serverSession) loop(nb *notebook.Notebook) {
	defer close(ss.stopped)

	ticker := time.NewTicker(ss.interval)
	defer ticker.Stop()

	continuous := false
	for {
		select {
		case <-ss.done:
			return
		case fn := <-ss.reqs:
			fn(nb)
		case <-ticker.C:
			if continuous {
				continuous = nb.Frame(notebook.Input{}, ss.surface).Continuous
			}
			continue
		}
		continuous = nb.Mode() == cadence.EachFrame
	}
}

// do runs fn on the session loop and waits for it.
func (ss *serverSession) do(ctx context.Context, fn func(*notebook.Notebook)) error {
	finished := make(chan struct{})
	job := func(nb *notebook.Notebook) {
		defer close(finished)
		fn(nb)
	}

	select {
	case ss.reqs <- job:
	case <-ss.done:
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	ss.touch()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ss *serverSession) touch() {
	ss.mu.Lock()
	ss.lastUsed = time.Now()
	ss.mu.Unlock()
}

func (ss *serverSession) idleSince() time.Time {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.lastUsed
}

func (ss *serverSession) close() {
	ss.once.Do(func() { close(ss.done) })
	<-ss.stopped
}

type sessionManager struct {
	sessions map[string]*serverSession
	mu       sync.RWMutex
	ttl      time.Duration
	interval time.Duration
}

func newSessionManager(ttl, interval time.Duration) *sessionManager {
	return &sessionManager{
		sessions: make(map[string]*serverSession),
		ttl:      ttl,
		interval: interval,
	}
}

func (sm *sessionManager) create(data state.SaveData) string {
	nb := notebook.New(data, notebook.WithLogger(logger))
	id := uuid.NewString()

	sm.mu.Lock()
	sm.sessions[id] = newServerSession(nb, sm.interval)
	sm.mu.Unlock()
	return id
}

func (sm *sessionManager) get(id string) (*serverSession, bool) {
	sm.mu.RLock()
	ss, ok := sm.sessions[id]
	sm.mu.RUnlock()
	return ss, ok
}

func (sm *sessionManager) close(id string) bool {
	sm.mu.Lock()
	ss, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if ok {
		ss.close()
	}
	return ok
}

func (sm *sessionManager) expire(now time.Time) int {
	sm.mu.Lock()
	var idle []*serverSession
	for id, ss := range sm.sessions {
		if now.Sub(ss.idleSince()) > sm.ttl {
			idle = append(idle, ss)
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	for _, ss := range idle {
		ss.close()
	}
	return len(idle)
}

func (sm *sessionManager) cleanup(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := sm.expire(now); n > 0 {
				logger.Info("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (sm *sessionManager) closeAll() {
	sm.mu.Lock()
	all := sm.sessions
	sm.sessions = make(map[string]*serverSession)
	sm.mu.Unlock()

	for _, ss := range all {
		ss.close()
	}
}

type createSessionRequest struct {
	Source   string `json:"source,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type sourceRequest struct {
	Source  string `json:"source"`
	Newline bool   `json:"newline,omitempty"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type fileRequest struct {
	Name string `json:"name"`
}

type frameResponse struct {
	Loaded     bool     `json:"loaded"`
	Compiled   bool     `json:"compiled"`
	Ran        bool     `json:"ran"`
	Continuous bool     `json:"continuous"`
	Mode       string   `json:"mode"`
	Runs       int      `json:"runs"`
	Log        []string `json:"log"`
}

type logResponse struct {
	Lines []string `json:"lines"`
	Next  int      `json:"next"`
}

type server struct {
	sessions  *sessionManager
	workspace *fileio.Workspace
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreate)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleClose)
	mux.HandleFunc("POST /sessions/{id}/source", s.handleSource)
	mux.HandleFunc("POST /sessions/{id}/run", s.handleRun)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("PUT /sessions/{id}/mode", s.handleMode)
	mux.HandleFunc("POST /sessions/{id}/open", s.handleOpen)
	mux.HandleFunc("POST /sessions/{id}/save", s.handleSave)
	mux.HandleFunc("GET /sessions/{id}/log", s.handleLog)
	mux.HandleFunc("GET /sessions/{id}/frame.svg", s.handleSVG)
	mux.HandleFunc("GET /sessions/{id}/frame.png", s.handlePNG)
	mux.HandleFunc("GET /sessions/{id}/frame.html", s.handleHTML)
	mux.HandleFunc("GET /sessions/{id}/state", s.handleState)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *server) session(w http.ResponseWriter, r *http.Request) (*serverSession, bool) {
	ss, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return ss, ok
}

// frame runs prepare and one refresh cycle on the session loop and writes
// the outcome.
func (s *server) frame(w http.ResponseWriter, r *http.Request, in notebook.Input, prepare func(*notebook.Notebook)) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}

	var resp frameResponse
	err := ss.do(r.Context(), func(nb *notebook.Notebook) {
		if prepare != nil {
			prepare(nb)
		}
		before := nb.Log().Len()
		f := nb.Frame(in, ss.surface)
		resp = frameResponse{
			Loaded:     f.Loaded,
			Compiled:   f.Compiled,
			Ran:        f.Ran,
			Continuous: f.Continuous,
			Mode:       nb.Mode().String(),
			Runs:       nb.Kernel().Runs(),
			Log:        nb.Log().Since(before),
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if resp.Log == nil {
		resp.Log = []string{}
	}
	writeJSON(w, resp)
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	data := state.Default()
	if req.Source != "" {
		data.SourceCode = req.Source
		data.FileName = "untitled.go"
	}
	if req.FileName != "" {
		data.FileName = req.FileName
	}
	if req.Mode != "" {
		m, err := cadence.ParseMode(req.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data.RunCadence = m
	}

	writeJSON(w, createSessionResponse{SessionID: s.sessions.create(data)})
}

func (s *server) handleClose(w http.ResponseWriter, r *http.Request) {
	if s.sessions.close(r.PathValue("id")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Error(w, "session not found", http.StatusNotFound)
}

func (s *server) handleSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.frame(w, r, notebook.Input{Interacted: true, NewlineCommitted: req.Newline}, func(nb *notebook.Notebook) {
		nb.SetText(req.Source)
	})
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.frame(w, r, notebook.Input{RunRequested: true, Interacted: true}, nil)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.frame(w, r, notebook.Input{Interacted: true}, func(nb *notebook.Notebook) {
		nb.RequestReset()
	})
}

func (s *server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	m, err := cadence.ParseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.frame(w, r, notebook.Input{}, func(nb *notebook.Notebook) {
		nb.SetMode(m)
	})
}

func (s *server) handleOpen(w http.ResponseWriter, r *http.Request) {
	if s.workspace == nil {
		http.Error(w, "no workspace configured", http.StatusNotImplemented)
		return
	}
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	ss, ok := s.session(w, r)
	if !ok {
		return
	}

	var slot *fileio.Slot[fileio.Result]
	if err := ss.do(r.Context(), func(nb *notebook.Notebook) { slot = nb.Slot() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	svc := fileio.NewService(s.workspace.Picker(req.Name), nil, slot, fileio.WithLogger(logger))
	svc.Pick(r.Context())
	svc.Wait()

	s.frame(w, r, notebook.Input{Interacted: true}, nil)
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.workspace == nil {
		http.Error(w, "no workspace configured", http.StatusNotImplemented)
		return
	}
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	ss, ok := s.session(w, r)
	if !ok {
		return
	}

	var doc notebook.Document
	err := ss.do(r.Context(), func(nb *notebook.Notebook) {
		if req.Name != "" {
			nb.SetFileName(req.Name)
		}
		doc = nb.Document()
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	svc := fileio.NewService(nil, s.workspace.Saver(), nil, fileio.WithLogger(logger))
	svc.Save(context.WithoutCancel(r.Context()), doc.Text, doc.FileName)
	svc.Wait()
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) handleLog(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	since := 0
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = n
	}

	var resp logResponse
	err := ss.do(r.Context(), func(nb *notebook.Notebook) {
		resp = logResponse{Lines: nb.Log().Since(since), Next: nb.Log().Len()}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if resp.Lines == nil {
		resp.Lines = []string{}
	}
	writeJSON(w, resp)
}

func (s *server) handleSVG(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	var out []byte
	if err := ss.do(r.Context(), func(*notebook.Notebook) { out = ss.surface.Bytes() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", ss.surface.ContentType())
	w.Write(out)
}

func (s *server) handlePNG(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "image/png", func(nb *notebook.Notebook, buf io.Writer) error {
		return nb.ExportSVG(buf, svgchart.WithPNG())
	})
}

func (s *server) handleHTML(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "text/html; charset=utf-8", func(nb *notebook.Notebook, buf io.Writer) error {
		return nb.ExportHTML(buf, htmlchart.WithPageTitle(nb.Document().FileName))
	})
}

func (s *server) export(w http.ResponseWriter, r *http.Request, contentType string, fn func(*notebook.Notebook, io.Writer) error) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	var (
		buf       bytes.Buffer
		exportErr error
	)
	if err := ss.do(r.Context(), func(nb *notebook.Notebook) { exportErr = fn(nb, &buf) }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if exportErr != nil {
		http.Error(w, exportErr.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	ss, ok := s.session(w, r)
	if !ok {
		return
	}
	var data state.SaveData
	if err := ss.do(r.Context(), func(nb *notebook.Notebook) { data = nb.SaveData() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(out)
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	root, _ := cmd.Flags().GetString("root")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	interval, _ := cmd.Flags().GetDuration("interval")

	ws, err := fileio.NewWorkspace(root)
	if err != nil {
		return err
	}

	sessions := newSessionManager(ttl, interval)
	defer sessions.closeAll()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           (&server{sessions: sessions, workspace: ws}).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("plotpad server listening", zap.String("addr", srv.Addr), zap.String("root", ws.Root()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.cleanup(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
