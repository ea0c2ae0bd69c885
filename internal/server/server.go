// Package server serves avatar files over HTTP as the document root that
// HTTP asset sources fetch from.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ContentType is the media type of .vrm responses.
const ContentType = "model/gltf-binary"

// Server serves <root>/models/*.vrm.
type Server struct {
	root string
	log  *zap.Logger
	feed http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithFeed mounts h at /progress.
func WithFeed(h http.Handler) Option {
	return func(s *Server) { s.feed = h }
}

// New creates a server for the document root.
func New(root string, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{root: root, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the unwrapped route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/models", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/models/{name}.vrm", s.handleModel).Methods(http.MethodGet, http.MethodHead)
	if s.feed != nil {
		r.Handle("/progress", s.feed)
	}
	return r
}

// Handler returns the router wrapped with panic recovery and access logging.
func (s *Server) Handler() http.Handler {
	stdlog := zap.NewStdLog(s.log)
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(stdlog), handlers.PrintRecoveryStack(true))(s.Router())
	return handlers.LoggingHandler(stdlog.Writer(), h)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting model server", zap.String("addr", addr), zap.String("root", s.root))
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Models lists the identifiers of every .vrm file under root/models.
func (s *Server) Models() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "models"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".vrm") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".vrm"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Models()
	if err != nil {
		s.log.Error("list models", zap.Error(err))
		http.Error(w, "cannot list models", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"models": ids}); err != nil {
		s.log.Warn("write model list", zap.Error(err))
	}
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(s.root, "models", name+".vrm"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Error("open model", zap.String("name", name), zap.Error(err))
		}
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	http.ServeContent(w, r, name+".vrm", info.ModTime(), f)
}
