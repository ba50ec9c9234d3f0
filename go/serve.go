package main

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wotr-tools/blockweights/go/config"
	"github.com/wotr-tools/blockweights/go/processor"
	"github.com/wotr-tools/blockweights/go/theme"
)

var (
	listenAddr string

	serveCmd = &cobra.Command{
		Use:   "serve <themesDir>",
		Short: "Serve processor documents for every theme folder under a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:9999", "listen address")
}

// server builds themes on request. Every request runs its own build; only
// the config is shared.
type server struct {
	themesDir string
	cfg       config.Config
	log       *slog.Logger
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/themes", s.themesHandler).Methods(http.MethodGet)
	r.HandleFunc("/themes/{theme}/processors.json", s.processorsHandler).Methods(http.MethodGet)
	r.HandleFunc("/themes/{theme}/report", s.reportHandler).Methods(http.MethodGet)
	return r
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("writing response", "err", err)
	}
}

func (s *server) themesHandler(w http.ResponseWriter, r *http.Request) {
	themes, err := theme.List(s.themesDir)
	if err != nil {
		s.log.Error("listing themes", "err", err)
		http.Error(w, "cannot list themes", http.StatusInternalServerError)
		return
	}
	if themes == nil {
		themes = []string{}
	}
	s.writeJSON(w, themes)
}

// build runs the pipeline for the theme named in the request path. The
// target query parameter overrides the configured target.
func (s *server) build(w http.ResponseWriter, r *http.Request) (*theme.Result, config.Config, bool) {
	name := mux.Vars(r)["theme"]
	cfg := s.cfg
	if t := r.URL.Query().Get("target"); t != "" {
		cfg.WithTarget(t)
		if err := cfg.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, cfg, false
		}
	}
	if name == "." || name == ".." || filepath.Base(name) != name {
		http.NotFound(w, r)
		return nil, cfg, false
	}

	b := &theme.Builder{Config: cfg, Logger: s.log}
	res, err := b.Build(filepath.Join(s.themesDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return nil, cfg, false
	}
	if err != nil {
		s.log.Error("building theme", "theme", name, "err", err)
		http.Error(w, "cannot build theme", http.StatusInternalServerError)
		return nil, cfg, false
	}
	return res, cfg, true
}

func (s *server) processorsHandler(w http.ResponseWriter, r *http.Request) {
	res, cfg, ok := s.build(w, r)
	if !ok {
		return
	}
	raw, err := processor.Encode(res.Document)
	if err != nil {
		s.log.Error("encoding document", "theme", res.Theme, "err", err)
		http.Error(w, "cannot encode document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if cd := mime.FormatMediaType("attachment", map[string]string{"filename": theme.OutputName(res.Theme, cfg.Target)}); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
	w.Header().Add("Cache-Control", "no-cache")
	w.Write(raw)
}

func (s *server) reportHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := s.build(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, res)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s := &server{themesDir: args[0], cfg: cfg, log: newLogger()}
	srv := &http.Server{
		Handler:      s.router(),
		Addr:         listenAddr,
		WriteTimeout: 120 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	s.log.Info("listening", "addr", srv.Addr, "themes", s.themesDir)
	return srv.ListenAndServe()
}
