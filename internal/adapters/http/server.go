// Package http exposes the engine over a JSON REST API.
//
// Every response uses the same envelope:
//
//	{"ok": true, "message": "...", "result": ...}
//
// so clients can check a single field before looking at the payload. The
// tenant is taken from the X-Tenant header; requests without one fall into
// the "default" tenant.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/domain"
)

const defaultTenant = "default"

// Server routes API requests to a runtime engine.
type Server struct {
	engine *runtime.Engine
	logger *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler builds the full API router around an engine.
func NewHandler(engine *runtime.Engine, opts ...Option) http.Handler {
	s := &Server{engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(cors)

	r.Get("/health", s.getHealth)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.getProject)

			r.Route("/trees", func(r chi.Router) {
				r.Get("/", s.listTrees)
				r.Post("/", s.createTree)

				r.Route("/{treeID}", func(r chi.Router) {
					r.Get("/", s.getTree)
					r.Put("/", s.putTree)
					r.Delete("/", s.deleteTree)
					r.Put("/undo", s.undoTree)
					r.Get("/history", s.getHistory)
					r.Get("/dag/down", s.getDagDown)
				})
			})

			r.Route("/configs", func(r chi.Router) {
				r.Get("/", s.listConfigs)
				r.Post("/", s.createConfig)
				r.Get("/{configID}", s.getConfig)
				r.Put("/{configID}", s.putConfig)
			})

			r.Get("/config", s.getSelectedConfig)
			r.Put("/config", s.selectConfig)
		})
	})

	r.Get("/nodes/{nodeID}", s.getNodeOwner)

	return r
}

// cors allows browser frontends on any origin to call the API.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Tenant")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Result  any    `json:"result"`
}

func tenant(r *http.Request) string {
	if t := r.Header.Get("X-Tenant"); t != "" {
		return t
	}
	return defaultTenant
}

func (s *Server) respond(w http.ResponseWriter, status int, message string, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{OK: status < 400, Message: message, Result: result}); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

// fail maps domain errors to status codes and logs everything else.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrTreeNotFound),
		errors.Is(err, domain.ErrConfigNotFound),
		errors.Is(err, domain.ErrNodeNotFound):
		s.respond(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrNothingToUndo):
		s.respond(w, http.StatusBadRequest, err.Error(), nil)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		s.respond(w, http.StatusInternalServerError, err.Error(), nil)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.respond(w, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	return true
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, "healthy", map[string]string{"status": "ok"})
}

type projectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var body projectRequest
	if !s.decode(w, r, &body) {
		return
	}
	project, err := s.engine.CreateProject(r.Context(), tenant(r), body.Title, body.Description)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "project created", project)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.engine.ListProjects(r.Context(), tenant(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "projects listed", projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.engine.Project(r.Context(), tenant(r), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "project found", project)
}

type treeRequest struct {
	Title string `json:"title"`
}

func (s *Server) createTree(w http.ResponseWriter, r *http.Request) {
	var body treeRequest
	if !s.decode(w, r, &body) {
		return
	}
	tree, err := s.engine.CreateTree(r.Context(), tenant(r), chi.URLParam(r, "projectID"), body.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "tree created", tree)
}

func (s *Server) listTrees(w http.ResponseWriter, r *http.Request) {
	trees, err := s.engine.ListTrees(r.Context(), tenant(r), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "trees listed", trees)
}

// getTree returns the computed view: every node carries its
// conditionResolved flag evaluated against the selected configuration.
func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	computed, err := s.engine.Materialize(r.Context(), tenant(r), chi.URLParam(r, "projectID"), chi.URLParam(r, "treeID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "tree computed", computed)
}

func (s *Server) putTree(w http.ResponseWriter, r *http.Request) {
	var body domain.Tree
	if !s.decode(w, r, &body) {
		return
	}
	body.ID = chi.URLParam(r, "treeID")
	computed, err := s.engine.UpdateTree(r.Context(), tenant(r), chi.URLParam(r, "projectID"), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "tree updated", computed)
}

func (s *Server) deleteTree(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteTree(r.Context(), tenant(r), chi.URLParam(r, "treeID")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "tree deleted", nil)
}

func (s *Server) undoTree(w http.ResponseWriter, r *http.Request) {
	computed, err := s.engine.UndoTree(r.Context(), tenant(r), chi.URLParam(r, "projectID"), chi.URLParam(r, "treeID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "tree reverted", computed)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.History(r.Context(), tenant(r), chi.URLParam(r, "treeID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "history listed", entries)
}

// getDagDown responds with the cross-tree graph wrapped in a root item for
// the starting tree, so the response is always a single DAG node.
func (s *Server) getDagDown(w http.ResponseWriter, r *http.Request) {
	root, err := s.engine.Dag(r.Context(), tenant(r), chi.URLParam(r, "projectID"), chi.URLParam(r, "treeID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "dag resolved", root)
}

func (s *Server) createConfig(w http.ResponseWriter, r *http.Request) {
	var body domain.Configuration
	if !s.decode(w, r, &body) {
		return
	}
	cfg, err := s.engine.CreateConfiguration(r.Context(), tenant(r), chi.URLParam(r, "projectID"), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "configuration created", cfg)
}

func (s *Server) listConfigs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.ListConfigurations(r.Context(), tenant(r), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "configurations listed", ids)
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.Configuration(r.Context(), tenant(r), chi.URLParam(r, "configID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "configuration found", cfg)
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	var body domain.Configuration
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.engine.UpdateConfiguration(r.Context(), tenant(r), chi.URLParam(r, "configID"), &body); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "configuration updated", body)
}

func (s *Server) getSelectedConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.SelectedConfiguration(r.Context(), tenant(r), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "selected configuration", cfg)
}

type selectConfigRequest struct {
	ID string `json:"id"`
}

func (s *Server) selectConfig(w http.ResponseWriter, r *http.Request) {
	var body selectConfigRequest
	if !s.decode(w, r, &body) {
		return
	}
	cfg, err := s.engine.SelectConfiguration(r.Context(), tenant(r), chi.URLParam(r, "projectID"), body.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "configuration selected", cfg)
}

// getNodeOwner answers "which tree does this node live in".
func (s *Server) getNodeOwner(w http.ResponseWriter, r *http.Request) {
	treeID, err := s.engine.FindTreeOwningNode(r.Context(), tenant(r), chi.URLParam(r, "nodeID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "node found", map[string]string{"treeId": treeID})
}
