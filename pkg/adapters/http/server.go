// Package http serves a wizard over HTTP with chi.
//
// Every step answers GET with a JSON view of its fields and the journey log,
// and POST with a 303 redirect to the resolved next step. Steps reached out of
// order answer 302 to where the user should be. Editable steps also answer on
// their edit route.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultCookieName holds the browser's session id.
const DefaultCookieName = "waypoint_session"

// Wizard is the navigation surface the server drives.
type Wizard interface {
	Name() string
	Definition() *domain.Definition
	CheckProgress(ctx context.Context, route string, visit domain.Visit) error
	Complete(ctx context.Context, route string, visit domain.Visit, customPath string) (domain.HistoryEntry, error)
	ErrorStep(errs []*domain.ValidationError, visit domain.Visit, requestPath string) waypoint.Destination
}

// Validator checks submitted values before they are stored. It may replace
// values in place with normalized ones.
type Validator func(step domain.StepConfig, values map[string]any) []*domain.ValidationError

// Server handles the steps of one wizard.
type Server struct {
	wizard   Wizard
	sessions *session.Manager
	validate Validator
	logger   *slog.Logger
	cookie   string
	newID    func() string
}

// Option configures the Server.
type Option func(*Server)

// WithValidator sets the submission validator.
func WithValidator(v Validator) Option {
	return func(s *Server) {
		s.validate = v
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) Option {
	return func(s *Server) {
		s.cookie = name
	}
}

// WithSessionIDs overrides the session id generator (random UUIDs by default).
func WithSessionIDs(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewHandler creates the router of wiz, rooted at its base URL.
func NewHandler(wiz Wizard, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		wizard:   wiz,
		sessions: sessions,
		logger:   logging.NewNop(),
		cookie:   DefaultCookieName,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	base := strings.TrimSuffix(wiz.Definition().BaseURL, "/")
	if base == "" {
		s.routes(r)
	} else {
		r.Route(base, s.routes)
	}
	return r
}

func (s *Server) routes(r chi.Router) {
	for _, step := range s.wizard.Definition().Steps {
		r.Get(step.Route, s.show(step, false))
		r.Post(step.Route, s.submit(step, false))
		if step.Editable {
			r.Get(step.EditRoute(), s.show(step, true))
			r.Post(step.EditRoute(), s.submit(step, true))
		}
	}
}

type stepView struct {
	Wizard  string            `json:"wizard"`
	Step    string            `json:"step"`
	Editing bool              `json:"editing,omitempty"`
	Content string            `json:"content,omitempty"`
	Values  map[string]any    `json:"values"`
	History domain.JourneyLog `json:"history"`
}

func (s *Server) show(step domain.StepConfig, editing bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var denied error

		sess, err := s.sessions.Update(ctx, s.sessionKey(w, r), s.wizard.Name(), func(sess *domain.Session) error {
			denied = s.wizard.CheckProgress(ctx, step.Route, s.visit(sess, editing))
			if denied != nil && !errors.Is(denied, domain.ErrMissingPrereq) {
				return denied
			}
			return nil
		})
		if err != nil {
			s.fail(w, err)
			return
		}
		if denied != nil {
			s.redirectMissing(w, r, denied)
			return
		}

		view := stepView{
			Wizard:  s.wizard.Name(),
			Step:    waypoint.ResolvePath(s.base(), step.Route, true),
			Editing: editing,
			Content: step.Content,
			Values:  make(map[string]any, len(step.Fields)),
			History: sess.History(),
		}
		for _, f := range step.Fields {
			view.Values[f] = sess.Get(f)
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) submit(step domain.StepConfig, editing bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		values, err := s.values(step, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}

		requestPath := step.Route
		if editing {
			requestPath = step.EditRoute()
		}

		var (
			denied error
			dest   waypoint.Destination
		)
		_, err = s.sessions.Update(ctx, s.sessionKey(w, r), s.wizard.Name(), func(sess *domain.Session) error {
			visit := s.visit(sess, editing)
			if denied = s.wizard.CheckProgress(ctx, step.Route, visit); denied != nil {
				if errors.Is(denied, domain.ErrMissingPrereq) {
					return nil
				}
				return denied
			}

			if s.validate != nil {
				if errs := s.validate(step, values); len(errs) > 0 {
					dest = s.wizard.ErrorStep(errs, visit, requestPath)
					return nil
				}
			}

			for k, v := range values {
				sess.Set(k, v)
			}
			entry, err := s.wizard.Complete(ctx, step.Route, visit, "")
			if err != nil {
				return err
			}

			if editing {
				dest = s.editDestination(step, entry)
				return nil
			}
			dest = recordedDestination(step, entry, visit)
			return nil
		})
		if err != nil {
			s.fail(w, err)
			return
		}
		if denied != nil {
			s.redirectMissing(w, r, denied)
			return
		}

		s.logger.DebugContext(ctx, "step submitted", "step", step.Route, "redirect", dest.Path, "reload", dest.Reload)
		http.Redirect(w, r, dest.Path, http.StatusSeeOther)
	}
}

// recordedDestination follows the branch stored in the entry instead of
// resolving the rules again, so the redirect always matches the journey log.
// A step with no matching branch reloads.
func recordedDestination(step domain.StepConfig, entry domain.HistoryEntry, visit domain.Visit) waypoint.Destination {
	if entry.Next != "" {
		return waypoint.Destination{Path: entry.Next}
	}
	return waypoint.Destination{Path: waypoint.ResolvePath(visit.BaseURL, step.Route, true), Reload: true}
}

// editDestination continues the edit flow on the next step when the winning
// branch allows it, and otherwise returns to the step's edit-back step.
func (s *Server) editDestination(step domain.StepConfig, entry domain.HistoryEntry) waypoint.Destination {
	if entry.ContinueOnEdit && entry.Next != "" {
		suffix := step.EditSuffix
		if suffix == "" {
			suffix = domain.DefaultEditSuffix
		}
		return waypoint.Destination{Path: entry.Next + suffix}
	}
	return waypoint.Destination{Path: waypoint.ResolvePath(s.base(), step.EditBack(), false)}
}

func (s *Server) redirectMissing(w http.ResponseWriter, r *http.Request, err error) {
	var perr *domain.ProgressError
	if !errors.As(err, &perr) {
		s.fail(w, err)
		return
	}

	target := perr.Redirect
	if target == "" {
		entries := s.wizard.Definition().EntryPoints()
		if len(entries) == 0 {
			writeJSON(w, http.StatusForbidden, errorBody{Error: perr.Error(), Code: perr.Code})
			return
		}
		target = waypoint.ResolvePath(s.base(), entries[0], true)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) values(step domain.StepConfig, r *http.Request) (map[string]any, error) {
	values := make(map[string]any, len(step.Fields))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		for _, f := range step.Fields {
			if v, ok := body[f]; ok {
				values[f] = v
			}
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	for _, f := range step.Fields {
		vs, ok := r.PostForm[f]
		if !ok {
			continue
		}
		if len(vs) == 1 {
			values[f] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		values[f] = list
	}
	return values, nil
}

func (s *Server) visit(sess *domain.Session, editing bool) domain.Visit {
	visit := domain.SessionVisit(s.base(), sess)
	visit.Editing = editing
	return visit
}

func (s *Server) base() string {
	return s.wizard.Definition().BaseURL
}

// sessionKey returns the store key of the caller's session, issuing a cookie
// when there is none. Keys are namespaced by wizard so one browser session can
// run several wizards.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) string {
	id := ""
	if c, err := r.Cookie(s.cookie); err == nil && c.Value != "" {
		id = c.Value
	} else {
		id = s.newID()
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.wizard.Name() + ":" + id
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var cerr *domain.ConfigError
	switch {
	case errors.Is(err, domain.ErrStepNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &cerr):
		s.logger.Error("journey misconfigured", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "journey misconfigured"})
	default:
		s.logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
