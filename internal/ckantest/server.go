// Package ckantest provides an in-process fake CKAN action API for tests.
package ckantest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Call is a recorded action request.
type Call struct {
	Action string
	Method string
	Params map[string]any
	Header http.Header
}

// ActionError makes a handler answer with a CKAN error envelope.
type ActionError struct {
	Status  int
	Type    string
	Message string
	Fields  map[string][]string
}

func (e *ActionError) Error() string {
	return e.Type + ": " + e.Message
}

// HandlerFunc answers one action call with a result or an *ActionError.
type HandlerFunc func(call Call) (any, error)

// Server is a fake CKAN instance backed by httptest.
type Server struct {
	*httptest.Server

	// APIKey, when set, is required in the Authorization header.
	APIKey string

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

// NewServer starts a fake CKAN server. Call Close when done.
func NewServer() *Server {
	s := &Server{handlers: make(map[string]HandlerFunc)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api/3/action", func(r chi.Router) {
		r.Get("/{action}", s.dispatch)
		r.Post("/{action}", s.dispatch)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Handle registers fn for the named action.
func (s *Server) Handle(action string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[action] = fn
}

// Result registers a fixed result for the named action.
func (s *Server) Result(action string, result any) {
	s.Handle(action, func(Call) (any, error) { return result, nil })
}

// Calls returns the recorded calls in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls for one action.
func (s *Server) CallsTo(action string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	params, err := readParams(r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, action, nil, &ActionError{
			Type: "Validation Error", Message: err.Error(),
		})
		return
	}

	call := Call{Action: action, Method: r.Method, Params: params, Header: r.Header.Clone()}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	fn, ok := s.handlers[action]
	s.mu.Unlock()

	if s.APIKey != "" && r.Header.Get("Authorization") != s.APIKey {
		writeEnvelope(w, http.StatusForbidden, action, nil, &ActionError{
			Type: "Authorization Error", Message: "Access denied",
		})
		return
	}

	if !ok {
		writeEnvelope(w, http.StatusBadRequest, action, nil, &ActionError{
			Type: "Bad request", Message: "Action name not known: " + action,
		})
		return
	}

	result, err := fn(call)
	if err != nil {
		actErr, isActErr := err.(*ActionError) //nolint:errorlint // handlers return the concrete type
		if !isActErr {
			actErr = &ActionError{Status: http.StatusInternalServerError, Type: "Internal Error", Message: err.Error()}
		}
		status := actErr.Status
		if status == 0 {
			status = http.StatusConflict
		}
		writeEnvelope(w, status, action, nil, actErr)
		return
	}

	writeEnvelope(w, http.StatusOK, action, result, nil)
}

func readParams(r *http.Request) (map[string]any, error) {
	params := make(map[string]any)

	if r.Method == http.MethodPost {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			return params, nil
		}
		if err := json.Unmarshal(body, &params); err != nil {
			return nil, err
		}
		return params, nil
	}

	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		v := values[0]
		if strings.HasPrefix(v, "[") || strings.HasPrefix(v, "{") {
			var decoded any
			if err := json.Unmarshal([]byte(v), &decoded); err == nil {
				params[key] = decoded
				continue
			}
		}
		params[key] = v
	}
	return params, nil
}

func writeEnvelope(w http.ResponseWriter, status int, action string, result any, actErr *ActionError) {
	env := map[string]any{
		"help":    "http://ckan.test/api/3/action/help_show?name=" + action,
		"success": actErr == nil,
	}
	if actErr != nil {
		detail := map[string]any{"__type": actErr.Type}
		if actErr.Message != "" {
			detail["message"] = actErr.Message
		}
		for k, v := range actErr.Fields {
			detail[k] = v
		}
		env["error"] = detail
	} else {
		env["result"] = result
	}

	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
