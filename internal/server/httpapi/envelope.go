// Package httpapi exposes the administrative HTTP API: the user, loanPerson
// and loanCompany resources plus file upload and captcha endpoints. Every
// response uses one fixed envelope; business failures keep HTTP 200 and set
// meta.code=1, only backend failures produce a 5xx.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yzt-loan/loanadmin/internal/common"
)

// Meta describes the outcome of a call: code 0 for success, 1 for a business
// failure.
type Meta struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the fixed envelope every endpoint answers with.
type Response struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error(context.Background(), "encoding response", "error", err)
	}
}

// ok writes a code=0 envelope.
func (s *Server) ok(w http.ResponseWriter, message string, data any) {
	s.writeJSON(w, http.StatusOK, Response{Meta: Meta{Code: 0, Message: message}, Data: data})
}

// fail writes a code=1 envelope with HTTP 200; the failure is part of the
// business protocol, not a transport error.
func (s *Server) fail(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusOK, Response{Meta: Meta{Code: 1, Message: message}})
}

func (s *Server) unauthorized(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusUnauthorized, Response{Meta: Meta{Code: 1, Message: message}})
}

// respondErr maps typed errors onto the envelope. Sentinels cover the
// expected business outcomes; anything else is a backend failure and
// becomes a logged 500 with a generic message.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		s.fail(w, "resource not found or deleted")
	case errors.Is(err, common.ErrConflict):
		s.fail(w, "username already exists")
	case errors.Is(err, common.ErrValidation):
		s.fail(w, "invalid request")
	case errors.Is(err, common.ErrUnauthorized):
		s.fail(w, "bad username or password")
	default:
		s.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError,
			Response{Meta: Meta{Code: 1, Message: "internal error"}})
	}
}

// decodeBody reads a JSON request body into dst. An empty body is allowed
// and leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
