package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yzt-loan/loanadmin/internal/server/accounts"
	"github.com/yzt-loan/loanadmin/internal/server/paginate"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

// sanitizeUser strips the password digest and the lockout bookkeeping from a
// record before it leaves the API.
func sanitizeUser(rec store.Record) store.Record {
	delete(rec, "password")
	delete(rec, "login_attempts")
	delete(rec, "lock_until")
	return rec
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, limit := paginate.Coerce(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

	proxy := s.accounts.Proxy()
	total, err := proxy.Count(ctx, nil)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	recs, err := proxy.Find(ctx, store.Query{Page: page, Limit: limit})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	for _, rec := range recs {
		sanitizeUser(rec)
	}

	s.ok(w, "success", map[string]any{
		"items":    recs,
		"paginate": paginate.New(page, limit, total),
	})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	rec, err := s.accounts.FindByUsername(r.Context(), username)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "success", sanitizeUser(rec))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}
	fields := pick(body, userFields)

	username, _ := fields["username"].(string)
	password, _ := fields["password"].(string)

	rec, err := s.accounts.CreateAccount(ctx, username, password)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	// profile fields ride along after the credentials are in place
	delete(fields, "username")
	delete(fields, "password")
	if len(fields) > 0 {
		if _, err := s.accounts.Proxy().Update(ctx,
			map[string]any{store.FieldID: rec.ID()}, fields); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}

	s.ok(w, "created", map[string]any{store.FieldID: rec.ID()})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}
	fields := pick(body, userFields)
	// the password changes only through /user/reset/password
	delete(fields, "password")

	rec, err := s.accounts.Proxy().Update(r.Context(),
		map[string]any{accounts.FieldUsername: username}, fields)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "updated", sanitizeUser(rec))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	deleted, err := s.accounts.Proxy().Delete(r.Context(),
		map[string]any{accounts.FieldUsername: username})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if !deleted {
		s.fail(w, "resource not found or deleted")
		return
	}
	s.ok(w, "deleted", nil)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		OldPwd string `json:"oldpwd"`
		NewPwd string `json:"newpwd"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}
	if body.OldPwd == "" || body.NewPwd == "" {
		s.fail(w, "invalid request")
		return
	}

	rec, err := s.accounts.Proxy().FindOne(ctx, map[string]any{store.FieldID: accountID(ctx)})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	username, _ := rec[accounts.FieldUsername].(string)

	if err := s.accounts.ResetPassword(ctx, username, body.OldPwd, body.NewPwd); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "updated", nil)
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}
	if body.Username == "" || body.Password == "" {
		s.fail(w, "bad username or password")
		return
	}

	if _, err := s.accounts.CreateAccount(r.Context(), body.Username, body.Password); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "sign-up success", nil)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}
	if body.Username == "" || body.Password == "" {
		s.fail(w, "bad username or password")
		return
	}

	// the captcha code is consumed before credentials are even looked at
	if !s.codes.Check(sessionID(ctx), body.Code) {
		s.fail(w, "captcha mismatch")
		return
	}

	out, err := s.accounts.Authenticate(ctx, body.Username, body.Password)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	switch out.Status {
	case accounts.StatusNotFound, accounts.StatusBadPassword:
		// indistinguishable on purpose
		s.fail(w, "bad username or password")
	case accounts.StatusLocked:
		s.fail(w, "account locked, wait for the lock to expire and try again")
	case accounts.StatusSuccess:
		token, err := s.gateway.Issue(out.Record.ID())
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.ok(w, "sign-in success", map[string]any{"token": token})
	}
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if accountID(ctx) == "" {
		s.fail(w, "sign-out failed")
		return
	}
	s.gateway.Invalidate(bearerToken(ctx))
	s.ok(w, "sign-out success", nil)
}
