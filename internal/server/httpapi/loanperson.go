package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yzt-loan/loanadmin/internal/server/paginate"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

func (s *Server) listLoanPersons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	qp := r.URL.Query()
	page, limit := paginate.Coerce(qp.Get("page"), qp.Get("limit"))

	filter := map[string]any{}
	if userID := qp.Get("userId"); userID != "" {
		filter["create_user"] = userID
	}
	if name := qp.Get("name"); name != "" {
		filter["name"] = name
	}

	total, err := s.persons.Count(ctx, filter)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	recs, err := s.persons.FindAndExpand(ctx,
		store.Query{Filter: filter, Page: page, Limit: limit}, "create_user")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	for _, rec := range recs {
		if ref, ok := rec["create_user"].(store.Record); ok {
			sanitizeUser(ref)
		}
	}

	s.ok(w, "success", map[string]any{
		"items":    recs,
		"paginate": paginate.New(page, limit, total),
	})
}

func (s *Server) getLoanPerson(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := s.persons.FindOneAndExpand(r.Context(),
		map[string]any{store.FieldID: id}, "create_user")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if ref, ok := rec["create_user"].(store.Record); ok {
		sanitizeUser(ref)
	}
	s.ok(w, "success", rec)
}

func (s *Server) createLoanPerson(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}

	rec, err := s.persons.Create(r.Context(), pick(body, loanPersonFields))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "created", map[string]any{store.FieldID: rec.ID()})
}

func (s *Server) updateLoanPerson(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}

	rec, err := s.persons.Update(r.Context(),
		map[string]any{store.FieldID: id}, pick(body, loanPersonFields))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "updated", rec)
}

func (s *Server) deleteLoanPerson(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := s.persons.Delete(r.Context(), map[string]any{store.FieldID: id})
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
