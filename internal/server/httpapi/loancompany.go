package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yzt-loan/loanadmin/internal/server/paginate"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

func (s *Server) listLoanCompanies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	qp := r.URL.Query()
	page, limit := paginate.Coerce(qp.Get("page"), qp.Get("limit"))

	filter := map[string]any{}
	if personID := qp.Get("loanPersonId"); personID != "" {
		filter["loan_person"] = personID
	}
	if name := qp.Get("name"); name != "" {
		filter["name"] = name
	}

	total, err := s.companies.Count(ctx, filter)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	recs, err := s.companies.FindAndExpand(ctx,
		store.Query{Filter: filter, Page: page, Limit: limit}, "loan_person")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	s.ok(w, "success", map[string]any{
		"items":    recs,
		"paginate": paginate.New(page, limit, total),
	})
}

func (s *Server) getLoanCompany(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := s.companies.FindOneAndExpand(r.Context(),
		map[string]any{store.FieldID: id}, "loan_person")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "success", rec)
}

func (s *Server) createLoanCompany(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}

	rec, err := s.companies.Create(r.Context(), pick(body, loanCompanyFields))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "created", map[string]any{store.FieldID: rec.ID()})
}

func (s *Server) updateLoanCompany(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body := map[string]any{}
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, "invalid request")
		return
	}

	rec, err := s.companies.Update(r.Context(),
		map[string]any{store.FieldID: id}, pick(body, loanCompanyFields))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.ok(w, "updated", rec)
}

func (s *Server) deleteLoanCompany(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := s.companies.Delete(r.Context(), map[string]any{store.FieldID: id})
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
