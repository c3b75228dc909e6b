package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yzt-loan/loanadmin/internal/logging"
	"github.com/yzt-loan/loanadmin/internal/server/accounts"
	"github.com/yzt-loan/loanadmin/internal/server/auth"
	"github.com/yzt-loan/loanadmin/internal/server/files"
	"github.com/yzt-loan/loanadmin/internal/server/resource"
	"github.com/yzt-loan/loanadmin/internal/server/session"
)

// Server bundles the collaborators the handlers need.
type Server struct {
	log       logging.Logger
	accounts  *accounts.Store
	persons   *resource.Proxy
	companies *resource.Proxy
	gateway   *auth.Gateway
	codes     *session.Codes
	files     files.Storage
}

func NewServer(
	log logging.Logger,
	acc *accounts.Store,
	persons, companies *resource.Proxy,
	gateway *auth.Gateway,
	codes *session.Codes,
	storage files.Storage,
) *Server {
	return &Server{
		log:       log,
		accounts:  acc,
		persons:   persons,
		companies: companies,
		gateway:   gateway,
		codes:     codes,
		files:     storage,
	}
}

// Routes builds the /api router with session, auth and logging middleware.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.withLogging, s.withSession, s.withAuth)

	api := r.PathPrefix("/api").Subrouter()

	// sign/up etc. must register before the {username} routes so mux does
	// not capture "sign" as a username
	api.HandleFunc("/user/reset/password", s.resetPassword).Methods(http.MethodPost)
	api.HandleFunc("/user/sign/up", s.signUp).Methods(http.MethodPost)
	api.HandleFunc("/user/sign/in", s.signIn).Methods(http.MethodPost)
	api.HandleFunc("/user/sign/out", s.signOut).Methods(http.MethodPost)
	api.HandleFunc("/user", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/user", s.createUser).Methods(http.MethodPost)
	api.HandleFunc("/user/{username}", s.getUser).Methods(http.MethodGet)
	api.HandleFunc("/user/{username}", s.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/user/{username}", s.deleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/loanPerson", s.listLoanPersons).Methods(http.MethodGet)
	api.HandleFunc("/loanPerson", s.createLoanPerson).Methods(http.MethodPost)
	api.HandleFunc("/loanPerson/{id}", s.getLoanPerson).Methods(http.MethodGet)
	api.HandleFunc("/loanPerson/{id}", s.updateLoanPerson).Methods(http.MethodPut)
	api.HandleFunc("/loanPerson/{id}", s.deleteLoanPerson).Methods(http.MethodDelete)

	api.HandleFunc("/loanCompany", s.listLoanCompanies).Methods(http.MethodGet)
	api.HandleFunc("/loanCompany", s.createLoanCompany).Methods(http.MethodPost)
	api.HandleFunc("/loanCompany/{id}", s.getLoanCompany).Methods(http.MethodGet)
	api.HandleFunc("/loanCompany/{id}", s.updateLoanCompany).Methods(http.MethodPut)
	api.HandleFunc("/loanCompany/{id}", s.deleteLoanCompany).Methods(http.MethodDelete)

	api.HandleFunc("/upload/file", s.uploadFile).Methods(http.MethodPost)
	api.HandleFunc("/upload/sign/check", s.signCheck).Methods(http.MethodPost)
	api.HandleFunc("/upload/captcha", s.captchaImage).Methods(http.MethodGet)
	api.HandleFunc("/upload/captcha/{width}", s.captchaImage).Methods(http.MethodGet)
	api.HandleFunc("/upload/captcha/{width}/{height}", s.captchaImage).Methods(http.MethodGet)

	return r
}
