package httpapi

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dchest/captcha"
	"github.com/gorilla/mux"

	"github.com/yzt-loan/loanadmin/internal/server/resource"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

const maxUploadBytes = 10 << 20

// Default captcha image size.
const (
	captchaWidth  = 80
	captchaHeight = 30
)

// uploadTarget resolves the "model" form field to the proxy it patches and
// the fields a client may patch on it.
func (s *Server) uploadTarget(model string) (*resource.Proxy, []string) {
	switch model {
	case "loanPerson":
		return s.persons, loanPersonFields
	case "loanCompany":
		return s.companies, loanCompanyFields
	}
	return nil, nil
}

// uploadFile accepts a multipart upload, stores the file and patches the
// named field of the target record with the stored path.
func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, "invalid request")
		return
	}

	model := r.FormValue("model")
	modelID := r.FormValue("model_id")
	modelName := r.FormValue("model_name")

	proxy, fields := s.uploadTarget(model)
	if proxy == nil || modelID == "" || !allowed(modelName, fields) {
		s.fail(w, "invalid request")
		return
	}

	var header *multipart.FileHeader
	for _, headers := range r.MultipartForm.File {
		if len(headers) > 0 {
			header = headers[0]
			break
		}
	}
	if header == nil {
		s.fail(w, "invalid request")
		return
	}

	file, err := header.Open()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	defer file.Close()

	storedPath, err := s.files.Save(ctx, header.Filename, file)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	if _, err := proxy.Update(ctx,
		map[string]any{store.FieldID: modelID},
		map[string]any{modelName: storedPath}); err != nil {
		s.respondErr(w, r, err)
		return
	}

	s.ok(w, "upload success", map[string]any{
		store.FieldID: modelID,
		"name":        header.Filename,
		"path":        storedPath,
		"model_name":  modelName,
		"model_id":    modelID,
	})
}

// signCheck is an authenticated ping: reaching the handler means the Bearer
// token verified.
func (s *Server) signCheck(w http.ResponseWriter, r *http.Request) {
	s.ok(w, "success", nil)
}

// captchaImage issues a fresh 4-digit code for the session and renders it as
// a PNG. A new request overwrites the previous code.
func (s *Server) captchaImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	width, err := strconv.Atoi(vars["width"])
	if err != nil || width <= 0 {
		width = captchaWidth
	}
	height, err := strconv.Atoi(vars["height"])
	if err != nil || height <= 0 {
		height = captchaHeight
	}

	sid := sessionID(r.Context())
	code := s.codes.Issue(sid)

	text := strconv.Itoa(code)
	digits := make([]byte, len(text))
	for i := range text {
		digits[i] = text[i] - '0'
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := captcha.NewImage(sid, digits, width, height).WriteTo(w); err != nil {
		s.log.Error(r.Context(), "rendering captcha", "error", err)
	}
}
