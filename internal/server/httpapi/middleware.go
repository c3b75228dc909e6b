package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yzt-loan/loanadmin/internal/common"
)

type ctxKey int

const (
	ctxSessionID ctxKey = iota
	ctxAccountID
	ctxToken
)

const sessionCookie = "sid"

// sessionID returns the request's session identifier.
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxSessionID).(string)
	return id
}

// accountID returns the authenticated account identifier, "" on public
// routes.
func accountID(ctx context.Context) string {
	id, _ := ctx.Value(ctxAccountID).(string)
	return id
}

func bearerToken(ctx context.Context) string {
	t, _ := ctx.Value(ctxToken).(string)
	return t
}

// withSession assigns every client a random session id carried in a cookie.
// The captcha code store is keyed by this id.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			var genErr error
			sid, genErr = common.MakeRandHexString(16)
			if genErr != nil {
				s.respondErr(w, r, genErr)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
			})
		}

		ctx := context.WithValue(r.Context(), ctxSessionID, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withAuth verifies the Bearer token on every route except the public ones
// (sign-in, sign-up and the captcha image).
func (s *Server) withAuth(next http.Handler) http.Handler {
	skip := map[string]bool{
		"/api/user/sign/in": true,
		"/api/user/sign/up": true,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skip[r.URL.Path] || strings.HasPrefix(r.URL.Path, "/api/upload/captcha") {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			s.unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.unauthorized(w, "invalid authorization header")
			return
		}

		account, err := s.gateway.Verify(parts[1])
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				s.unauthorized(w, "token expired")
				return
			}
			s.unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxAccountID, account)
		ctx = context.WithValue(ctx, ctxToken, parts[1])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withLogging records one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
