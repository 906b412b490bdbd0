package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/expensio/expensio/internal/common"
	"github.com/expensio/expensio/internal/server/auth"
	"github.com/expensio/expensio/internal/server/models"
)

type ctxKey int

const userCtxKey ctxKey = iota

// currentUser returns the user resolved by requireUser for this request.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userCtxKey).(*models.User)
	return user
}

// requireUser verifies the bearer token and resolves its subject to a stored
// user before calling next. Every failure collapses into one generic 401 so
// the response does not reveal whether the token was malformed, expired, or
// issued for a principal that no longer exists.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			s.unauthorized(w)
			return
		}

		subject, err := auth.SubjectFromToken(strings.TrimPrefix(header, common.BearerPrefix), s.jwtSecret)
		if err != nil {
			s.unauthorized(w)
			return
		}

		// Resource access never creates users. An unknown subject, even an
		// email-shaped one, is rejected here. A store failure is not a
		// credential problem and must not read as one.
		user, err := s.identity.ResolveSubject(r.Context(), subject)
		if err != nil {
			if errors.Is(err, common.ErrPrincipalNotFound) {
				s.unauthorized(w)
				return
			}
			s.logger.Error(r.Context(), "resolve subject failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, user)))
	}
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "Could not validate credentials")
}
