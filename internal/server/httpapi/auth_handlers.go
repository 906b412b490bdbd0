package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/expensio/expensio/internal/common"
)

type devLoginRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type devLoginUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type devLoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        devLoginUser `json:"user"`
}

type googleLoginUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type googleLoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        googleLoginUser `json:"user"`
}

// handleDevLogin mints a token for the given email without any credential.
// The user is created on first sight. Not for production deployments.
func (s *Server) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	var req devLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	res, err := s.identity.DevLogin(r.Context(), req.Email, req.FullName)
	if err != nil {
		s.logger.Error(r.Context(), "dev login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, devLoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		User:        devLoginUser{ID: res.User.ID, Email: res.User.Email},
	})
}

// handleGoogleLogin redirects the browser to the provider's consent page.
func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.google.AuthCodeURL(), http.StatusFound)
}

// handleGoogleCallback finishes the OAuth2 flow: exchange the code, verify
// the id_token, resolve or create the user, and hand out a local token. The
// token either rides a redirect to the desktop app or comes back as JSON.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	identity, err := s.google.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingAuthCode),
			errors.Is(err, common.ErrExchangeFailed),
			errors.Is(err, common.ErrMissingEmail):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error(r.Context(), "google callback failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	res, err := s.identity.LoginWithEmail(r.Context(), identity.Email, identity.Name, identity.Picture)
	if err != nil {
		s.logger.Error(r.Context(), "google login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.desktopRedirectURL != "" {
		http.Redirect(w, r, s.desktopRedirectURL+"?access_token="+url.QueryEscape(res.AccessToken), http.StatusFound)
		return
	}

	writeJSON(w, http.StatusOK, googleLoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		User:        googleLoginUser{Email: res.User.Email, Name: res.User.FullName},
	})
}
