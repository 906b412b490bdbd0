package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/expensio/expensio/internal/common"
	"github.com/expensio/expensio/internal/server/googleoidc"
)

type fakeVerifier struct {
	out *googleoidc.Identity
	err error
}

func (f *fakeVerifier) Verify(ctx context.Context, rawIDToken string) (*googleoidc.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// tokenEndpoint returns a provider double whose token endpoint answers with
// the given JSON body.
func tokenEndpoint(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newGoogleService(srv *httptest.Server, v TokenVerifier) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     "cid",
			ClientSecret: "secret",
			RedirectURL:  "http://127.0.0.1:8080/auth/google/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		verifier:        v,
		exchangeTimeout: 2 * time.Second,
	}
}

func TestAuthCodeURL(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK, `{}`)
	defer srv.Close()
	s := newGoogleService(srv, &fakeVerifier{})

	u, err := url.Parse(s.AuthCodeURL())
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.NotEmpty(t, q.Get("state"))
	assert.Contains(t, q.Get("scope"), "userinfo.email")
	assert.Contains(t, q.Get("scope"), "userinfo.profile")
}

func TestExchange_Valid(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"at","token_type":"Bearer","id_token":"raw-id-token"}`)
	defer srv.Close()

	want := &googleoidc.Identity{Email: "a@x.com", Name: "Alice"}
	s := newGoogleService(srv, &fakeVerifier{out: want})

	id, err := s.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, want, id)
}

func TestExchange_EmptyCode(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK, `{}`)
	defer srv.Close()
	s := newGoogleService(srv, &fakeVerifier{})

	_, err := s.Exchange(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrMissingAuthCode)
}

func TestExchange_ProviderRejectsCode(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	defer srv.Close()
	s := newGoogleService(srv, &fakeVerifier{})

	_, err := s.Exchange(context.Background(), "bad-code")
	assert.ErrorIs(t, err, common.ErrExchangeFailed)
}

func TestExchange_NoIDToken(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"at","token_type":"Bearer"}`)
	defer srv.Close()
	s := newGoogleService(srv, &fakeVerifier{})

	_, err := s.Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, common.ErrExchangeFailed)
}

func TestExchange_BadIDTokenSignature(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"at","token_type":"Bearer","id_token":"forged"}`)
	defer srv.Close()
	s := newGoogleService(srv, &fakeVerifier{err: assert.AnError})

	_, err := s.Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, common.ErrExchangeFailed)
}

func TestExchange_NoEmail(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"at","token_type":"Bearer","id_token":"raw-id-token"}`)
	defer srv.Close()
	s := newGoogleService(srv, &fakeVerifier{out: &googleoidc.Identity{Name: "Nameless"}})

	_, err := s.Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, common.ErrMissingEmail)
}

func TestExchange_ProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can detect the client disconnect
		// and cancel the request context; otherwise Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := newGoogleService(srv, &fakeVerifier{})
	s.exchangeTimeout = 50 * time.Millisecond

	_, err := s.Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, common.ErrExchangeFailed)
}
