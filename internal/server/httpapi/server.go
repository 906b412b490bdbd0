// Package httpapi exposes the public HTTP surface: the two login endpoints,
// the Google OAuth2 flow, and the per-user expense CRUD.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/expensio/expensio/internal/logging"
	"github.com/expensio/expensio/internal/server/auth"
	"github.com/expensio/expensio/internal/server/googleoidc"
	"github.com/expensio/expensio/internal/server/models"
	"github.com/expensio/expensio/internal/server/services"
)

// IdentityProvider resolves token subjects and runs the login paths.
type IdentityProvider interface {
	ResolveSubject(ctx context.Context, subject auth.Subject) (*models.User, error)
	DevLogin(ctx context.Context, email, fullName string) (*services.LoginResult, error)
	LoginWithEmail(ctx context.Context, email, fullName, picture string) (*services.LoginResult, error)
}

// ExpenseProvider is the expense CRUD scoped to a resolved user.
type ExpenseProvider interface {
	List(ctx context.Context, userID int64) ([]*models.Expense, error)
	Create(ctx context.Context, userID int64, expense *models.Expense) (*models.Expense, error)
	Update(ctx context.Context, userID int64, expense *models.Expense) (*models.Expense, error)
	Delete(ctx context.Context, id, userID int64) error
}

// GoogleProvider drives the OAuth2 code flow with the provider.
type GoogleProvider interface {
	AuthCodeURL() string
	Exchange(ctx context.Context, code string) (*googleoidc.Identity, error)
}

// Server is the HTTP endpoint of the expense service.
type Server struct {
	logger             logging.Logger
	identity           IdentityProvider
	expenses           ExpenseProvider
	google             GoogleProvider
	jwtSecret          []byte
	desktopRedirectURL string
	httpServer         *http.Server
}

// NewServer builds a Server listening on addr.
func NewServer(addr string, logger logging.Logger, identity IdentityProvider, expenses ExpenseProvider, google GoogleProvider, secretKey []byte, desktopRedirectURL string) *Server {
	s := &Server{
		logger:             logger,
		identity:           identity,
		expenses:           expenses,
		google:             google,
		jwtSecret:          secretKey,
		desktopRedirectURL: desktopRedirectURL,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/dev-login", s.handleDevLogin)
	mux.HandleFunc("GET /auth/google/login", s.handleGoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)

	mux.HandleFunc("GET /expenses/{$}", s.requireUser(s.handleListExpenses))
	mux.HandleFunc("POST /expenses/{$}", s.requireUser(s.handleCreateExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.requireUser(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.requireUser(s.handleDeleteExpense))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info(ctx, "http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
