// Package services contains server-side business logic. This file implements
// IdentityService, which resolves bearer-token subjects to stored users and
// handles the two login paths (dev login and Google sign-in).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/expensio/expensio/internal/common"
	"github.com/expensio/expensio/internal/dbx"
	"github.com/expensio/expensio/internal/server/auth"
	"github.com/expensio/expensio/internal/server/config"
	"github.com/expensio/expensio/internal/server/models"
	"github.com/expensio/expensio/internal/server/repositories/repomanager"
)

// LoginResult bundles a freshly minted access token with the user it was
// issued for.
type LoginResult struct {
	AccessToken string
	TokenType   string
	User        *models.User
}

// IdentityService provides identity-related operations:
// - ResolveSubject: map a verified token subject to a stored user
// - DevLogin: find-or-create a user by email and mint a token
// - LoginWithEmail: same, for identities asserted by Google
type IdentityService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	devTokenValidityDuration    time.Duration
	googleTokenValidityDuration time.Duration
}

// NewIdentityService constructs an IdentityService using repositories and
// server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		devTokenValidityDuration:    cfg.DevTokenValidityDuration,
		googleTokenValidityDuration: cfg.GoogleTokenValidityDuration,
	}
}

// ResolveSubject maps a token subject to the stored user it names. It runs at
// resource-access time and therefore never creates anything: an unknown
// subject yields ErrPrincipalNotFound no matter which variant it carries.
// Only the login paths may create users; otherwise presenting an unrecognized
// token to a protected endpoint would mint accounts.
func (s *IdentityService) ResolveSubject(ctx context.Context, subject auth.Subject) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	var user *models.User
	var err error
	switch subject.Kind {
	case auth.SubjectUserID:
		user, err = repo.GetByID(ctx, subject.UserID)
	case auth.SubjectEmail:
		user, err = repo.GetByEmail(ctx, subject.Email)
	default:
		return nil, common.ErrPrincipalNotFound
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		// A store outage is not a bad credential; keep the cause so the
		// boundary can report it as a server fault.
		return nil, fmt.Errorf("error resolving subject: %w", err)
	}
	return user, nil
}

// DevLogin finds or creates a user by email and returns a token carrying the
// numeric user id.
func (s *IdentityService) DevLogin(ctx context.Context, email string, fullName string) (*LoginResult, error) {
	return s.loginByEmail(ctx, &models.User{Email: email, FullName: fullName}, func(u *models.User) (string, error) {
		return auth.IssueToken(auth.UserSubject(u.ID), s.jwtSecret, s.devTokenValidityDuration)
	})
}

// LoginWithEmail finds or creates a user for an identity asserted by the
// provider and returns a token carrying the email. Profile fields are stored
// on first creation only; a repeat login leaves the existing row untouched.
func (s *IdentityService) LoginWithEmail(ctx context.Context, email, fullName, picture string) (*LoginResult, error) {
	return s.loginByEmail(ctx, &models.User{Email: email, FullName: fullName, Picture: picture}, func(u *models.User) (string, error) {
		return auth.IssueToken(auth.EmailSubject(u.Email), s.jwtSecret, s.googleTokenValidityDuration)
	})
}

// loginByEmail implements the create-on-login path. Creation and token
// minting run inside one transaction so a request abandoned mid-flight never
// leaves a user row without a token having been handed out. Two concurrent
// first-logins race on the email uniqueness constraint; the loser re-fetches
// the winner's row instead of failing.
func (s *IdentityService) loginByEmail(ctx context.Context, candidate *models.User, mint func(*models.User) (string, error)) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, candidate.Email)
	if err == nil {
		return s.finishLogin(user, mint)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	var result *LoginResult
	txErr := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, candidate)
		if err != nil {
			return err
		}
		result, err = s.finishLogin(created, mint)
		return err
	})
	if txErr == nil {
		return result, nil
	}
	if errors.Is(txErr, common.ErrorAlreadyExists) {
		user, err := repo.GetByEmail(ctx, candidate.Email)
		if err != nil {
			return nil, common.ErrorInternal
		}
		return s.finishLogin(user, mint)
	}
	return nil, common.ErrorInternal
}

func (s *IdentityService) finishLogin(user *models.User, mint func(*models.User) (string, error)) (*LoginResult, error) {
	token, err := mint(user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &LoginResult{
		AccessToken: token,
		TokenType:   common.TokenTypeBearer,
		User:        user,
	}, nil
}
