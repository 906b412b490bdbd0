package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/expensio/expensio/internal/common"
	"github.com/expensio/expensio/internal/server/config"
	"github.com/expensio/expensio/internal/server/googleoidc"
)

// TokenVerifier validates a provider-issued identity assertion and returns
// the identity it asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*googleoidc.Identity, error)
}

// GoogleService drives the OAuth2 code flow with Google: building the
// authorization URL, exchanging the callback code for tokens, and verifying
// the returned id_token before trusting its identity.
type GoogleService struct {
	oauth           *oauth2.Config
	verifier        TokenVerifier
	exchangeTimeout time.Duration
}

// NewGoogleService constructs a GoogleService from the server config.
func NewGoogleService(cfg *config.Config) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		verifier:        googleoidc.NewVerifier(cfg.GoogleClientID),
		exchangeTimeout: cfg.GoogleExchangeTimeout,
	}
}

// AuthCodeURL returns the provider's authorization endpoint URL with a fresh
// state value. The state rides through the provider unchecked: the callback
// holds no server-side session to compare it against.
func (s *GoogleService) AuthCodeURL() string {
	state := uuid.NewString()
	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens at the provider's token
// endpoint and verifies the id_token in the response. The outbound call is
// bounded by the configured exchange timeout; on expiry the caller sees
// ErrExchangeFailed like any other provider failure.
func (s *GoogleService) Exchange(ctx context.Context, code string) (*googleoidc.Identity, error) {
	if code == "" {
		return nil, common.ErrMissingAuthCode
	}

	ctx, cancel := context.WithTimeout(ctx, s.exchangeTimeout)
	defer cancel()

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, common.ErrExchangeFailed
	}

	identity, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExchangeFailed, err)
	}
	if identity.Email == "" {
		return nil, common.ErrMissingEmail
	}
	return identity, nil
}
