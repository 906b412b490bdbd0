// Package googleoidc verifies Google-issued ID tokens against Google's
// published JWKS. Signature, issuer, audience, and expiry are all enforced
// before the identity is believed.
package googleoidc

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultJWKSEndpoint serves Google's current signing keys.
const DefaultJWKSEndpoint = "https://www.googleapis.com/oauth2/v3/certs"

// Google issues tokens under either issuer form.
var acceptedIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// Identity is the verified assertion content the rest of the service needs.
type Identity struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verifier checks ID tokens for a single OAuth2 client (audience). Fetched
// keys are cached; an unknown kid triggers one refetch so key rotation does
// not require a restart.
type Verifier struct {
	// JWKSEndpoint and HTTPClient may be overridden before first use
	// (tests point them at a local double).
	JWKSEndpoint string
	HTTPClient   *http.Client
	CacheTTL     time.Duration

	audience string

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewVerifier returns a Verifier accepting tokens minted for clientID.
func NewVerifier(clientID string) *Verifier {
	return &Verifier{
		JWKSEndpoint: DefaultJWKSEndpoint,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		CacheTTL:     time.Hour,
		audience:     clientID,
	}
}

// Verify parses and validates rawIDToken and returns the identity it
// asserts. Signature, algorithm (RS256), issuer, audience, and expiry are
// all checked.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	claims := &idTokenClaims{}

	token, err := jwt.ParseWithClaims(rawIDToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("id token has no kid header")
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("id token verification: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("id token verification: token invalid")
	}

	if !issuerAccepted(claims.Issuer) {
		return nil, fmt.Errorf("id token verification: unexpected issuer %q", claims.Issuer)
	}

	return &Identity{
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

func issuerAccepted(iss string) bool {
	for _, accepted := range acceptedIssuers {
		if iss == accepted {
			return true
		}
	}
	return false
}

// key returns the RSA public key for kid, refetching the JWKS when the cache
// is stale or the kid is unknown (key rotation).
func (v *Verifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	fresh := time.Since(v.fetchedAt) < v.CacheTTL
	key, ok := v.keys[kid]
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	keys, err := v.fetchJWKS(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("key %q not found in jwks", kid)
	}
	return key, nil
}

type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// fetchJWKS downloads and parses the key set. The response body is capped at
// 1 MB.
func (v *Verifier) fetchJWKS(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.JWKSEndpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var jwks jwksResponse
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, err
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			return nil, fmt.Errorf("parse key %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, errors.New("jwks contains no usable keys")
	}
	return keys, nil
}

func parseRSAPublicKey(nB64, eB64 string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, errors.New("zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
