// Package auth implements the bearer credential codec: issuing and verifying
// the service's signed, expiring tokens. The codec knows nothing about users
// or expenses; it owns only signing-key custody and claim encoding.
package auth

import (
	"time"

	"github.com/expensio/expensio/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// signingMethod is the only algorithm the service signs and accepts.
var signingMethod = jwt.SigningMethodHS256

// IssueToken produces a signed token for the subject, valid for ttl from now.
func IssueToken(subject Subject, secretKey []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(signingMethod, jwt.RegisteredClaims{
		Subject:   subject.claim(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// SubjectFromToken verifies the token's signature, algorithm, and expiry and
// returns the subject it was issued for. Every failure mode returns the same
// common.ErrInvalidToken so the caller cannot probe why verification failed.
func SubjectFromToken(tokenString string, secretKey []byte) (Subject, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	if err != nil {
		return Subject{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.ExpiresAt == nil || claims.Subject == "" {
		return Subject{}, common.ErrInvalidToken
	}

	return parseSubjectClaim(claims.Subject), nil
}
