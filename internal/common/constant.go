package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the Authorization header.
const BearerPrefix = "Bearer "

// TokenTypeBearer is the token_type value returned by the login endpoints.
const TokenTypeBearer = "bearer"
