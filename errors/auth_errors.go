package errors

import "errors"

var (
	ErrMalformedToken    = errors.New("malformed token")
	ErrTokenExpired      = errors.New("token expired")
	ErrBadSignature      = errors.New("bad token signature")
	ErrUnknownSigningKey = errors.New("unknown signing key")
	ErrKeyFetchFailure   = errors.New("failed to fetch signing keys")

	ErrAdminAuthFailure   = errors.New("failed to obtain admin credential")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)
