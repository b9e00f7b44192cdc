// api/auth/classifier.go
package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Mode is the trust mode a bearer token verifies under.
type Mode int

const (
	// ModeMalformed means the token cannot be classified: missing segments,
	// bad base64url, bad JSON, or an unrecognized algorithm.
	ModeMalformed Mode = iota
	// ModeSymmetric is the legacy HS256 format signed with the shared secret.
	ModeSymmetric
	// ModeAsymmetric is the provider RS256 format verified against the
	// published signing keys.
	ModeAsymmetric
)

func (m Mode) String() string {
	switch m {
	case ModeSymmetric:
		return "symmetric"
	case ModeAsymmetric:
		return "asymmetric"
	default:
		return "malformed"
	}
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

// Classify inspects the token's header segment without verifying the
// signature and reports which verification path applies. It is safe on
// completely untrusted input and never panics; anything it cannot decode is
// ModeMalformed.
func Classify(token string) Mode {
	header, err := decodeHeader(token)
	if err != nil {
		return ModeMalformed
	}

	switch header.Alg {
	case "HS256":
		return ModeSymmetric
	case "RS256":
		return ModeAsymmetric
	default:
		return ModeMalformed
	}
}

// decodeHeader decodes the first dot-delimited segment as base64url JSON.
func decodeHeader(token string) (*tokenHeader, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errNotAToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[0], "="))
	if err != nil {
		return nil, err
	}

	var header tokenHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, err
	}
	return &header, nil
}
