// api/auth/classifier_test.go
package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealcraft/api/auth"
)

func tokenWithHeader(header string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(header)) + ".payload.signature"
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  auth.Mode
	}{
		{
			name:  "HS256 header",
			token: tokenWithHeader(`{"alg":"HS256","typ":"JWT"}`),
			want:  auth.ModeSymmetric,
		},
		{
			name:  "RS256 header",
			token: tokenWithHeader(`{"alg":"RS256","kid":"key-1"}`),
			want:  auth.ModeAsymmetric,
		},
		{
			name:  "unsupported algorithm",
			token: tokenWithHeader(`{"alg":"ES256"}`),
			want:  auth.ModeMalformed,
		},
		{
			name:  "none algorithm",
			token: tokenWithHeader(`{"alg":"none"}`),
			want:  auth.ModeMalformed,
		},
		{
			name:  "algorithm is case sensitive",
			token: tokenWithHeader(`{"alg":"hs256"}`),
			want:  auth.ModeMalformed,
		},
		{
			name:  "empty string",
			token: "",
			want:  auth.ModeMalformed,
		},
		{
			name:  "two segments",
			token: "abc.def",
			want:  auth.ModeMalformed,
		},
		{
			name:  "four segments",
			token: "a.b.c.d",
			want:  auth.ModeMalformed,
		},
		{
			name:  "header is not base64",
			token: "!!!.payload.signature",
			want:  auth.ModeMalformed,
		},
		{
			name:  "header is not JSON",
			token: tokenWithHeader("not json at all"),
			want:  auth.ModeMalformed,
		},
		{
			name:  "padded base64 header still classifies",
			token: base64.URLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`)) + ".p.s",
			want:  auth.ModeSymmetric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.Classify(tt.token))
		})
	}
}

// Classification must never panic on arbitrary input.
func TestClassifyGarbageNeverPanics(t *testing.T) {
	inputs := []string{
		"....",
		"..",
		strings.Repeat(".", 100),
		strings.Repeat("A", 10000),
		"\x00\x01\x02.payload.sig",
		"ðŸ¥˜.ðŸ¥˜.ðŸ¥˜",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { auth.Classify(in) })
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "symmetric", auth.ModeSymmetric.String())
	assert.Equal(t, "asymmetric", auth.ModeAsymmetric.String())
	assert.Equal(t, "malformed", auth.ModeMalformed.String())
}
