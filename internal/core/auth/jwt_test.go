package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTer_IssueParse(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "socialdesk", TTL: time.Hour}
	tok, err := j.Issue("u1", "member", ScopeUser)
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, ScopeUser, c.Scope)
}

func TestJWTer_Rejects(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "socialdesk", TTL: time.Hour}

	other := &JWTer{Secret: []byte("other"), Issuer: "socialdesk", TTL: time.Hour}
	tok, _ := other.Issue("u1", "", ScopeUser)
	_, err := j.Parse(tok)
	assert.Error(t, err, "wrong secret")

	wrongIss := &JWTer{Secret: []byte("s3cret"), Issuer: "elsewhere", TTL: time.Hour}
	tok, _ = wrongIss.Issue("u1", "", ScopeUser)
	_, err = j.Parse(tok)
	assert.Error(t, err, "wrong issuer")

	expired := &JWTer{Secret: []byte("s3cret"), Issuer: "socialdesk", TTL: -time.Hour}
	tok, _ = expired.Issue("u1", "", ScopeUser)
	_, err = j.Parse(tok)
	assert.Error(t, err, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UID: "u1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "socialdesk"}})
	tok, _ = none.SignedString([]byte("s3cret"))
	_, err = j.Parse(tok)
	assert.Error(t, err, "unexpected alg")
}

func TestJWTer_SubjectFallback(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "socialdesk", TTL: time.Hour}
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "socialdesk",
		Subject:   "provider-user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tok, err := raw.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "provider-user", c.UID)
}
