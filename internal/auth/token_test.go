package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, expires, err := issuer.Issue(7, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	actor, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Actor{ID: 7, Username: "alice"}, actor)
}

func TestTokenIssuer_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenIssuer(testSecret, time.Hour).Issue(7, "alice")
	require.NoError(t, err)

	_, err = NewTokenIssuer("another-secret-another-secret-xx", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	token, _, err := issuer.Issue(7, "alice")
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
