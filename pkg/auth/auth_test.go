package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)

	token, err := issuer.Issue(42, "admin")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.True(t, claims.IsAdmin())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseRejects(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)
	token, err := issuer.Issue(1, "user")
	require.NoError(t, err)

	_, err = NewIssuer([]byte("other"), time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer([]byte("secret"), time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(none)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("Sup3r-secret!")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r-secret!", hash)
	assert.True(t, CheckPassword(hash, "Sup3r-secret!"))
	assert.False(t, CheckPassword(hash, "sup3r-secret!"))
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UserID: 3})
	c, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(3), c.UserID)
}
