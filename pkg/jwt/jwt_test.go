package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerator() *Generator {
	return NewGenerator(TokenConfig{
		Secret:               "test-secret-at-least-32-characters!!",
		Issuer:               "boardkit-test",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	g := testGenerator()

	token, expiresAt, err := g.GenerateAccessToken("user-1", "jo@example.com", "Jo")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := g.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, "Jo", claims.Name)
}

func TestValidateAccessTokenRejectsRefreshToken(t *testing.T) {
	g := testGenerator()

	refresh, _, err := g.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = g.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateRefreshTokenRejectsAccessToken(t *testing.T) {
	g := testGenerator()

	access, _, err := g.GenerateAccessToken("user-1", "jo@example.com", "Jo")
	require.NoError(t, err)

	_, err = g.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	g := testGenerator()
	other := NewGenerator(TokenConfig{
		Secret:               "another-secret-also-32-characters!!!",
		Issuer:               "boardkit-test",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	})

	token, _, err := g.GenerateAccessToken("user-1", "jo@example.com", "Jo")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	g := NewGenerator(TokenConfig{
		Secret:               "test-secret-at-least-32-characters!!",
		Issuer:               "boardkit-test",
		AccessTokenDuration:  -time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	})

	token, _, err := g.GenerateAccessToken("user-1", "jo@example.com", "Jo")
	require.NoError(t, err)

	_, err = g.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenPair(t *testing.T) {
	g := testGenerator()

	pair, err := g.GenerateTokenPair("user-1", "jo@example.com", "Jo")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := g.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestShortLivedToken(t *testing.T) {
	g := testGenerator()

	token, err := g.GenerateShortLivedToken("user-1", time.Minute)
	require.NoError(t, err)

	claims, err := g.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}
