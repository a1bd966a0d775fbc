package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pneumoscan-server/internal/config"
	"pneumoscan-server/internal/models"
	"pneumoscan-server/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access_secret",
		JWTRefreshSecret:          "refresh_secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

func testUser() *models.User {
	u := &models.User{Username: "jane", Role: models.RoleDoctor}
	u.ID = "11111111-2222-3333-4444-555555555555"
	return u
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := testUser()

	access, refresh, err := utils.GenerateTokens(user, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	require.NotEqual(t, access, refresh)

	claims, err := utils.ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "jane", claims.Username)
	require.Equal(t, models.RoleDoctor, claims.Role)

	refreshClaims, err := utils.ValidateToken(refresh, cfg.JWTRefreshSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, refreshClaims.UserID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	cfg := testConfig()

	access, _, err := utils.GenerateTokens(testUser(), cfg)
	require.NoError(t, err)

	_, err = utils.ValidateToken(access, "not_the_secret")
	require.Error(t, err)

	// An access token must not validate against the refresh secret
	_, err = utils.ValidateToken(access, cfg.JWTRefreshSecret)
	require.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := utils.ValidateToken("not.a.jwt", "secret")
	require.Error(t, err)
}
