package token_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okotkov/chatrelay/internal/config"
	"github.com/okotkov/chatrelay/internal/token"
)

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:     "test-access-secret",
		RefreshTokenSecret:    "test-refresh-secret",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLDays:   7,
	}
}

func TestService_GenerateTokens(t *testing.T) {
	svc := token.NewService(testConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokens(userID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// Both tokens decode to the issuing user via the shared verifier.
	gotAccess, err := svc.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, gotAccess)

	gotRefresh, err := svc.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, gotRefresh)
}

func TestService_Verify(t *testing.T) {
	svc := token.NewService(testConfig())
	pair, err := svc.GenerateTokens(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid access token", token: pair.AccessToken},
		{name: "valid refresh token", token: pair.RefreshToken},
		{name: "garbage", token: "not-a-token", wantErr: true},
		{name: "empty", token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, token.ErrInvalidToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Verify_WrongSecret(t *testing.T) {
	svc := token.NewService(testConfig())
	pair, err := svc.GenerateTokens(uuid.New())
	require.NoError(t, err)

	other := token.NewService(&config.Config{
		AccessTokenSecret:     "different-access-secret",
		RefreshTokenSecret:    "different-refresh-secret",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLDays:   7,
	})

	_, err = other.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = other.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestService_VerifyAccess_RejectsRefreshToken(t *testing.T) {
	svc := token.NewService(testConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokens(userID)
	require.NoError(t, err)

	got, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestService_Verify_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTLMinutes = -1
	cfg.RefreshTokenTTLDays = -1
	svc := token.NewService(cfg)

	pair, err := svc.GenerateTokens(uuid.New())
	require.NoError(t, err)

	_, err = svc.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = svc.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = svc.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
