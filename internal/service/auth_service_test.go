package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okotkov/chatrelay/internal/repository/postgres"
	"github.com/okotkov/chatrelay/internal/service"
	"github.com/okotkov/chatrelay/internal/testutil"
	"github.com/okotkov/chatrelay/internal/token"
)

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Email:     "new@example.com",
				Password:  "password123",
				FirstName: "New",
				LastName:  "User",
			},
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Email:     "taken@example.com",
				Password:  "password123",
				FirstName: "Dup",
				LastName:  "User",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@example.com").
					Build(t, testDB.DB)
			},
			wantErr: service.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			pair, err := authService.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, pair.AccessToken)
			require.NotEmpty(t, pair.RefreshToken)

			// Both tokens decode to the new user's id.
			accessID, err := tokens.Verify(pair.AccessToken)
			require.NoError(t, err)
			refreshID, err := tokens.Verify(pair.RefreshToken)
			require.NoError(t, err)
			assert.Equal(t, accessID, refreshID)

			// The refresh token is stored on the user record.
			user, err := repos.User.GetByID(ctx, refreshID)
			require.NoError(t, err)
			assert.Contains(t, []string(user.RefreshTokens), pair.RefreshToken)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name:  "successful login",
			input: service.LoginInput{Email: "login@example.com", Password: "correctpassword"},
		},
		{
			name:    "wrong password",
			input:   service.LoginInput{Email: "login@example.com", Password: "correctpassworD"},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name:    "unknown email",
			input:   service.LoginInput{Email: "nobody@example.com", Password: "correctpassword"},
			wantErr: service.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, pair.AccessToken)
			assert.NotEmpty(t, pair.RefreshToken)
		})
	}
}

func TestAuthService_Login_AccumulatesSessions(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	first, err := authService.Login(ctx, service.LoginInput{Email: user.Email, Password: password})
	require.NoError(t, err)
	second, err := authService.Login(ctx, service.LoginInput{Email: user.Email, Password: password})
	require.NoError(t, err)

	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, []string(stored.RefreshTokens), first.RefreshToken)
	assert.Contains(t, []string(stored.RefreshTokens), second.RefreshToken)
}

func TestAuthService_RenewTokens(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	pair, err := authService.Login(ctx, service.LoginInput{Email: user.Email, Password: password})
	require.NoError(t, err)

	t.Run("rotates the presented token", func(t *testing.T) {
		renewed, err := authService.RenewTokens(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)

		stored, err := repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotContains(t, []string(stored.RefreshTokens), pair.RefreshToken)
		assert.Contains(t, []string(stored.RefreshTokens), renewed.RefreshToken)
	})

	t.Run("replaying the rotated token fails", func(t *testing.T) {
		_, err := authService.RenewTokens(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	})

	t.Run("garbage token fails", func(t *testing.T) {
		_, err := authService.RenewTokens(ctx, "not-a-token")
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	})
}

func TestAuthService_LogOut(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login := service.LoginInput{Email: user.Email, Password: password}

	first, err := authService.Login(ctx, login)
	require.NoError(t, err)
	second, err := authService.Login(ctx, login)
	require.NoError(t, err)

	// Logging out the first session leaves the second untouched.
	require.NoError(t, authService.LogOut(ctx, first.RefreshToken))

	_, err = authService.RenewTokens(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	renewed, err := authService.RenewTokens(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.RefreshToken)
}

func TestAuthService_LogOutAll(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login := service.LoginInput{Email: user.Email, Password: password}

	first, err := authService.Login(ctx, login)
	require.NoError(t, err)
	second, err := authService.Login(ctx, login)
	require.NoError(t, err)

	require.NoError(t, authService.LogOutAll(ctx, second.RefreshToken))

	_, err = authService.RenewTokens(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	_, err = authService.RenewTokens(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	// A fresh login still works.
	_, err = authService.Login(ctx, login)
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login := service.LoginInput{Email: user.Email, Password: password}

	first, err := authService.Login(ctx, login)
	require.NoError(t, err)
	second, err := authService.Login(ctx, login)
	require.NoError(t, err)

	t.Run("wrong old password fails", func(t *testing.T) {
		err := authService.ChangePassword(ctx, first.RefreshToken, "wrongpassword", "newpassword123")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("invalidates every session", func(t *testing.T) {
		require.NoError(t, authService.ChangePassword(ctx, first.RefreshToken, password, "newpassword123"))

		_, err := authService.RenewTokens(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
		_, err = authService.RenewTokens(ctx, second.RefreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)

		_, err = authService.Login(ctx, login)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		_, err = authService.Login(ctx, service.LoginInput{Email: user.Email, Password: "newpassword123"})
		assert.NoError(t, err)
	})
}

func TestAuthService_DeleteUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tokens := token.NewService(testutil.TestConfig())
	authService := service.NewAuthService(repos.User, tokens)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	pair, err := authService.Login(ctx, service.LoginInput{Email: user.Email, Password: password})
	require.NoError(t, err)

	t.Run("wrong password fails", func(t *testing.T) {
		err := authService.DeleteUser(ctx, pair.RefreshToken, "wrongpassword")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("deletes the account", func(t *testing.T) {
		require.NoError(t, authService.DeleteUser(ctx, pair.RefreshToken, password))

		_, err := repos.User.GetByID(ctx, user.ID)
		assert.Error(t, err)
	})
}
