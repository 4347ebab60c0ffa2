package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/okotkov/chatrelay/internal/domain"
	"github.com/okotkov/chatrelay/internal/repository"
	"github.com/okotkov/chatrelay/internal/token"
)

var (
	ErrEmailExists         = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("password is incorrect")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *token.Service
}

func NewAuthService(userRepo repository.UserRepository, tokens *token.Service) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*token.Pair, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:            uuid.New(),
		Email:         input.Email,
		PasswordHash:  string(hash),
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		RefreshTokens: datatypes.JSONSlice[string]{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	pair, err := s.tokens.GenerateTokens(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	user.RefreshTokens = append(user.RefreshTokens, pair.RefreshToken)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*token.Pair, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokens(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	user.RefreshTokens = append(user.RefreshTokens, pair.RefreshToken)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return pair, nil
}

// RenewTokens exchanges a stored refresh token for a fresh pair. The presented
// token is rotated out and any stored token that no longer verifies is pruned
// in the same write.
//
// Two concurrent renewals of the same token can both pass the membership check
// before either writes the rotated list; the last writer wins. Documented
// best-effort behavior, not guarded.
func (s *AuthService) RenewTokens(ctx context.Context, refreshToken string) (*token.Pair, error) {
	user, err := s.userForRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.GenerateTokens(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	kept := make([]string, 0, len(user.RefreshTokens))
	for _, stored := range user.RefreshTokens {
		if stored == refreshToken {
			continue
		}
		if _, err := s.tokens.Verify(stored); err != nil {
			continue
		}
		kept = append(kept, stored)
	}

	user.RefreshTokens = append(kept, pair.RefreshToken)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("rotating refresh token: %w", err)
	}

	return pair, nil
}

// ChangePassword sets a new password hash and clears every stored refresh
// token in a single write, invalidating all sessions across devices.
func (s *AuthService) ChangePassword(ctx context.Context, refreshToken, oldPassword, newPassword string) error {
	user, err := s.userForRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.RefreshTokens = datatypes.JSONSlice[string]{}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return nil
}

// LogOut removes exactly the presented refresh token; other sessions keep
// theirs.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	user, err := s.userForRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(user.RefreshTokens))
	for _, stored := range user.RefreshTokens {
		if stored != refreshToken {
			kept = append(kept, stored)
		}
	}

	user.RefreshTokens = kept
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("removing refresh token: %w", err)
	}

	return nil
}

// LogOutAll clears the whole stored list, invalidating every session
// including the caller's.
func (s *AuthService) LogOutAll(ctx context.Context, refreshToken string) error {
	user, err := s.userForRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	user.RefreshTokens = datatypes.JSONSlice[string]{}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("clearing refresh tokens: %w", err)
	}

	return nil
}

// DeleteUser permanently removes the account. Participations and messages go
// with it via the database's cascade rules.
func (s *AuthService) DeleteUser(ctx context.Context, refreshToken, password string) error {
	user, err := s.userForRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

// userForRefreshToken runs the shared validation of the refresh-token flows:
// the token must verify, its user must exist, and the token must still be in
// the user's stored list (a rotated or revoked token fails here).
func (s *AuthService) userForRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error) {
	userID, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	found := false
	for _, stored := range user.RefreshTokens {
		if stored == refreshToken {
			found = true
			break
		}
	}
	if !found {
		log.Warn().Str("userId", user.ID.String()).Msg("refresh token not in stored list")
		return nil, ErrInvalidRefreshToken
	}

	return user, nil
}
