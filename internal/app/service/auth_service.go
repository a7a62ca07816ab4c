package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"algoforge/internal/common"
	"algoforge/internal/common/security"
	"algoforge/internal/domain/model"
	"algoforge/internal/domain/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthService struct {
	userRepo  repository.UserRepository
	tokenAuth *security.TokenAuth
	blocklist *security.TokenBlocklist
}

func NewAuthService(userRepo repository.UserRepository, tokenAuth *security.TokenAuth, blocklist *security.TokenBlocklist) *AuthService {
	return &AuthService{userRepo: userRepo, tokenAuth: tokenAuth, blocklist: blocklist}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Can be username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo might return common.ErrConflict
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokenAuth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	// Try finding by email first, then by username
	user, err := s.userRepo.FindByEmail(ctx, req.LoginField)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			user, err = s.userRepo.FindByUsername(ctx, req.LoginField)
		}
	}

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := s.tokenAuth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Logout pushes the token's id into the Redis blocklist until the token
// would have expired on its own.
func (s *AuthService) Logout(ctx context.Context, claims jwt.MapClaims) error {
	tokenID, err := security.GetTokenIDFromClaims(claims)
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrUnauthorized)
	}
	expiresAt, err := security.GetExpiryFromClaims(claims)
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrUnauthorized)
	}
	return s.blocklist.Add(ctx, tokenID, time.Until(expiresAt))
}
