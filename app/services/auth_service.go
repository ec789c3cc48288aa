package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.TokenService
}

func NewAuthService(db *gorm.DB, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		users:  repositories.NewUserRepository(db),
		tokens: tokens,
	}
}

// Login checks the credentials against the user store and issues a token.
// Unknown users, disabled users and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if err := validateInput(in); err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return LoginResult{}, apperror.Unauthenticated("invalid username or password")
		}
		return LoginResult{}, err
	}
	if !user.Enabled || !auth.CheckPassword(user.Password, in.Password) {
		logger.WithCtx(ctx).Info("auth: login rejected", "username", in.Username, "enabled", user.Enabled)
		return LoginResult{}, apperror.Unauthenticated("invalid username or password")
	}

	roles := user.RoleNames()
	token, expires, err := s.tokens.Issue(user.Username, roles)
	if err != nil {
		return LoginResult{}, apperror.Unexpected("issue token", err)
	}
	return LoginResult{Token: token, Username: user.Username, Roles: roles, ExpiresAt: expires}, nil
}

// Tokens exposes the token service the gateway verifies with.
func (s *AuthService) Tokens() *auth.TokenService { return s.tokens }
