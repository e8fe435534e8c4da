package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	user "github.com/estoquelabs/estoque-backend/internal/users"
	pkgauth "github.com/estoquelabs/estoque-backend/pkg/auth"
	"github.com/estoquelabs/estoque-backend/pkg/config"
	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/estoquelabs/estoque-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service handles operator registration and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

// RegisterInput holds the validated payload to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Name     string
	Password string
	Role     models.UserRole
}

// LoginInput holds the credentials presented at login.
type LoginInput struct {
	Username string
	Password string
}

// UserDTO represents the account payload returned to clients.
type UserDTO struct {
	ID        uuid.UUID       `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

// LoginResult carries the issued token alongside the account.
type LoginResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type service struct {
	repo        *user.Repository
	jwtConfig   config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs an auth service instance.
func NewService(repo *user.Repository, jwtConfig config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if jwtConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:        repo,
		jwtConfig:   jwtConfig,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// Register creates an operator account with a hashed password.
func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	role := input.Role
	if role == "" {
		role = models.UserRoleUser
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	created, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
	}
	return newUserDTO(created), nil
}

// Login verifies the credentials and mints an access token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	account, err := s.repo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	ok, err := security.VerifyPassword(input.Password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAccessToken(s.jwtConfig, s.now(), pkgauth.AccessTokenPayload{
		UserID: account.ID,
		Role:   account.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &LoginResult{Token: token, User: *newUserDTO(account)}, nil
}

func newUserDTO(account *models.User) *UserDTO {
	return &UserDTO{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Name:      account.Name,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
	}
}
