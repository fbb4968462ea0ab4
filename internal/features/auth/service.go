package auth

import (
	"context"
	"errors"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/user"
	"go-inspect/pkg/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	Register(ctx context.Context, input user.CreateUserInput) (*user.User, error)
}

type AuthServiceImpl struct {
	UserRepo    user.UserRepository
	UserService user.UserService
}

func NewAuthService(userRepo user.UserRepository, userService user.UserService) AuthService {
	return &AuthServiceImpl{
		UserRepo:    userRepo,
		UserService: userService,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, apperr.Forbidden("invalid credentials")
		}
		return "", nil, apperr.Store(err, "looking up user by email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, apperr.Forbidden("invalid credentials")
	}
	if !u.IsActive() {
		return "", nil, apperr.Forbidden("account inactive")
	}

	token, err := utils.GenerateToken(u.ID.Hex(), string(u.Role))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Register creates an account. Route-level gating restricts this to
// administrators.
func (s *AuthServiceImpl) Register(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	return s.UserService.Create(ctx, input)
}
