package user

import (
	"context"
	"errors"
	"time"

	"go-inspect/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, skip, limit int64) ([]User, error)
	Update(ctx context.Context, id string, patch UserPatch, caller *User) (*User, error)
	Deactivate(ctx context.Context, id string) (*User, error)
}

type UserServiceImpl struct {
	UserRepo UserRepository
}

func NewUserService(repo UserRepository) UserService {
	return &UserServiceImpl{UserRepo: repo}
}

func (s *UserServiceImpl) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if input.Role != RoleAdministrator && input.Role != RoleMechanic {
		return nil, apperr.Validation("unknown user role %q", input.Role)
	}

	if _, err := s.UserRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Validation("a user with email %s already exists", input.Email)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Store(err, "looking up user by email")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		Status:    StatusActive,
		Password:  string(hashed),
		CreatedAt: time.Now(),
	}

	if err := s.UserRepo.Create(ctx, u); err != nil {
		return nil, apperr.Store(err, "creating user")
	}
	return u, nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user with ID %s not found", id)
		}
		return nil, apperr.Store(err, "loading user %s", id)
	}
	return u, nil
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user with email %s not found", email)
		}
		return nil, apperr.Store(err, "loading user by email")
	}
	return u, nil
}

func (s *UserServiceImpl) List(ctx context.Context, skip, limit int64) ([]User, error) {
	users, err := s.UserRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, apperr.Store(err, "listing users")
	}
	return users, nil
}

// Update applies only the fields present in the patch. A non-administrator
// may only update their own account and may not change their role.
func (s *UserServiceImpl) Update(ctx context.Context, id string, patch UserPatch, caller *User) (*User, error) {
	if !caller.IsAdministrator() && caller.ID.Hex() != id {
		return nil, apperr.Forbidden("not enough permissions")
	}
	if !caller.IsAdministrator() && patch.Role != nil {
		return nil, apperr.Forbidden("not allowed to change user role")
	}

	set := bson.M{}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Password != nil && *patch.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		set["password"] = string(hashed)
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	u, err := s.UserRepo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user with ID %s not found", id)
		}
		return nil, apperr.Store(err, "updating user %s", id)
	}
	return u, nil
}

// Deactivate marks the account inactive instead of removing the row, so
// report ownership history stays resolvable.
func (s *UserServiceImpl) Deactivate(ctx context.Context, id string) (*User, error) {
	u, err := s.UserRepo.Update(ctx, id, bson.M{"status": StatusInactive})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user with ID %s not found", id)
		}
		return nil, apperr.Store(err, "deactivating user %s", id)
	}
	return u, nil
}
