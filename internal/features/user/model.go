package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the account type of a user
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleMechanic      Role = "mechanic"
)

// Status is the account status of a user
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User represents an account able to authenticate against the API
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	FirstName string             `json:"first_name" bson:"first_name"`
	LastName  string             `json:"last_name" bson:"last_name"`
	Role      Role               `json:"role" bson:"role"`
	Status    Status             `json:"status" bson:"status"`
	Password  string             `json:"-" bson:"password"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

func (u *User) IsMechanic() bool {
	return u.Role == RoleMechanic
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// CreateUserInput is the payload for creating an account
type CreateUserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Password  string `json:"password"`
}

// UserPatch carries only the fields present in an update request
type UserPatch struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	Status    *Status `json:"status,omitempty"`
	Password  *string `json:"password,omitempty"`
}
