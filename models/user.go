package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAgent      = "agent"
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
)

var Roles = []string{RoleAgent, RoleAdmin, RoleSupervisor}

type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"`
	Role        string             `json:"role" bson:"role"`
	Avatar      string             `json:"avatar" bson:"avatar"`
	Department  string             `json:"department" bson:"department"`
	PhoneNumber string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	LastLogin   *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	Email  string             `json:"email" bson:"email"`
	Avatar string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID    primitive.ObjectID
	Role  string
	Name  string
	Email string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c Caller) IsZero() bool {
	return c.ID.IsZero()
}

type UserQuery struct {
	Role       string
	Department string
	Search     string
}
