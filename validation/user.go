package validation

import (
	"MediCall/models"

	"go.mongodb.org/mongo-driver/bson"
)

const DefaultDepartment = "General"

type SignupInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phoneNumber"`
	Avatar      string `json:"avatar"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"omitempty,oneof=agent admin supervisor"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phoneNumber"`
	Avatar      string `json:"avatar"`
	IsActive    *bool  `json:"isActive"`
}

type UserUpdateInput struct {
	Name        *string `json:"name" bson:"name,omitempty" validate:"omitempty,min=2"`
	Email       *string `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	Password    *string `json:"password" bson:"password,omitempty" validate:"omitempty,min=6"`
	Role        *string `json:"role" bson:"role,omitempty" validate:"omitempty,oneof=agent admin supervisor"`
	Department  *string `json:"department" bson:"department,omitempty"`
	PhoneNumber *string `json:"phoneNumber" bson:"phoneNumber,omitempty"`
	Avatar      *string `json:"avatar" bson:"avatar,omitempty"`
	IsActive    *bool   `json:"isActive" bson:"isActive,omitempty"`
}

func Signup(data Payload) (*SignupInput, error) {
	dropIgnored(data)
	trim(data, "")
	in := &SignupInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Department == "" {
		in.Department = DefaultDepartment
	}
	return in, nil
}

func Login(data Payload) (*LoginInput, error) {
	trim(data, "")
	in := &LoginInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	return in, nil
}

// User validates an admin-created account. The password is returned in
// clear text for the caller to hash.
func User(data Payload) (*models.User, error) {
	dropIgnored(data)
	trim(data, "")
	in := &UserInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	user := &models.User{
		Name:        in.Name,
		Email:       in.Email,
		Password:    in.Password,
		Role:        in.Role,
		Department:  in.Department,
		PhoneNumber: in.PhoneNumber,
		Avatar:      in.Avatar,
		IsActive:    boolOr(in.IsActive, true),
	}
	if user.Role == "" {
		user.Role = models.RoleAgent
	}
	if user.Department == "" {
		user.Department = DefaultDepartment
	}
	return user, nil
}

// UserUpdate returns the $set document of the submitted fields.
func UserUpdate(data Payload) (bson.M, error) {
	dropIgnored(data)
	delete(data, "lastLogin")
	trim(data, "")
	in := &UserUpdateInput{}
	if err := decode(data, in); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	return setDoc(in)
}
