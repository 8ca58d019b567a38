package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRegister      = "user registered successfully"
	MessageSuccessGetProfile    = "success get profile"
	MessageSuccessUpdateProfile = "profile updated successfully"

	MessageFailedRegister      = "failed to register user"
	MessageFailedGetProfile    = "failed to get profile"
	MessageFailedUpdateProfile = "failed to update profile"

	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyRegistered = errors.New("user already registered")
	ErrInvalidRole           = errors.New("role must be donor or ngo")
)

type (
	RegisterUserRequest struct {
		Name                string `json:"name" validate:"required"`
		Role                string `json:"role" validate:"required,oneof=donor ngo"`
		Phone               string `json:"phone,omitempty"`
		Address             string `json:"address,omitempty"`
		OrganizationName    string `json:"organization_name,omitempty"`
		OrganizationDetails string `json:"organization_details,omitempty"`
	}

	// UpdateUserRequest never touches role or email; both are fixed at
	// registration time.
	UpdateUserRequest struct {
		Name                *string `form:"name"`
		Phone               *string `form:"phone"`
		Address             *string `form:"address"`
		OrganizationName    *string `form:"organization_name"`
		OrganizationDetails *string `form:"organization_details"`
	}

	UserResponse struct {
		ID                  string    `json:"id"`
		Name                string    `json:"name"`
		Email               string    `json:"email"`
		Role                string    `json:"role"`
		Phone               string    `json:"phone,omitempty"`
		Address             string    `json:"address,omitempty"`
		ProfileImage        string    `json:"profile_image,omitempty"`
		OrganizationName    string    `json:"organization_name,omitempty"`
		OrganizationDetails string    `json:"organization_details,omitempty"`
		EmailVerified       bool      `json:"email_verified"`
		CreatedAt           time.Time `json:"created_at"`
	}
)
