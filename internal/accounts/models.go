// internal/accounts/models.go
// Data structures for user identity, auth and profile management

package accounts

import (
	"strings"
	"time"
)

// PlaceholderEmailDomain is the domain assigned to accounts at registration
// until a real address is added through email verification.
const PlaceholderEmailDomain = "placeholder.local"

// User represents a user account
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        *string   `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Bio          *string   `json:"bio" db:"bio"`
	ProfileImage *string   `json:"image" db:"profile_image"`
	Gender       *string   `json:"gender" db:"gender"` // 'M' or 'F'
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasRealEmail reports whether the account has an address other than the
// registration placeholder.
func (u *User) HasRealEmail() bool {
	return u.Email != nil && !strings.HasSuffix(*u.Email, "@"+PlaceholderEmailDomain)
}

// UserBasic is the compact user representation embedded in auth responses
type UserBasic struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	ProfileImageURL *string `json:"profile_image_url"`
	IsVerified      bool    `json:"is_verified"`
}

// Basic converts a User to its compact representation
func (u *User) Basic() *UserBasic {
	return &UserBasic{
		ID:              u.ID,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImage,
		IsVerified:      u.IsVerified,
	}
}

// ProfileResponse is the full profile payload
type ProfileResponse struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           *string   `json:"email"`
	Bio             *string   `json:"bio"`
	Image           *string   `json:"image"`
	ProfileImageURL *string   `json:"profile_image_url"`
	Gender          *string   `json:"gender"`
	IsVerified      bool      `json:"is_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profile builds the profile payload for a user
func (u *User) Profile() *ProfileResponse {
	return &ProfileResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Bio:             u.Bio,
		Image:           u.ProfileImage,
		ProfileImageURL: u.ProfileImage,
		Gender:          u.Gender,
		IsVerified:      u.IsVerified,
		CreatedAt:       u.CreatedAt,
	}
}

// RegisterRequest is what the client sends to create an account
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password        string `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest authenticates with username and password
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token for logout and token refresh
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// UpdateProfileRequest updates the mutable profile fields.
// Email is not writable here; it only changes through email verification.
type UpdateProfileRequest struct {
	Bio    *string `json:"bio" validate:"omitempty,max=150"`
	Gender *string `json:"gender" validate:"omitempty,oneof=M F"`
}

// EmailVerificationRequest adds a real email to the account
type EmailVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TokenPair is the issued access/refresh pair
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is returned from register and login
type AuthResponse struct {
	Message string     `json:"message"`
	User    *UserBasic `json:"user"`
	Tokens  *TokenPair `json:"tokens"`
}

// VerificationStatus reports account verification state
type VerificationStatus struct {
	IsVerified bool `json:"is_verified"`
	HasEmail   bool `json:"has_email"`
}
