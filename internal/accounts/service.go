// internal/accounts/service.go
// Business logic for registration, authentication and profile management

package accounts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/instaclone/backend/internal/common/utils"
)

// Common errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already used by another account")
	ErrInvalidToken          = errors.New("invalid token")
)

// Service interface
type Service interface {
	// Registration and authentication
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)

	// Profile
	GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest, imageURL *string) (*ProfileResponse, error)

	// Email verification
	VerifyEmail(ctx context.Context, userID int64, email string) (*ProfileResponse, error)
	GetVerificationStatus(ctx context.Context, userID int64) (*VerificationStatus, error)
}

// Config holds service configuration
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
}

// service implementation
type service struct {
	repo   Repository
	redis  *redis.Client
	email  EmailProvider
	config *Config
}

// NewService creates a new accounts service
func NewService(repo Repository, redisClient *redis.Client, email EmailProvider, config *Config) Service {
	return &service{
		repo:   repo,
		redis:  redisClient,
		email:  email,
		config: config,
	}
}

// Register creates a new account with a placeholder email and issues tokens
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, errors.New("passwords do not match")
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	if taken, err := s.repo.IsUsernameTaken(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, ErrUsernameAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The placeholder address is not a deliverable contact; it only keeps
	// the email column unique until verification adds a real one.
	placeholder := fmt.Sprintf("%s@%s", username, PlaceholderEmailDomain)

	user := &User{
		Username:     username,
		Email:        &placeholder,
		PasswordHash: string(hashed),
		IsVerified:   false,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Message: "User registered successfully",
		User:    user.Basic(),
		Tokens:  tokens,
	}, nil
}

// Login authenticates a user by username and password
func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Message: "Login successful",
		User:    user.Basic(),
		Tokens:  tokens,
	}, nil
}

// Logout blacklists the refresh token until its natural expiry
func (s *service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := utils.ValidateJWT(refreshToken, s.config.JWTSecret)
	if err != nil || claims.Type != "refresh" {
		return ErrInvalidToken
	}

	return s.blacklistToken(ctx, claims)
}

// RefreshTokens exchanges a valid, non-blacklisted refresh token for a new pair
func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.config.JWTSecret)
	if err != nil || claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}

	blacklisted, err := s.isTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// ValidateToken validates any token and returns its claims
func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	return utils.ValidateJWT(token, s.config.JWTSecret)
}

// GetProfile returns the full profile for a user
func (s *service) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// UpdateProfile updates bio/gender and optionally the profile image
func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest, imageURL *string) (*ProfileResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Gender != nil {
		user.Gender = req.Gender
	}
	if imageURL != nil {
		user.ProfileImage = imageURL
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user.Profile(), nil
}

// VerifyEmail attaches a real email to the account, marks it verified and
// sends the confirmation email
func (s *service) VerifyEmail(ctx context.Context, userID int64, email string) (*ProfileResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	taken, err := s.repo.IsEmailTakenByOther(ctx, email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailAlreadyExists
	}

	if err := s.repo.SetVerifiedEmail(ctx, userID, email); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.email.SendEmail(ctx, NewVerificationEmail(user.Username, email)); err != nil {
		// The account is already verified at this point; a delivery failure
		// should not roll that back.
		log.Printf("Failed to send verification email to %s: %v", email, err)
	}

	return user.Profile(), nil
}

// GetVerificationStatus reports verification state; placeholder addresses
// do not count as having an email
func (s *service) GetVerificationStatus(ctx context.Context, userID int64) (*VerificationStatus, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &VerificationStatus{
		IsVerified: user.IsVerified,
		HasEmail:   user.HasRealEmail(),
	}, nil
}

// Helper functions

func (s *service) issueTokens(user *User) (*TokenPair, error) {
	access, err := s.generateToken(user, "access", s.config.AccessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.generateToken(user, "refresh", s.config.RefreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *service) generateToken(user *User, tokenType string, expiry time.Duration) (string, error) {
	claims := &utils.JWTClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Type:      tokenType,
		ExpiresAt: time.Now().Add(expiry).Unix(),
		IssuedAt:  time.Now().Unix(),
		NotBefore: time.Now().Unix(),
		Issuer:    "instaclone-backend",
		Subject:   fmt.Sprintf("%d", user.ID),
		ID:        uuid.New().String(),
	}

	return utils.GenerateJWT(claims, s.config.JWTSecret)
}

func (s *service) blacklistToken(ctx context.Context, claims *utils.JWTClaims) error {
	if s.redis == nil {
		// Without Redis the token simply expires on its own schedule.
		return nil
	}

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}

	key := fmt.Sprintf("token_blacklist:%s", claims.ID)
	return s.redis.Set(ctx, key, claims.UserID, ttl).Err()
}

func (s *service) isTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}

	key := fmt.Sprintf("token_blacklist:%s", jti)
	_, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return true, nil
}
