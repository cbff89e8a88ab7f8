// internal/accounts/service_test.go
package accounts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeRepository is an in-memory Repository for service tests
type fakeRepository struct {
	users  map[int64]*User
	nextID int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[int64]*User)}
}

func (f *fakeRepository) CreateUser(ctx context.Context, user *User) error {
	if taken, _ := f.IsUsernameTaken(ctx, user.Username); taken {
		return ErrUsernameAlreadyExists
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) IsEmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error) {
	for _, u := range f.users {
		if u.ID != userID && u.Email != nil && *u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) UpdateProfile(ctx context.Context, user *User) error {
	stored, ok := f.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	stored.Bio = user.Bio
	stored.Gender = user.Gender
	stored.ProfileImage = user.ProfileImage
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepository) SetVerifiedEmail(ctx context.Context, userID int64, email string) error {
	stored, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	stored.Email = &email
	stored.IsVerified = true
	stored.UpdatedAt = time.Now()
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepository, *MockEmailProvider) {
	t.Helper()
	repo := newFakeRepository()
	email := NewMockEmailProvider()
	svc := NewService(repo, nil, email, &Config{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		BCryptCost:         bcrypt.MinCost,
	})
	return svc, repo, email
}

func registerTestUser(t *testing.T, svc Service, username string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Username:        username,
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_AssignsPlaceholderEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)

	resp := registerTestUser(t, svc, "alice")

	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "alice", resp.User.Username)
	assert.False(t, resp.User.IsVerified)
	assert.NotEmpty(t, resp.Tokens.Access)
	assert.NotEmpty(t, resp.Tokens.Refresh)

	user, err := repo.GetUserByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "alice@placeholder.local", *user.Email)
	assert.False(t, user.HasRealEmail())
}

func TestRegister_LowercasesUsername(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Username:        "Alice",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username:        "alice",
		Password:        "password123",
		ConfirmPassword: "different456",
	})
	assert.Error(t, err)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "alice")

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username:        "alice",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username:        "alice",
		Password:        "short",
		ConfirmPassword: "short",
	})
	assert.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "alice")

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Tokens.Access)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc, "alice")

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: "alice",
		Password: "wrongpassword",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: "ghost",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_AccessTokenRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	claims, err := svc.ValidateToken(context.Background(), resp.Tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "access", claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokens_IssuesNewPair(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	pair, err := svc.RefreshTokens(context.Background(), resp.Tokens.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestRefreshTokens_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	_, err := svc.RefreshTokens(context.Background(), resp.Tokens.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens_RejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RefreshTokens(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	err := svc.Logout(context.Background(), resp.Tokens.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_WithoutRedisSucceeds(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	// Without Redis the blacklist degrades to a no-op
	err := svc.Logout(context.Background(), resp.Tokens.Refresh)
	assert.NoError(t, err)
}

func TestUpdateProfile_BioAndGender(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	bio := "hello world"
	gender := "F"
	profile, err := svc.UpdateProfile(context.Background(), resp.User.ID, &UpdateProfileRequest{
		Bio:    &bio,
		Gender: &gender,
	}, nil)
	require.NoError(t, err)

	require.NotNil(t, profile.Bio)
	assert.Equal(t, "hello world", *profile.Bio)
	require.NotNil(t, profile.Gender)
	assert.Equal(t, "F", *profile.Gender)
}

func TestUpdateProfile_RejectsInvalidGender(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	gender := "X"
	_, err := svc.UpdateProfile(context.Background(), resp.User.ID, &UpdateProfileRequest{
		Gender: &gender,
	}, nil)
	assert.Error(t, err)
}

func TestUpdateProfile_RejectsLongBio(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	bio := strings.Repeat("x", 151)
	_, err := svc.UpdateProfile(context.Background(), resp.User.ID, &UpdateProfileRequest{
		Bio: &bio,
	}, nil)
	assert.Error(t, err)
}

func TestUpdateProfile_SetsImage(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	url := "http://cdn/profile.jpg"
	profile, err := svc.UpdateProfile(context.Background(), resp.User.ID, &UpdateProfileRequest{}, &url)
	require.NoError(t, err)

	require.NotNil(t, profile.ProfileImageURL)
	assert.Equal(t, url, *profile.ProfileImageURL)
}

func TestVerifyEmail_SetsEmailAndVerifiedFlag(t *testing.T) {
	svc, repo, email := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	profile, err := svc.VerifyEmail(context.Background(), resp.User.ID, "Alice@Example.com")
	require.NoError(t, err)

	require.NotNil(t, profile.Email)
	assert.Equal(t, "alice@example.com", *profile.Email)
	assert.True(t, profile.IsVerified)

	user, err := repo.GetUserByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRealEmail())

	require.Len(t, email.SentEmails, 1)
	assert.Equal(t, "alice@example.com", email.SentEmails[0].To)
}

func TestVerifyEmail_RejectsEmailUsedByAnother(t *testing.T) {
	svc, _, _ := newTestService(t)
	alice := registerTestUser(t, svc, "alice")
	bob := registerTestUser(t, svc, "bob")

	_, err := svc.VerifyEmail(context.Background(), alice.User.ID, "shared@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyEmail(context.Background(), bob.User.ID, "shared@example.com")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestVerificationStatus_PlaceholderDoesNotCount(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := registerTestUser(t, svc, "alice")

	status, err := svc.GetVerificationStatus(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.False(t, status.IsVerified)
	assert.False(t, status.HasEmail)

	_, err = svc.VerifyEmail(context.Background(), resp.User.ID, "alice@example.com")
	require.NoError(t, err)

	status, err = svc.GetVerificationStatus(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.True(t, status.IsVerified)
	assert.True(t, status.HasEmail)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
