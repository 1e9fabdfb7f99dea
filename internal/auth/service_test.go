package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetix/internal/shared/config"
	"cinetix/internal/users"
)

type fakeUserRepo struct {
	byEmail map[string]*users.User
	byID    map[string]*users.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*users.User),
		byID:    make(map[string]*users.User),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *users.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return ErrUserAlreadyExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID.String()] = user
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*users.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*users.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserRepo) UpdateUserPassword(_ context.Context, userID string, hashedPassword string) error {
	user, ok := f.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeUserRepo) UpdateMembership(_ context.Context, userID string, membershipTierID *string) error {
	user, ok := f.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	if membershipTierID == nil {
		user.MembershipTierID = nil
		return nil
	}
	tierID, err := uuid.Parse(*membershipTierID)
	if err != nil {
		return err
	}
	user.MembershipTierID = &tierID
	return nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func registerTestUser(t *testing.T, svc Service) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Greta",
		LastName:  "Holt",
		Email:     "greta@example.com",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig())

	registered := registerTestUser(t, svc)
	assert.Equal(t, string(users.RoleUser), registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	loggedIn, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "greta@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig())

	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "greta@example.com",
		Password:  "another-pass",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig())

	registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "greta@example.com",
		Password: "wrong-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig())

	registered := registerTestUser(t, svc)

	claims, err := svc.ValidateToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "greta@example.com", claims.Email)
	assert.Equal(t, "access", claims.Type)
	assert.Nil(t, claims.MembershipID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testConfig())

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenCarriesMembershipClaim(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig())

	registered := registerTestUser(t, svc)

	tierID := uuid.New().String()
	require.NoError(t, repo.UpdateMembership(context.Background(), registered.User.ID, &tierID))

	// The refresh flow re-reads the user, so the new access token picks up
	// the membership claim.
	pair, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.MembershipID)
	assert.Equal(t, tierID, *claims.MembershipID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig())

	registered := registerTestUser(t, svc)

	_, err := svc.RefreshToken(context.Background(), registered.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testConfig())

	registered := registerTestUser(t, svc)

	err := svc.ChangePassword(context.Background(), registered.User.ID, &ChangePasswordRequest{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "new-pass-123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "greta@example.com",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "greta@example.com",
		Password: "new-pass-123",
	})
	assert.NoError(t, err)
}
