package service

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byUsername   map[string]*domain.User
	byID         map[int64]*domain.User
	nextID       int64
	loggedOut    []int64
	derivTaken   map[string]bool
	usernameUsed map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byUsername:   make(map[string]*domain.User),
		byID:         make(map[int64]*domain.User),
		derivTaken:   make(map[string]bool),
		usernameUsed: make(map[string]bool),
	}
}

func (f *fakeUserRepo) CreateUser(username, email, derivAccount, hashedPassword string, currency domain.Currency) (int64, error) {
	if f.usernameUsed[username] {
		return 0, domain.ErrUserExists
	}
	if f.derivTaken[derivAccount] {
		return 0, domain.ErrAccountTaken
	}
	f.nextID++
	user := &domain.User{
		ID:              f.nextID,
		Username:        username,
		Email:           email,
		Password:        hashedPassword,
		DerivAccount:    derivAccount,
		DefaultCurrency: currency,
	}
	f.byUsername[username] = user
	f.byID[user.ID] = user
	f.usernameUsed[username] = true
	f.derivTaken[derivAccount] = true
	return user.ID, nil
}

func (f *fakeUserRepo) User(username string) (*domain.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return nil, domain.ErrIncorrectCredentials
	}
	return user, nil
}

func (f *fakeUserRepo) UserByID(id int64) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) DeactivateUserSessions(userID int64) error {
	f.loggedOut = append(f.loggedOut, userID)
	return nil
}

func userTestConfig() *config.Config {
	return &config.Config{PrivateKey: "test-key"}
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	srv := NewUserService(repo, userTestConfig())

	user, token, err := srv.Register("trader42", "t@example.com", "CR90210", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret", user.Password, "password must be stored hashed")

	loggedIn, token, err := srv.Login("trader42", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	var claims jwt.StandardClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-key"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
}

func TestRegisterDuplicateDerivAccount(t *testing.T) {
	repo := newFakeUserRepo()
	srv := NewUserService(repo, userTestConfig())

	_, _, err := srv.Register("trader42", "t@example.com", "CR90210", "secret")
	require.NoError(t, err)

	_, _, err = srv.Register("other", "o@example.com", "CR90210", "secret")
	assert.ErrorIs(t, err, domain.ErrAccountTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	srv := NewUserService(repo, userTestConfig())

	_, _, err := srv.Register("trader42", "t@example.com", "CR90210", "secret")
	require.NoError(t, err)

	_, _, err = srv.Login("trader42", "not-it")
	assert.ErrorIs(t, err, domain.ErrIncorrectCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	srv := NewUserService(newFakeUserRepo(), userTestConfig())

	_, _, err := srv.Login("ghost", "whatever")
	assert.ErrorIs(t, err, domain.ErrIncorrectCredentials)
}

func TestLogoutDeactivatesSessions(t *testing.T) {
	repo := newFakeUserRepo()
	srv := NewUserService(repo, userTestConfig())

	require.NoError(t, srv.Logout(7))
	assert.Equal(t, []int64{7}, repo.loggedOut)
}
