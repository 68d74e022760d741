package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dgrijalva/jwt-go"
	"github.com/ekipchirchir/instatransfer/internal/config"
	"github.com/ekipchirchir/instatransfer/internal/domain"
	"github.com/ekipchirchir/instatransfer/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	CreateUser(username, email, derivAccount, hashedPassword string, currency domain.Currency) (int64, error)
	User(username string) (*domain.User, error)
	UserByID(id int64) (*domain.User, error)
	DeactivateUserSessions(userID int64) error
}

type UserService struct {
	config *config.Config
	repo   UserRepository
}

func NewUserService(repo UserRepository, config *config.Config) *UserService {
	return &UserService{
		repo:   repo,
		config: config,
	}
}

func (s *UserService) Register(username, email, derivAccount, password string) (*domain.User, string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.Warn("error while hashing password")
		return nil, "", fmt.Errorf("error while hashing password: %w", err)
	}

	userID, err := s.repo.CreateUser(username, email, derivAccount, string(hashedPassword), domain.CurrencyUSD)
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.UserByID(userID)
	if err != nil {
		return nil, "", err
	}

	token, err := generateJWTToken(userID, s.config.PrivateKey)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *UserService) Login(username, password string) (*domain.User, string, error) {
	user, err := s.repo.User(username)
	if err != nil {
		if errors.Is(err, domain.ErrIncorrectCredentials) {
			logger.Log.Warn("incorrect login", logger.String("username", username))
		}
		return nil, "", err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		logger.Log.Warn("incorrect password", logger.String("username", username))
		return nil, "", domain.ErrIncorrectCredentials
	}

	token, err := generateJWTToken(user.ID, s.config.PrivateKey)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *UserService) User(userID int64) (*domain.User, error) {
	return s.repo.UserByID(userID)
}

// Logout closes the user's live sessions; the bearer token itself simply ages
// out.
func (s *UserService) Logout(userID int64) error {
	return s.repo.DeactivateUserSessions(userID)
}

func generateJWTToken(userID int64, privateKey string) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(privateKey))
	if err != nil {
		return "", fmt.Errorf("error while signing token: %w", err)
	}

	return signedToken, nil
}
