package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yashrajoria/storefront-service/auth"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const birthdateLayout = "2006-01-02"

type UserService interface {
	// Register creates an account with an empty cart and returns its id.
	Register(ctx context.Context, req *models.RegisterRequest) (string, *ServiceError)
	// Authenticate checks the credentials and returns a session token.
	Authenticate(ctx context.Context, email, password string) (string, *ServiceError)
	GetProfile(ctx context.Context, userID string) (*models.Profile, *ServiceError)
}

type userServiceImpl struct {
	accounts repository.AccountRepository
	tokens   auth.TokenManager
	hashCost int
	logger   *zap.Logger
}

func NewUserService(accounts repository.AccountRepository, tokens auth.TokenManager, logger *zap.Logger) UserService {
	return &userServiceImpl{
		accounts: accounts,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
	}
}

func invalidCredentials() *ServiceError {
	return &ServiceError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "invalid email or password"}
}

func (s *userServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (string, *ServiceError) {
	birthdate, err := time.Parse(birthdateLayout, strings.TrimSpace(req.Birthdate))
	if err != nil {
		return "", InvalidInput("birthdate must be formatted as YYYY-MM-DD")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return "", Internal("failed to register user", err)
	}

	account := &models.Account{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Surname:      req.Surname,
		Address:      req.Address,
		Birthdate:    birthdate,
		Role:         auth.RoleUser,
		CartItems:    []models.CartItem{},
		Orders:       []string{},
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", &ServiceError{StatusCode: http.StatusBadRequest, Code: CodeUserExists, Message: "a user with this email already exists"}
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return "", StorageUnavailable("failed to register user", err)
	}

	s.logger.Info("User registered", zap.String("user_id", account.ID))
	return account.ID, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (string, *ServiceError) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", invalidCredentials()
		}
		return "", StorageUnavailable("failed to load account", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", invalidCredentials()
	}

	if s.tokens == nil {
		return "", NotImplemented("token sign-in is disabled")
	}
	token, err := s.tokens.Issue(auth.Claims{UserID: account.ID, Email: account.Email, Role: account.Role})
	if err != nil {
		s.logger.Error("Failed to issue token", zap.String("user_id", account.ID), zap.Error(err))
		return "", Internal("failed to sign in", err)
	}
	return token, nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*models.Profile, *ServiceError) {
	if !models.IsValidID(userID) {
		return nil, InvalidInput("invalid user id")
	}
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, fromRepository(err, "account not found")
	}
	profile := account.Profile()
	return &profile, nil
}
