package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/auth"
	"github.com/Varun5711/expense-tracker/internal/logger"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
	"github.com/Varun5711/expense-tracker/internal/storage"
	"github.com/Varun5711/expense-tracker/internal/validation"
)

const (
	msgRegistered         = "User registered successfully"
	msgUsernameTaken      = "Username already taken"
	msgEmailTaken         = "Email already in use"
	msgInvalidCredentials = "Invalid credentials"
)

type IdentityService struct {
	users      storage.UserStore
	hasher     *auth.PasswordHasher
	jwtManager *auth.JWTManager
	log        *logger.Logger
}

func NewIdentityService(users storage.UserStore, hasher *auth.PasswordHasher, jwtManager *auth.JWTManager, log *logger.Logger) *IdentityService {
	return &IdentityService{
		users:      users,
		hasher:     hasher,
		jwtManager: jwtManager,
		log:        log,
	}
}

func (s *IdentityService) Register(ctx context.Context, req usermodel.RegisterRequest) (*usermodel.RegisterResponse, error) {
	if err := validation.ValidateRegister(req); err != nil {
		return nil, err
	}

	existing, err := s.users.FindUserByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		if existing.Username == req.Username {
			return nil, apperr.Conflict(msgUsernameTaken)
		}
		return nil, apperr.Conflict(msgEmailTaken)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, req.Username, req.Email, passwordHash)
	switch {
	case errors.Is(err, storage.ErrDuplicateUsername):
		return nil, apperr.Conflict(msgUsernameTaken)
	case errors.Is(err, storage.ErrDuplicateEmail):
		return nil, apperr.Conflict(msgEmailTaken)
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logger.Fields{"user_id": user.ID}).Info("Registered user %s", user.Username)

	return &usermodel.RegisterResponse{Message: msgRegistered}, nil
}

func (s *IdentityService) Login(ctx context.Context, req usermodel.LoginRequest) (*usermodel.LoginResponse, error) {
	if err := validation.ValidateLogin(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	ok, err := s.hasher.Matches(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, _, err := s.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &usermodel.LoginResponse{Token: token}, nil
}
