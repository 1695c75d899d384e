package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"organica/internal/models"
	"organica/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles local accounts for the storefront's auth widget.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		logger:     logger,
	}
}

// RegisterUser hashes the user's password and stores the account.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return storageErr("get user", err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return storageErr("get user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUser) {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
		}
		return storageErr("create user", err)
	}
	return nil
}

// LoginUser checks credentials and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", storageErr("get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// CurrentUser returns the account behind userID with the password hash removed.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storageErr("get user", err)
	}
	user.Password = ""
	return user, nil
}
