// api/service/auth_service.go
package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mealcraft/api/auth"
	"github.com/mealcraft/api/dao"
	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
)

// IAuthService defines the interface for credential authentication
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthService exchanges local credentials for a signed token carrying the
// user's roles, region and access control groups.
type AuthService struct {
	userDAO *dao.UserDAO
	issuer  *auth.Issuer
}

var _ IAuthService = &AuthService{}

func NewAuthService(userDAO *dao.UserDAO, issuer *auth.Issuer) *AuthService {
	return &AuthService{userDAO: userDAO, issuer: issuer}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		if err == mealcraft_errors.ErrUserNotFound {
			return "", mealcraft_errors.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Login failed", zap.String("email", email))
		return "", mealcraft_errors.ErrInvalidCredentials
	}

	token, err := s.issuer.IssueToken(user.Email, user.Roles, user.Region, user.AccessControlGroups)
	if err != nil {
		return "", err
	}

	logger.Info("User logged in", zap.String("email", email))
	return token, nil
}
