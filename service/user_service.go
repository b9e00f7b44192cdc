// api/service/user_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mealcraft/api/dao"
	"github.com/mealcraft/api/db"
	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/util"
)

// IUserService defines the interface for user operations
type IUserService interface {
	RegisterUser(ctx context.Context, user model.User, password string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserAttributes(ctx context.Context, email string) (*db.UserAttributes, error)
	UpdateAccessControlGroups(ctx context.Context, email string, acgs []string) error
	UpdateCommunitiesOfInterest(ctx context.Context, email string, cois []string) error
}

// AttributeDirectory resolves and mutates the provider-managed user
// attributes.
type AttributeDirectory interface {
	GetAccessControlGroupsByEmail(ctx context.Context, email string) ([]string, error)
	GetCommunitiesOfInterestByEmail(ctx context.Context, email string) ([]string, error)
	GetRegionByEmail(ctx context.Context, email string) (string, error)
	UpdateUserACGs(ctx context.Context, email string, acgs []string) error
	UpdateUserCOIs(ctx context.Context, email string, cois []string) error
}

// UserService handles business logic for user operations. The identity
// provider is the source of truth for access control groups, communities
// of interest and region; resolved attributes are kept in the encrypted
// cache until the next mutation.
type UserService struct {
	userDAO        *dao.UserDAO
	directory      AttributeDirectory
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
}

var _ IUserService = &UserService{}

// NewUserService creates a new instance of UserService
func NewUserService(userDAO *dao.UserDAO, directory AttributeDirectory, validationUtil *util.ValidationUtil, cacheService *util.CacheService) *UserService {
	return &UserService{
		userDAO:        userDAO,
		directory:      directory,
		validationUtil: validationUtil,
		cacheService:   cacheService,
	}
}

func (s *UserService) RegisterUser(ctx context.Context, user model.User, password string) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, mealcraft_errors.ErrInvalidUserData
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	if len(user.Roles) == 0 {
		user.Roles = []string{"ROLE_USER"}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	userID, err := s.userDAO.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = userID

	return &user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userDAO.GetUserByEmail(ctx, email)
}

func (s *UserService) GetUserAttributes(ctx context.Context, email string) (*db.UserAttributes, error) {
	if cached, err := s.cacheService.GetUserAttributes(ctx, email); err == nil && cached != nil {
		return cached, nil
	}

	attrs, err := s.resolveAttributes(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetUserAttributes(ctx, *attrs); err != nil {
		logger.Warn("Failed to cache user attributes", zap.Error(err), zap.String("email", email))
	}

	return attrs, nil
}

func (s *UserService) UpdateAccessControlGroups(ctx context.Context, email string, acgs []string) error {
	if err := s.directory.UpdateUserACGs(ctx, email, acgs); err != nil {
		return err
	}
	s.syncLocalUser(ctx, email, func(u *model.User) { u.AccessControlGroups = acgs })
	return s.evictAttributes(ctx, email)
}

func (s *UserService) UpdateCommunitiesOfInterest(ctx context.Context, email string, cois []string) error {
	if err := s.directory.UpdateUserCOIs(ctx, email, cois); err != nil {
		return err
	}
	s.syncLocalUser(ctx, email, func(u *model.User) { u.CommunitiesOfInterest = cois })
	return s.evictAttributes(ctx, email)
}

// resolveAttributes asks the identity provider first and falls back to the
// local user record when the provider does not know the user.
func (s *UserService) resolveAttributes(ctx context.Context, email string) (*db.UserAttributes, error) {
	acgs, acgErr := s.directory.GetAccessControlGroupsByEmail(ctx, email)
	if acgErr == nil {
		cois, err := s.directory.GetCommunitiesOfInterestByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		region, err := s.directory.GetRegionByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &db.UserAttributes{
			Email:                 email,
			Region:                region,
			AccessControlGroups:   acgs,
			CommunitiesOfInterest: cois,
		}, nil
	}

	logger.Warn("Falling back to local user record for attributes",
		zap.Error(acgErr),
		zap.String("email", email))

	user, err := s.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &db.UserAttributes{
		Email:                 user.Email,
		Region:                user.Region,
		AccessControlGroups:   user.AccessControlGroups,
		CommunitiesOfInterest: user.CommunitiesOfInterest,
	}, nil
}

func (s *UserService) syncLocalUser(ctx context.Context, email string, mutate func(*model.User)) {
	user, err := s.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		if err != mealcraft_errors.ErrUserNotFound {
			logger.Warn("Failed to load local user for sync", zap.Error(err), zap.String("email", email))
		}
		return
	}
	mutate(user)
	user.UpdatedAt = time.Now()
	if _, err := s.userDAO.UpdateUser(ctx, *user); err != nil {
		logger.Warn("Failed to sync local user record", zap.Error(err), zap.String("email", email))
	}
}

func (s *UserService) evictAttributes(ctx context.Context, email string) error {
	if err := s.cacheService.DeleteUserAttributes(ctx, email); err != nil {
		logger.Warn("Failed to evict cached user attributes", zap.Error(err), zap.String("email", email))
	}
	return nil
}
