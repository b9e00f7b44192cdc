// api/service/recipe_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mealcraft/api/abac"
	"github.com/mealcraft/api/audit"
	"github.com/mealcraft/api/dao"
	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/util"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe model.Recipe, identity *model.Identity) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe model.Recipe, identity *model.Identity) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, recipeID string, identity *model.Identity) error
	GetRecipe(ctx context.Context, recipeID string, identity *model.Identity) (*model.Recipe, error)
	ListRecipes(ctx context.Context, identity *model.Identity, limit int, offset int) ([]*model.Recipe, error)
	ListRecipesByRegion(ctx context.Context, region string, identity *model.Identity) ([]*model.Recipe, error)
}

// RecipeService handles business logic for recipe operations, including
// the access decision on every read.
type RecipeService struct {
	recipeDAO      *dao.RecipeDAO
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
	auditService   audit.Service
	eventBus       *util.EventBus
}

var _ IRecipeService = &RecipeService{}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(recipeDAO *dao.RecipeDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, auditService audit.Service, eventBus *util.EventBus) *RecipeService {
	return &RecipeService{
		recipeDAO:      recipeDAO,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		auditService:   auditService,
		eventBus:       eventBus,
	}
}

func (s *RecipeService) CreateRecipe(ctx context.Context, recipe model.Recipe, identity *model.Identity) (*model.Recipe, error) {
	if identity == nil {
		return nil, mealcraft_errors.ErrUnauthorized
	}
	if err := s.validationUtil.ValidateRecipe(recipe); err != nil {
		return nil, err
	}

	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	if recipe.Author == "" {
		recipe.Author = identity.DisplayName
	}

	recipeID, err := s.recipeDAO.CreateRecipe(ctx, recipe)
	if err != nil {
		return nil, err
	}
	recipe.ID = recipeID

	if err := s.cacheService.SetRecipe(ctx, recipe); err != nil {
		logger.Warn("Failed to cache recipe", zap.Error(err), zap.String("recipeID", recipeID))
	}

	s.eventBus.Publish(ctx, util.TopicRecipeCreated, &recipe)

	return &recipe, nil
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, recipe model.Recipe, identity *model.Identity) (*model.Recipe, error) {
	existing, err := s.recipeDAO.GetRecipe(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(ctx, existing, identity, "UPDATE_RECIPE"); err != nil {
		return nil, err
	}
	if err := s.validationUtil.ValidateRecipe(recipe); err != nil {
		return nil, err
	}

	recipe.OwnerEmail = existing.OwnerEmail
	recipe.CreatedAt = existing.CreatedAt
	recipe.UpdatedAt = time.Now()

	updated, err := s.recipeDAO.UpdateRecipe(ctx, recipe)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetRecipe(ctx, *updated); err != nil {
		logger.Warn("Failed to cache recipe", zap.Error(err), zap.String("recipeID", updated.ID))
	}

	s.eventBus.Publish(ctx, util.TopicRecipeUpdated, updated)

	return updated, nil
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID string, identity *model.Identity) error {
	existing, err := s.recipeDAO.GetRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if err := s.authorizeWrite(ctx, existing, identity, "DELETE_RECIPE"); err != nil {
		return err
	}

	if err := s.recipeDAO.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}

	if err := s.cacheService.DeleteRecipe(ctx, recipeID); err != nil {
		logger.Warn("Failed to evict recipe from cache", zap.Error(err), zap.String("recipeID", recipeID))
	}

	s.eventBus.Publish(ctx, util.TopicRecipeDeleted, existing)

	return nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, recipeID string, identity *model.Identity) (*model.Recipe, error) {
	recipe, err := s.cacheService.GetRecipe(ctx, recipeID)
	if err != nil || recipe == nil {
		recipe, err = s.recipeDAO.GetRecipe(ctx, recipeID)
		if err != nil {
			return nil, err
		}
		if cacheErr := s.cacheService.SetRecipe(ctx, *recipe); cacheErr != nil {
			logger.Warn("Failed to cache recipe", zap.Error(cacheErr), zap.String("recipeID", recipeID))
		}
	}

	if !abac.CanAccessIdentity(recipe, identity) {
		s.logDecision(ctx, identity, "READ_RECIPE", recipeID, false, "access control groups do not intersect")
		return nil, mealcraft_errors.ErrForbidden
	}

	s.logDecision(ctx, identity, "READ_RECIPE", recipeID, true, "")
	return recipe, nil
}

func (s *RecipeService) ListRecipes(ctx context.Context, identity *model.Identity, limit int, offset int) ([]*model.Recipe, error) {
	recipes, err := s.recipeDAO.ListRecipes(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.filterForIdentity(recipes, identity), nil
}

func (s *RecipeService) ListRecipesByRegion(ctx context.Context, region string, identity *model.Identity) ([]*model.Recipe, error) {
	recipes, err := s.recipeDAO.ListRecipesByRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	return s.filterForIdentity(recipes, identity), nil
}

func (s *RecipeService) filterForIdentity(recipes []*model.Recipe, identity *model.Identity) []*model.Recipe {
	if identity == nil {
		return abac.FilterRecipes(recipes, nil, false)
	}
	return abac.FilterRecipes(recipes, identity.AccessControlGroups, identity.IsAdmin())
}

// authorizeWrite allows mutation only by the recipe owner or an admin.
func (s *RecipeService) authorizeWrite(ctx context.Context, recipe *model.Recipe, identity *model.Identity, action string) error {
	if identity == nil {
		return mealcraft_errors.ErrUnauthorized
	}
	if identity.IsAdmin() || identity.SubjectID == recipe.OwnerEmail {
		return nil
	}
	s.logDecision(ctx, identity, action, recipe.ID, false, "not owner or admin")
	return mealcraft_errors.ErrForbidden
}

func (s *RecipeService) logDecision(ctx context.Context, identity *model.Identity, action, recipeID string, granted bool, reason string) {
	userID := "anonymous"
	if identity != nil {
		userID = identity.SubjectID
	}
	log := audit.AccessLog{
		Timestamp:     time.Now(),
		UserID:        userID,
		Action:        action,
		RecipeID:      recipeID,
		AccessGranted: granted,
		Reason:        reason,
	}
	if err := s.auditService.LogAccess(ctx, log); err != nil {
		logger.Error("Failed to log access decision", zap.Error(err), zap.String("recipeID", recipeID))
	}
}
