// api/util/cache_service.go

package util

import (
	"context"

	"github.com/mealcraft/api/db"
	"github.com/mealcraft/api/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetRecipe(ctx context.Context, recipeID string) (*model.Recipe, error) {
	return db.GetCachedRecipe(ctx, recipeID)
}

func (c *CacheService) SetRecipe(ctx context.Context, recipe model.Recipe) error {
	return db.CacheRecipe(ctx, &recipe)
}

func (c *CacheService) DeleteRecipe(ctx context.Context, recipeID string) error {
	return db.DeleteCachedRecipe(ctx, recipeID)
}

func (c *CacheService) GetUserAttributes(ctx context.Context, email string) (*db.UserAttributes, error) {
	return db.GetCachedUserAttributes(ctx, email)
}

func (c *CacheService) SetUserAttributes(ctx context.Context, attrs db.UserAttributes) error {
	return db.CacheUserAttributes(ctx, &attrs)
}

func (c *CacheService) DeleteUserAttributes(ctx context.Context, email string) error {
	return db.DeleteCachedUserAttributes(ctx, email)
}
