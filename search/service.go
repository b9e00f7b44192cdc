// api/search/service.go
package search

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/util"
)

// Service keeps the recipe search index in sync with recipe lifecycle
// events and answers search queries.
type Service interface {
	SearchByName(ctx context.Context, name string) ([]*model.Recipe, error)
	SearchByRegion(ctx context.Context, region string) ([]*model.Recipe, error)
}

type service struct {
	repo     Repository
	eventBus *util.EventBus
}

func NewService(repo Repository, eventBus *util.EventBus) Service {
	svc := &service{repo: repo, eventBus: eventBus}
	svc.subscribeToEvents()
	return svc
}

func (s *service) subscribeToEvents() {
	upsert := func(ctx context.Context, event util.Event) error {
		recipe, ok := event.Payload.(*model.Recipe)
		if !ok {
			logger.Warn("Unexpected payload type on recipe event", zap.String("type", event.Type))
			return nil
		}
		if err := s.repo.IndexRecipe(ctx, recipe); err != nil {
			logger.Error("Failed to index recipe",
				zap.Error(err),
				zap.String("recipeID", recipe.ID))
			return err
		}
		return nil
	}

	s.eventBus.Subscribe(util.TopicRecipeCreated, upsert)
	s.eventBus.Subscribe(util.TopicRecipeUpdated, upsert)
	s.eventBus.Subscribe(util.TopicRecipeDeleted, func(ctx context.Context, event util.Event) error {
		recipe, ok := event.Payload.(*model.Recipe)
		if !ok {
			logger.Warn("Unexpected payload type on recipe event", zap.String("type", event.Type))
			return nil
		}
		if err := s.repo.DeleteRecipe(ctx, recipe.ID); err != nil {
			logger.Error("Failed to remove recipe from index",
				zap.Error(err),
				zap.String("recipeID", recipe.ID))
			return err
		}
		return nil
	})
}

func (s *service) SearchByName(ctx context.Context, name string) ([]*model.Recipe, error) {
	return s.repo.SearchByName(ctx, name)
}

func (s *service) SearchByRegion(ctx context.Context, region string) ([]*model.Recipe, error) {
	return s.repo.SearchByRegion(ctx, region)
}
