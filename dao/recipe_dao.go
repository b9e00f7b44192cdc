// api/dao/recipe_dao.go
package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/mealcraft/api/audit"
	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	helper_util "github.com/mealcraft/api/util/helper"
)

type RecipeDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewRecipeDAO(driver neo4j.Driver, auditService audit.Service) *RecipeDAO {
	dao := &RecipeDAO{Driver: driver, AuditService: auditService}
	// Ensure unique constraint on Recipe ID
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Recipe", zap.Error(err))
	}
	return dao
}

func (dao *RecipeDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Recipe ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_recipe_id IF NOT EXISTS
        FOR (r:Recipe) REQUIRE r.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Recipe ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *RecipeDAO) CreateRecipe(ctx context.Context, recipe model.Recipe) (string, error) {
	start := time.Now()
	logger.Info("Creating new recipe", zap.String("name", recipe.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (r:Recipe {id: $id})
        ON CREATE SET r += $props
        ON MATCH SET r += $props
        RETURN r.id as id
        `

		params := map[string]interface{}{
			"id":    recipe.ID,
			"props": recipeProps(&recipe),
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, mealcraft_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create recipe",
			zap.Error(err),
			zap.String("name", recipe.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	recipeID := result.(string)
	logger.Info("Recipe created successfully",
		zap.String("recipeID", recipeID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AccessLog{
		Timestamp:     time.Now(),
		UserID:        RequestingUser(ctx),
		Action:        "CREATE_RECIPE",
		RecipeID:      recipeID,
		AccessGranted: true,
		ChangeDetails: recipeChangeDetails(nil, &recipe),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return recipeID, nil
}

func (dao *RecipeDAO) UpdateRecipe(ctx context.Context, recipe model.Recipe) (*model.Recipe, error) {
	start := time.Now()
	logger.Info("Updating recipe", zap.String("recipeID", recipe.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldRecipe, err := dao.GetRecipe(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}

	updated, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:Recipe {id: $id})
        SET r += $props
        RETURN r
        `
		params := map[string]interface{}{
			"id":    recipe.ID,
			"props": recipeProps(&recipe),
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return mapNodeToRecipe(node), nil
		}

		return nil, mealcraft_errors.ErrRecipeNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update recipe",
			zap.Error(err),
			zap.String("recipeID", recipe.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	updatedRecipe := updated.(*model.Recipe)
	logger.Info("Recipe updated successfully",
		zap.String("recipeID", recipe.ID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AccessLog{
		Timestamp:     time.Now(),
		UserID:        RequestingUser(ctx),
		Action:        "UPDATE_RECIPE",
		RecipeID:      recipe.ID,
		AccessGranted: true,
		ChangeDetails: recipeChangeDetails(oldRecipe, updatedRecipe),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedRecipe, nil
}

func (dao *RecipeDAO) DeleteRecipe(ctx context.Context, recipeID string) error {
	start := time.Now()
	logger.Info("Deleting recipe", zap.String("recipeID", recipeID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:Recipe {id: $id})
        DETACH DELETE r
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": recipeID})
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		summary, err := result.Consume()
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		if summary.Counters().NodesDeleted() == 0 {
			return nil, mealcraft_errors.ErrRecipeNotFound
		}

		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete recipe",
			zap.Error(err),
			zap.String("recipeID", recipeID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Recipe deleted successfully",
		zap.String("recipeID", recipeID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AccessLog{
		Timestamp:     time.Now(),
		UserID:        RequestingUser(ctx),
		Action:        "DELETE_RECIPE",
		RecipeID:      recipeID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *RecipeDAO) GetRecipe(ctx context.Context, recipeID string) (*model.Recipe, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:Recipe {id: $id})
    RETURN r
    `
	result, err := session.Run(query, map[string]interface{}{"id": recipeID})
	if err != nil {
		logger.Error("Failed to execute get recipe query",
			zap.Error(err),
			zap.String("recipeID", recipeID),
			zap.Duration("duration", time.Since(start)))
		return nil, mealcraft_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToRecipe(node), nil
	}

	logger.Warn("Recipe not found",
		zap.String("recipeID", recipeID),
		zap.Duration("duration", time.Since(start)))
	return nil, mealcraft_errors.ErrRecipeNotFound
}

func (dao *RecipeDAO) ListRecipes(ctx context.Context, limit int, offset int) ([]*model.Recipe, error) {
	return dao.listRecipes(ctx, `
    MATCH (r:Recipe)
    RETURN r
    ORDER BY r.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
}

func (dao *RecipeDAO) ListRecipesByRegion(ctx context.Context, region string) ([]*model.Recipe, error) {
	return dao.listRecipes(ctx, `
    MATCH (r:Recipe)
    WHERE toLower(r.region) = toLower($region)
    RETURN r
    ORDER BY r.createdAt DESC
    `, map[string]interface{}{
		"region": region,
	})
}

func (dao *RecipeDAO) listRecipes(ctx context.Context, query string, params map[string]interface{}) ([]*model.Recipe, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.Run(query, params)
	if err != nil {
		logger.Error("Failed to execute list recipes query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, mealcraft_errors.ErrDatabaseOperation
	}

	var recipes []*model.Recipe
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		recipes = append(recipes, mapNodeToRecipe(node))
	}

	logger.Info("Recipes listed successfully",
		zap.Int("count", len(recipes)),
		zap.Duration("duration", time.Since(start)))

	return recipes, nil
}

func recipeProps(recipe *model.Recipe) map[string]interface{} {
	return map[string]interface{}{
		"name":          recipe.Name,
		"author":        recipe.Author,
		"ownerEmail":    recipe.OwnerEmail,
		"description":   recipe.Description,
		"ingredients":   recipe.Ingredients,
		"region":        recipe.Region,
		"category":      recipe.Category,
		"isRestricted":  recipe.IsRestricted,
		"acgs":          recipe.AccessControlGroups,
		"communityTags": recipe.CommunityTags,
		"createdAt":     recipe.CreatedAt.Format(time.RFC3339),
		"updatedAt":     recipe.UpdatedAt.Format(time.RFC3339),
	}
}

// Helper function to map Neo4j Node to Recipe struct
func mapNodeToRecipe(node neo4j.Node) *model.Recipe {
	props := node.Props
	recipe := &model.Recipe{}

	recipe.ID, _ = props["id"].(string)
	recipe.Name, _ = props["name"].(string)
	recipe.Author, _ = props["author"].(string)
	recipe.OwnerEmail, _ = props["ownerEmail"].(string)
	recipe.Description, _ = props["description"].(string)
	recipe.Ingredients, _ = props["ingredients"].(string)
	recipe.Region, _ = props["region"].(string)
	recipe.Category, _ = props["category"].(string)
	recipe.IsRestricted, _ = props["isRestricted"].(bool)
	recipe.AccessControlGroups = helper_util.StringSlice(props["acgs"])
	recipe.CommunityTags = helper_util.StringSlice(props["communityTags"])

	if createdAt, ok := props["createdAt"].(string); ok {
		recipe.CreatedAt = helper_util.ParseTime(createdAt)
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		recipe.UpdatedAt = helper_util.ParseTime(updatedAt)
	}

	return recipe
}

// Helper function to create change details for audit log
func recipeChangeDetails(oldRecipe, newRecipe *model.Recipe) json.RawMessage {
	changes := make(map[string]interface{})
	if oldRecipe == nil {
		changes["action"] = "created"
	} else if newRecipe == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldRecipe.Name != newRecipe.Name {
			changes["name"] = map[string]string{"old": oldRecipe.Name, "new": newRecipe.Name}
		}
		if oldRecipe.IsRestricted != newRecipe.IsRestricted {
			changes["is_restricted"] = map[string]bool{"old": oldRecipe.IsRestricted, "new": newRecipe.IsRestricted}
		}
		// Add more fields as needed
	}
	changeDetails, _ := json.Marshal(changes)
	return changeDetails
}

type requestingUserKey struct{}

// WithRequestingUser attributes subsequent writes on the context to userID
// in the audit trail.
func WithRequestingUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, requestingUserKey{}, userID)
}

// RequestingUser extracts the acting user's ID from the request context for
// the audit trail; writes made outside a request (startup, event handlers)
// are attributed to "system".
func RequestingUser(ctx context.Context) string {
	if userID, ok := ctx.Value(requestingUserKey{}).(string); ok && userID != "" {
		return userID
	}
	return "system"
}
