// api/controller/recipe_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mealcraft_errors "github.com/mealcraft/api/errors"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/service"
	"github.com/mealcraft/api/util"
	helper_util "github.com/mealcraft/api/util/helper"
)

type RecipeController struct {
	recipeService service.IRecipeService
}

func NewRecipeController(recipeService service.IRecipeService) *RecipeController {
	return &RecipeController{
		recipeService: recipeService,
	}
}

// RegisterRoutes registers the API routes for recipe management
func (rc *RecipeController) RegisterRoutes(r *gin.RouterGroup) {
	recipes := r.Group("/recipes")
	{
		recipes.POST("", rc.CreateRecipe)
		recipes.PUT("/:id", rc.UpdateRecipe)
		recipes.DELETE("/:id", rc.DeleteRecipe)
		recipes.GET("/:id", rc.GetRecipe)
		recipes.GET("", rc.ListRecipes)
		recipes.GET("/region/:region", rc.ListRecipesByRegion)
	}
}

// CreateRecipe endpoint
func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid recipe data", mealcraft_errors.ErrInvalidRecipeData)
		return
	}
	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", mealcraft_errors.ErrUnauthorized)
		return
	}
	if recipe.OwnerEmail == "" {
		recipe.OwnerEmail = identity.SubjectID
	}

	createdRecipe, err := rc.recipeService.CreateRecipe(c.Request.Context(), recipe, identity)
	if err != nil {
		switch err {
		case mealcraft_errors.ErrInvalidRecipeData:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid recipe data", err)
		case mealcraft_errors.ErrRecipeConflict:
			util.RespondWithError(c, http.StatusConflict, "Recipe already exists", err)
		case mealcraft_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create recipe", mealcraft_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdRecipe)
}

// UpdateRecipe endpoint
func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	recipeID := c.Param("id")
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid recipe data", err)
		return
	}
	recipe.ID = recipeID
	identity := util.GetIdentityFromContext(c)

	updatedRecipe, err := rc.recipeService.UpdateRecipe(c.Request.Context(), recipe, identity)
	if err != nil {
		respondWithRecipeError(c, err, "Failed to update recipe")
		return
	}

	c.JSON(http.StatusOK, updatedRecipe)
}

// DeleteRecipe endpoint
func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	recipeID := c.Param("id")
	identity := util.GetIdentityFromContext(c)

	if err := rc.recipeService.DeleteRecipe(c.Request.Context(), recipeID, identity); err != nil {
		respondWithRecipeError(c, err, "Failed to delete recipe")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// GetRecipe endpoint
func (rc *RecipeController) GetRecipe(c *gin.Context) {
	recipeID := c.Param("id")
	identity := util.GetIdentityFromContext(c)

	recipe, err := rc.recipeService.GetRecipe(c.Request.Context(), recipeID, identity)
	if err != nil {
		respondWithRecipeError(c, err, "Failed to retrieve recipe")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// ListRecipes endpoint
func (rc *RecipeController) ListRecipes(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	identity := util.GetIdentityFromContext(c)

	recipes, err := rc.recipeService.ListRecipes(c.Request.Context(), identity, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list recipes", err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// ListRecipesByRegion endpoint
func (rc *RecipeController) ListRecipesByRegion(c *gin.Context) {
	region := c.Param("region")
	identity := util.GetIdentityFromContext(c)

	recipes, err := rc.recipeService.ListRecipesByRegion(c.Request.Context(), region, identity)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list recipes", err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

func respondWithRecipeError(c *gin.Context, err error, fallback string) {
	switch err {
	case mealcraft_errors.ErrRecipeNotFound:
		util.RespondWithError(c, http.StatusNotFound, "Recipe not found", err)
	case mealcraft_errors.ErrUnauthorized:
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
	case mealcraft_errors.ErrForbidden:
		util.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	case mealcraft_errors.ErrInvalidRecipeData:
		util.RespondWithError(c, http.StatusBadRequest, "Invalid recipe data", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, err)
	}
}
