// api/controller/search_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealcraft/api/abac"
	mealcraft_errors "github.com/mealcraft/api/errors"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/search"
	"github.com/mealcraft/api/util"
)

type SearchController struct {
	searchService search.Service
}

func NewSearchController(searchService search.Service) *SearchController {
	return &SearchController{
		searchService: searchService,
	}
}

// RegisterRoutes registers the recipe search routes
func (sc *SearchController) RegisterRoutes(r *gin.RouterGroup) {
	searchGroup := r.Group("/search")
	{
		searchGroup.GET("/recipes", sc.SearchRecipes)
	}
}

// SearchRecipes endpoint. Accepts a name or region query parameter; search
// hits are filtered by the caller's access control groups like any other
// read.
func (sc *SearchController) SearchRecipes(c *gin.Context) {
	name := c.Query("name")
	region := c.Query("region")
	if name == "" && region == "" {
		util.RespondWithError(c, http.StatusBadRequest, "A name or region query parameter is required", mealcraft_errors.ErrInvalidRecipeData)
		return
	}

	var (
		recipes []*model.Recipe
		err     error
	)
	if name != "" {
		recipes, err = sc.searchService.SearchByName(c.Request.Context(), name)
	} else {
		recipes, err = sc.searchService.SearchByRegion(c.Request.Context(), region)
	}
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to search recipes", err)
		return
	}

	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		recipes = abac.FilterRecipes(recipes, nil, false)
	} else {
		recipes = abac.FilterRecipes(recipes, identity.AccessControlGroups, identity.IsAdmin())
	}

	c.JSON(http.StatusOK, recipes)
}
