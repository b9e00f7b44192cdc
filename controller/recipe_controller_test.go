// api/controller/recipe_controller_test.go
package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mealcraft/api/controller"
	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitLogger("../logging")
	os.Exit(m.Run())
}

type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, recipe model.Recipe, identity *model.Identity) (*model.Recipe, error) {
	args := m.Called(ctx, recipe, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, recipe model.Recipe, identity *model.Identity) (*model.Recipe, error) {
	args := m.Called(ctx, recipe, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, recipeID string, identity *model.Identity) error {
	args := m.Called(ctx, recipeID, identity)
	return args.Error(0)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, recipeID string, identity *model.Identity) (*model.Recipe, error) {
	args := m.Called(ctx, recipeID, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, identity *model.Identity, limit int, offset int) ([]*model.Recipe, error) {
	args := m.Called(ctx, identity, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) ListRecipesByRegion(ctx context.Context, region string, identity *model.Identity) ([]*model.Recipe, error) {
	args := m.Called(ctx, region, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func setupRecipeRouter(svc *MockRecipeService, identity *model.Identity) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if identity != nil {
			c.Set(util.IdentityContextKey, identity)
		}
		c.Next()
	})
	api := router.Group("/")
	controller.NewRecipeController(svc).RegisterRoutes(api)
	return router
}

func TestRecipeController(t *testing.T) {
	identity := &model.Identity{
		SubjectID:           "chef@example.com",
		DisplayName:         "Chef",
		Roles:               []string{"ROLE_USER"},
		AccessControlGroups: []string{"KITCHEN"},
	}

	t.Run("CreateRecipe_Success", func(t *testing.T) {
		svc := new(MockRecipeService)
		svc.On("CreateRecipe", mock.Anything, mock.Anything, identity).
			Return(&model.Recipe{ID: "1", Name: "Tarte Tatin"}, nil)
		router := setupRecipeRouter(svc, identity)

		body := strings.NewReader(`{"name":"Tarte Tatin","owner_email":"chef@example.com","ingredients":"apples"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/recipes", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("CreateRecipe_Unauthenticated", func(t *testing.T) {
		svc := new(MockRecipeService)
		router := setupRecipeRouter(svc, nil)

		body := strings.NewReader(`{"name":"Tarte Tatin"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/recipes", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "CreateRecipe")
	})

	t.Run("CreateRecipe_InvalidBody", func(t *testing.T) {
		svc := new(MockRecipeService)
		router := setupRecipeRouter(svc, identity)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/recipes", strings.NewReader(`{not json`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GetRecipe_Success", func(t *testing.T) {
		svc := new(MockRecipeService)
		svc.On("GetRecipe", mock.Anything, "1", identity).
			Return(&model.Recipe{ID: "1", Name: "Tarte Tatin"}, nil)
		router := setupRecipeRouter(svc, identity)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/recipes/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got model.Recipe
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Tarte Tatin", got.Name)
	})

	t.Run("GetRecipe_Forbidden", func(t *testing.T) {
		svc := new(MockRecipeService)
		svc.On("GetRecipe", mock.Anything, "1", identity).
			Return(nil, mealcraft_errors.ErrForbidden)
		router := setupRecipeRouter(svc, identity)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/recipes/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("GetRecipe_NotFound", func(t *testing.T) {
		svc := new(MockRecipeService)
		svc.On("GetRecipe", mock.Anything, "404", identity).
			Return(nil, mealcraft_errors.ErrRecipeNotFound)
		router := setupRecipeRouter(svc, identity)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/recipes/404", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpdateRecipe_Forbidden", func(t *testing.T) {
		svc := new(MockRecipeService)
		svc.On("UpdateRecipe", mock.Anything, mock.Anything, identity).
			Return(nil, mealcraft_errors.ErrForbidden)
		router := setupRecipeRouter(svc, identity)

		body := strings.NewReader(`{"name":"Renamed"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/recipes/1", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("DeleteRecipe_Success", func(t *testing.T) {
		svc := new(MockRecipeService)
		svc.On("DeleteRecipe", mock.Anything, "1", identity).Return(nil)
		router := setupRecipeRouter(svc, identity)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/recipes/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ListRecipes_Success", func(t *testing.T) {
		svc := new(MockRecipeService)
		svc.On("ListRecipes", mock.Anything, identity, 10, 0).
			Return([]*model.Recipe{{ID: "1"}, {ID: "2"}}, nil)
		router := setupRecipeRouter(svc, identity)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/recipes", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got []*model.Recipe
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})
}
