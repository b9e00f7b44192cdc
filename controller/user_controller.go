// api/controller/user_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mealcraft_errors "github.com/mealcraft/api/errors"
	"github.com/mealcraft/api/service"
	"github.com/mealcraft/api/util"
)

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes registers the API routes for user attribute management.
// Access control group assignment is admin-only; community subscriptions
// are self-service.
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.GET("/:email/attributes", uc.GetUserAttributes)
		users.PUT("/:email/acgs", requireAdmin, uc.UpdateAccessControlGroups)
		users.PUT("/:email/communities", uc.UpdateCommunitiesOfInterest)
	}
}

type attributeUpdateRequest struct {
	Values []string `json:"values" binding:"required"`
}

// GetUserAttributes endpoint
func (uc *UserController) GetUserAttributes(c *gin.Context) {
	email := c.Param("email")
	if !uc.authorizeAttributeAccess(c, email) {
		return
	}

	attrs, err := uc.userService.GetUserAttributes(c.Request.Context(), email)
	if err != nil {
		if err == mealcraft_errors.ErrUserNotFound {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve user attributes", err)
		}
		return
	}

	c.JSON(http.StatusOK, attrs)
}

// UpdateAccessControlGroups endpoint
func (uc *UserController) UpdateAccessControlGroups(c *gin.Context) {
	email := c.Param("email")
	var req attributeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid attribute data", err)
		return
	}

	if err := uc.userService.UpdateAccessControlGroups(c.Request.Context(), email, req.Values); err != nil {
		respondWithAttributeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Access control groups updated"})
}

// UpdateCommunitiesOfInterest endpoint
func (uc *UserController) UpdateCommunitiesOfInterest(c *gin.Context) {
	email := c.Param("email")
	if !uc.authorizeAttributeAccess(c, email) {
		return
	}
	var req attributeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid attribute data", err)
		return
	}

	if err := uc.userService.UpdateCommunitiesOfInterest(c.Request.Context(), email, req.Values); err != nil {
		respondWithAttributeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Community subscriptions updated"})
}

// authorizeAttributeAccess lets a user operate on their own attributes and
// admins operate on anyone's.
func (uc *UserController) authorizeAttributeAccess(c *gin.Context, email string) bool {
	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
		return false
	}
	if identity.IsAdmin() || identity.SubjectID == email {
		return true
	}
	util.RespondWithError(c, http.StatusForbidden, "Access denied", mealcraft_errors.ErrForbidden)
	return false
}

func respondWithAttributeError(c *gin.Context, err error) {
	switch err {
	case mealcraft_errors.ErrUserNotFound:
		util.RespondWithError(c, http.StatusNotFound, "User not found", err)
	case mealcraft_errors.ErrAdminAuthFailure:
		util.RespondWithError(c, http.StatusBadGateway, "Identity provider authentication failed", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to update user attributes", err)
	}
}
