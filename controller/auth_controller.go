// api/controller/auth_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mealcraft_errors "github.com/mealcraft/api/errors"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/service"
	"github.com/mealcraft/api/util"
)

type AuthController struct {
	authService service.IAuthService
	userService service.IUserService
}

func NewAuthController(authService service.IAuthService, userService service.IUserService) *AuthController {
	return &AuthController{
		authService: authService,
		userService: userService,
	}
}

// RegisterRoutes registers the public authentication routes
func (ac *AuthController) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", ac.Register)
		auth.POST("/login", ac.Login)
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Region   string `json:"region"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register endpoint
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid registration data", err)
		return
	}

	user := model.User{
		Name:   req.Name,
		Email:  req.Email,
		Region: req.Region,
	}

	created, err := ac.userService.RegisterUser(c.Request.Context(), user, req.Password)
	if err != nil {
		switch err {
		case mealcraft_errors.ErrUserConflict:
			util.RespondWithError(c, http.StatusConflict, "User already exists", err)
		case mealcraft_errors.ErrInvalidUserData:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to register user", err)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Login endpoint
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid login data", err)
		return
	}

	token, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if err == mealcraft_errors.ErrInvalidCredentials {
			util.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to login", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
