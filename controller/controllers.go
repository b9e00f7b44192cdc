// api/controller/controllers.go
package controller

import "github.com/mealcraft/api/service"

type Controllers struct {
	Auth         *AuthController
	Recipe       *RecipeController
	User         *UserController
	Notification *NotificationController
	Search       *SearchController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Auth:         NewAuthController(services.Auth, services.User),
		Recipe:       NewRecipeController(services.Recipe),
		User:         NewUserController(services.User),
		Notification: NewNotificationController(services.Notification),
		Search:       NewSearchController(services.Search),
	}
}
