// api/service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mealcraft/api/audit"
	"github.com/mealcraft/api/auth"
	"github.com/mealcraft/api/dao"
	"github.com/mealcraft/api/idp"
	"github.com/mealcraft/api/search"
	"github.com/mealcraft/api/util"
)

type Services struct {
	Recipe       IRecipeService
	User         IUserService
	Notification INotificationService
	Auth         IAuthService
	Search       search.Service
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	idpClient *idp.Client,
	issuer *auth.Issuer,
	searchRepo search.Repository,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	eventBus *util.EventBus,
) (*Services, error) {
	recipeDAO := dao.NewRecipeDAO(driver, auditService)
	userDAO := dao.NewUserDAO(driver, auditService)
	notificationDAO := dao.NewNotificationDAO(driver)

	services := &Services{
		Recipe:       NewRecipeService(recipeDAO, validationUtil, cacheService, auditService, eventBus),
		User:         NewUserService(userDAO, idpClient, validationUtil, cacheService),
		Notification: NewNotificationService(notificationDAO, idpClient, eventBus),
		Auth:         NewAuthService(userDAO, issuer),
		Search:       search.NewService(searchRepo, eventBus),
	}

	return services, nil
}
