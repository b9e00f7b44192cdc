// api/util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/mealcraft/api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateRecipe(recipe model.Recipe) error {
	if recipe.Name == "" {
		return fmt.Errorf("recipe name cannot be empty")
	}
	if recipe.OwnerEmail == "" {
		return fmt.Errorf("recipe owner email cannot be empty")
	}
	if recipe.Ingredients == "" {
		return fmt.Errorf("recipe ingredients cannot be empty")
	}
	for _, acg := range recipe.AccessControlGroups {
		if strings.TrimSpace(acg) == "" {
			return fmt.Errorf("recipe access control groups cannot contain blank entries")
		}
	}
	for _, tag := range recipe.CommunityTags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("recipe community tags cannot contain blank entries")
		}
	}
	// Add more validation rules as needed
	return nil
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if user.Name == "" {
		return fmt.Errorf("user name cannot be empty")
	}
	if user.Email == "" {
		return fmt.Errorf("user email cannot be empty")
	}
	// Add more validation rules as needed
	return nil
}

func (v *ValidationUtil) ValidateNotification(notification model.Notification) error {
	if notification.UserEmail == "" {
		return fmt.Errorf("notification user email cannot be empty")
	}
	if notification.Message == "" {
		return fmt.Errorf("notification message cannot be empty")
	}
	if notification.RecipeID == "" {
		return fmt.Errorf("notification recipe ID cannot be empty")
	}
	return nil
}
