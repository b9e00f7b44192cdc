// api/service/notification_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/util"
)

// INotificationService defines the interface for notification operations
type INotificationService interface {
	ListNotifications(ctx context.Context, userEmail string) ([]*model.Notification, error)
	ListUnreadNotifications(ctx context.Context, userEmail string) ([]*model.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string, userEmail string) error
	MarkAllAsRead(ctx context.Context, userEmail string) error
	DeleteNotification(ctx context.Context, notificationID string, userEmail string) error
}

// Subscribers lists the addresses subscribed to a community tag.
type Subscribers interface {
	GetUsersWithCOI(ctx context.Context, coi string) ([]string, error)
}

// NotificationStore persists notifications. Satisfied by dao.NotificationDAO.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification model.Notification) (string, error)
	ListNotifications(ctx context.Context, userEmail string, unreadOnly bool) ([]*model.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string, userEmail string) error
	MarkAllAsRead(ctx context.Context, userEmail string) error
	DeleteNotification(ctx context.Context, notificationID string, userEmail string) error
}

// NotificationService fans recipe creation out to community subscribers
// and manages each user's notification feed.
type NotificationService struct {
	notificationDAO NotificationStore
	subscribers     Subscribers
}

var _ INotificationService = &NotificationService{}

// NewNotificationService creates a new instance of NotificationService and
// wires the recipe-created fan-out.
func NewNotificationService(notificationDAO NotificationStore, subscribers Subscribers, eventBus *util.EventBus) *NotificationService {
	service := &NotificationService{
		notificationDAO: notificationDAO,
		subscribers:     subscribers,
	}

	eventBus.Subscribe(util.TopicRecipeCreated, service.handleRecipeCreated)

	return service
}

// handleRecipeCreated notifies, for every community tag on the new recipe,
// each subscriber of that tag except the recipe owner. A user subscribed
// to several matching tags receives one notification per tag. A failure
// for one subscriber never blocks the rest.
func (s *NotificationService) handleRecipeCreated(ctx context.Context, event util.Event) error {
	recipe, ok := event.Payload.(*model.Recipe)
	if !ok {
		logger.Warn("Unexpected payload type on recipe event", zap.String("type", event.Type))
		return nil
	}

	for _, tag := range recipe.CommunityTags {
		emails, err := s.subscribers.GetUsersWithCOI(ctx, tag)
		if err != nil {
			logger.Error("Failed to resolve subscribers for community tag",
				zap.Error(err),
				zap.String("tag", tag),
				zap.String("recipeID", recipe.ID))
			continue
		}

		for _, email := range emails {
			if strings.EqualFold(email, recipe.OwnerEmail) {
				continue
			}

			notification := model.Notification{
				UserEmail:    email,
				Message:      fmt.Sprintf("New %s recipe added: %s", tag, recipe.Name),
				RecipeID:     recipe.ID,
				RecipeName:   recipe.Name,
				CommunityTag: tag,
			}

			if _, err := s.notificationDAO.CreateNotification(ctx, notification); err != nil {
				logger.Error("Failed to create notification",
					zap.Error(err),
					zap.String("userEmail", email),
					zap.String("recipeID", recipe.ID))
			}
		}
	}

	return nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, userEmail string) ([]*model.Notification, error) {
	return s.notificationDAO.ListNotifications(ctx, userEmail, false)
}

func (s *NotificationService) ListUnreadNotifications(ctx context.Context, userEmail string) ([]*model.Notification, error) {
	return s.notificationDAO.ListNotifications(ctx, userEmail, true)
}

// MarkAsRead marks one of the caller's own notifications as read. Another
// user's notification id reports not found.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID string, userEmail string) error {
	return s.notificationDAO.MarkAsRead(ctx, notificationID, userEmail)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userEmail string) error {
	return s.notificationDAO.MarkAllAsRead(ctx, userEmail)
}

// DeleteNotification removes one of the caller's own notifications, with
// the same ownership scoping as MarkAsRead.
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID string, userEmail string) error {
	return s.notificationDAO.DeleteNotification(ctx, notificationID, userEmail)
}
