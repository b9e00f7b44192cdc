// api/dao/notification_dao.go
package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	helper_util "github.com/mealcraft/api/util/helper"
)

type NotificationDAO struct {
	Driver neo4j.Driver
}

func NewNotificationDAO(driver neo4j.Driver) *NotificationDAO {
	return &NotificationDAO{Driver: driver}
}

func (dao *NotificationDAO) CreateNotification(ctx context.Context, notification model.Notification) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE (n:Notification {
            id: $id,
            userEmail: $userEmail,
            message: $message,
            recipeId: $recipeId,
            recipeName: $recipeName,
            communityTag: $communityTag,
            isRead: $isRead,
            createdAt: $createdAt
        })
        RETURN n.id as id
        `
		params := map[string]interface{}{
			"id":           notification.ID,
			"userEmail":    notification.UserEmail,
			"message":      notification.Message,
			"recipeId":     notification.RecipeID,
			"recipeName":   notification.RecipeName,
			"communityTag": notification.CommunityTag,
			"isRead":       notification.IsRead,
			"createdAt":    notification.CreatedAt.Format(time.RFC3339),
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
		logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("userEmail", notification.UserEmail),
			zap.Duration("duration", duration))
		return "", err
	}

	notificationID := result.(string)
	logger.Info("Notification created successfully",
		zap.String("notificationID", notificationID),
		zap.String("userEmail", notification.UserEmail),
		zap.Duration("duration", duration))

	return notificationID, nil
}

func (dao *NotificationDAO) ListNotifications(ctx context.Context, userEmail string, unreadOnly bool) ([]*model.Notification, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (n:Notification {userEmail: $userEmail})
    RETURN n
    ORDER BY n.createdAt DESC
    `
	if unreadOnly {
		query = `
        MATCH (n:Notification {userEmail: $userEmail, isRead: false})
        RETURN n
        ORDER BY n.createdAt DESC
        `
	}

	result, err := session.Run(query, map[string]interface{}{"userEmail": userEmail})
	if err != nil {
		logger.Error("Failed to execute list notifications query",
			zap.Error(err),
			zap.String("userEmail", userEmail),
			zap.Duration("duration", time.Since(start)))
		return nil, mealcraft_errors.ErrDatabaseOperation
	}

	var notifications []*model.Notification
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		notifications = append(notifications, mapNodeToNotification(node))
	}

	return notifications, nil
}

// MarkAsRead flags a single notification as read. The match is scoped to
// the owner's feed; a foreign id is indistinguishable from a missing one.
func (dao *NotificationDAO) MarkAsRead(ctx context.Context, notificationID string, userEmail string) error {
	return dao.markRead(ctx, `
    MATCH (n:Notification {id: $id, userEmail: $userEmail})
    SET n.isRead = true
    RETURN count(n) as updated
    `, map[string]interface{}{"id": notificationID, "userEmail": userEmail})
}

func (dao *NotificationDAO) MarkAllAsRead(ctx context.Context, userEmail string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (n:Notification {userEmail: $userEmail, isRead: false})
        SET n.isRead = true
        `
		_, err := transaction.Run(query, map[string]interface{}{"userEmail": userEmail})
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to mark all notifications as read",
			zap.Error(err),
			zap.String("userEmail", userEmail),
			zap.Duration("duration", time.Since(start)))
		return err
	}

	return nil
}

// DeleteNotification removes a single notification from the owner's feed,
// with the same owner scoping as MarkAsRead.
func (dao *NotificationDAO) DeleteNotification(ctx context.Context, notificationID string, userEmail string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (n:Notification {id: $id, userEmail: $userEmail})
        DETACH DELETE n
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": notificationID, "userEmail": userEmail})
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		summary, err := result.Consume()
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		if summary.Counters().NodesDeleted() == 0 {
			return nil, mealcraft_errors.ErrNotificationNotFound
		}

		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to delete notification",
			zap.Error(err),
			zap.String("notificationID", notificationID),
			zap.Duration("duration", time.Since(start)))
		return err
	}

	return nil
}

func (dao *NotificationDAO) markRead(ctx context.Context, query string, params map[string]interface{}) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, mealcraft_errors.ErrDatabaseOperation
		}

		if result.Next() {
			if updated, ok := result.Record().Values[0].(int64); ok && updated == 0 {
				return nil, mealcraft_errors.ErrNotificationNotFound
			}
		}

		return nil, nil
	})

	return err
}

// Helper function to map Neo4j Node to Notification struct
func mapNodeToNotification(node neo4j.Node) *model.Notification {
	props := node.Props
	notification := &model.Notification{}

	notification.ID, _ = props["id"].(string)
	notification.UserEmail, _ = props["userEmail"].(string)
	notification.Message, _ = props["message"].(string)
	notification.RecipeID, _ = props["recipeId"].(string)
	notification.RecipeName, _ = props["recipeName"].(string)
	notification.CommunityTag, _ = props["communityTag"].(string)
	notification.IsRead, _ = props["isRead"].(bool)

	if createdAt, ok := props["createdAt"].(string); ok {
		notification.CreatedAt = helper_util.ParseTime(createdAt)
	}

	return notification
}
