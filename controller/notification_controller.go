// api/controller/notification_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mealcraft_errors "github.com/mealcraft/api/errors"
	"github.com/mealcraft/api/service"
	"github.com/mealcraft/api/util"
)

type NotificationController struct {
	notificationService service.INotificationService
}

func NewNotificationController(notificationService service.INotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

// RegisterRoutes registers the API routes for the notification feed. All
// routes operate on the authenticated user's own feed.
func (nc *NotificationController) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", nc.ListNotifications)
		notifications.GET("/unread", nc.ListUnreadNotifications)
		notifications.PUT("/:id/read", nc.MarkAsRead)
		notifications.PUT("/read-all", nc.MarkAllAsRead)
		notifications.DELETE("/:id", nc.DeleteNotification)
	}
}

// ListNotifications endpoint
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
		return
	}

	notifications, err := nc.notificationService.ListNotifications(c.Request.Context(), identity.SubjectID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// ListUnreadNotifications endpoint
func (nc *NotificationController) ListUnreadNotifications(c *gin.Context) {
	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
		return
	}

	notifications, err := nc.notificationService.ListUnreadNotifications(c.Request.Context(), identity.SubjectID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkAsRead endpoint
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
		return
	}
	notificationID := c.Param("id")

	if err := nc.notificationService.MarkAsRead(c.Request.Context(), notificationID, identity.SubjectID); err != nil {
		if err == mealcraft_errors.ErrNotificationNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Notification not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to mark notification as read", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllAsRead endpoint
func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
		return
	}

	if err := nc.notificationService.MarkAllAsRead(c.Request.Context(), identity.SubjectID); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to mark notifications as read", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// DeleteNotification endpoint
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	identity := util.GetIdentityFromContext(c)
	if identity == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", mealcraft_errors.ErrUnauthorized)
		return
	}
	notificationID := c.Param("id")

	if err := nc.notificationService.DeleteNotification(c.Request.Context(), notificationID, identity.SubjectID); err != nil {
		if err == mealcraft_errors.ErrNotificationNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Notification not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete notification", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
