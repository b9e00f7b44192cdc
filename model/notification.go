// api/model/notification.go
package model

import (
	"time"
)

// Notification records one COI match between a new recipe and a subscribed
// user. A user whose interests match two of a recipe's tags gets two
// notifications, one per tag.
type Notification struct {
	ID           string    `json:"id"`
	UserEmail    string    `json:"user_email"`
	Message      string    `json:"message"`
	RecipeID     string    `json:"recipe_id"`
	RecipeName   string    `json:"recipe_name"`
	CommunityTag string    `json:"community_tag"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}
