// api/audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// AccessLog is one record of an access decision or a mutating action.
// AccessGranted is the ABAC outcome; denies are logged too.
type AccessLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	Action        string          `json:"action"`
	RecipeID      string          `json:"recipe_id"`
	AccessGranted bool            `json:"access_granted"`
	Reason        string          `json:"reason,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
