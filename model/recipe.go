// api/model/recipe.go
package model

import (
	"time"
)

// Recipe is the central shareable entity. Access to a restricted recipe is
// decided by intersecting its access control groups with the caller's.
type Recipe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	OwnerEmail  string `json:"owner_email"`
	Description string `json:"description"`
	Ingredients string `json:"ingredients"`
	Region      string `json:"region,omitempty"`
	Category    string `json:"category,omitempty"`

	// ABAC attributes. A restricted recipe with no ACGs is admin-only.
	IsRestricted        bool     `json:"is_restricted"`
	AccessControlGroups []string `json:"access_control_groups,omitempty"`

	// COI tags drive notification fan-out on creation.
	CommunityTags []string `json:"community_tags,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
