// api/model/user.go
package model

import (
	"time"
)

// User is the locally persisted account record. Region, ACG, and COI
// attributes live in the identity provider when one is configured; the local
// copies are used by the legacy token path.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles,omitempty"`
	Region       string   `json:"region,omitempty"`

	AccessControlGroups   []string `json:"access_control_groups,omitempty"`
	CommunitiesOfInterest []string `json:"communities_of_interest,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
