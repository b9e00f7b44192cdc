// api/model/identity.go
package model

// Identity is the canonical authenticated-caller record. Both token formats
// normalize into this shape at the verification boundary so that nothing
// downstream branches on where the token came from.
type Identity struct {
	// SubjectID is the stable user key, typically the email address. It is
	// never empty for a successfully verified token.
	SubjectID   string   `json:"subject_id"`
	DisplayName string   `json:"display_name,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Region      string   `json:"region,omitempty"`

	// AccessControlGroups the subject belongs to.
	AccessControlGroups []string `json:"access_control_groups,omitempty"`
}

// HasRole reports whether the identity carries the given role.
func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity carries the ADMIN role under either
// naming convention ("ADMIN" from the provider realm, "ROLE_ADMIN" legacy).
func (id *Identity) IsAdmin() bool {
	return id.HasRole("ADMIN") || id.HasRole("ROLE_ADMIN")
}
