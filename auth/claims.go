// api/auth/claims.go
package auth

import (
	"strings"
)

// NormalizeLegacyRoles splits the legacy comma-joined role claim into a
// canonical role set: trimmed, uppercased, duplicates and empties dropped.
func NormalizeLegacyRoles(raw string) []string {
	if raw == "" {
		return nil
	}
	return normalizeRoleSet(strings.Split(raw, ","))
}

// NormalizeProviderRoles merges the provider's realm-level roles with every
// client's resource-level roles into one canonical set. Default provider
// roles are NOT stripped here; they are harmless for access decisions and
// only excluded when bridging to a legacy token (see FilterDefaultRoles).
func NormalizeProviderRoles(realmRoles []string, resourceRoles map[string][]string) []string {
	merged := make([]string, 0, len(realmRoles))
	merged = append(merged, realmRoles...)
	for _, clientRoles := range resourceRoles {
		merged = append(merged, clientRoles...)
	}
	return normalizeRoleSet(merged)
}

// FilterDefaultRoles drops the provider's implicit bookkeeping roles
// (default-roles-<realm>, offline_access, uma_authorization) from a raw role
// list. Used when generating legacy-format tokens so downstream consumers
// only see business roles.
func FilterDefaultRoles(roles []string, realm string) []string {
	defaultRole := "default-roles-" + strings.ToLower(realm)
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		switch strings.ToLower(strings.TrimSpace(role)) {
		case defaultRole, "offline_access", "uma_authorization":
			continue
		}
		out = append(out, role)
	}
	return out
}

// normalizeRoleSet trims, uppercases, and deduplicates, preserving first
// occurrence order. The result contains only non-empty tokens.
func normalizeRoleSet(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}

// NormalizeAttributeList trims and deduplicates a comma-joined attribute
// claim (acgs, cois) without changing case.
func NormalizeAttributeList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
