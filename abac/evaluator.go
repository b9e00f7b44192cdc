// api/abac/evaluator.go

// Package abac holds the pure access-decision functions. Nothing here does
// I/O or branches on token format; callers hand in the canonical identity
// attributes and the recipe's own attributes.
package abac

import (
	"github.com/mealcraft/api/model"
)

// CanAccess decides read access to a recipe. The steps short-circuit in
// order: admins see everything, unrestricted recipes are public, a
// restricted recipe with no ACGs is admin-only, and otherwise access
// requires a non-empty intersection between the recipe's ACGs and the
// user's. Nil sets are treated as empty.
func CanAccess(recipe *model.Recipe, userAcgs []string, isAdmin bool) bool {
	if isAdmin {
		return true
	}

	if recipe == nil || !recipe.IsRestricted {
		return true
	}

	if len(recipe.AccessControlGroups) == 0 {
		return false
	}

	if len(userAcgs) == 0 {
		return false
	}

	return intersects(recipe.AccessControlGroups, userAcgs)
}

// CanAccessIdentity is CanAccess with the admin flag derived from the
// identity's roles.
func CanAccessIdentity(recipe *model.Recipe, identity *model.Identity) bool {
	if identity == nil {
		return CanAccess(recipe, nil, false)
	}
	return CanAccess(recipe, identity.AccessControlGroups, identity.IsAdmin())
}

// FilterRecipes drops recipes the user cannot access, preserving input
// order.
func FilterRecipes(recipes []*model.Recipe, userAcgs []string, isAdmin bool) []*model.Recipe {
	out := make([]*model.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if CanAccess(recipe, userAcgs, isAdmin) {
			out = append(out, recipe)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
