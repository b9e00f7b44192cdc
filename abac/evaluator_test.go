// api/abac/evaluator_test.go
package abac_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealcraft/api/abac"
	"github.com/mealcraft/api/model"
)

func restricted(acgs ...string) *model.Recipe {
	return &model.Recipe{
		ID:                  "r1",
		Name:                "Test Recipe",
		IsRestricted:        true,
		AccessControlGroups: acgs,
	}
}

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name     string
		recipe   *model.Recipe
		userAcgs []string
		isAdmin  bool
		want     bool
	}{
		{
			name:   "admin sees everything",
			recipe: restricted("TOPSECRET"), isAdmin: true,
			want: true,
		},
		{
			name:   "admin bypass even with no recipe acgs",
			recipe: restricted(), isAdmin: true,
			want: true,
		},
		{
			name:   "unrestricted recipe is public",
			recipe: &model.Recipe{ID: "r2", IsRestricted: false},
			want:   true,
		},
		{
			name:     "unrestricted ignores acg mismatch",
			recipe:   &model.Recipe{ID: "r2", AccessControlGroups: []string{"A"}},
			userAcgs: []string{"B"},
			want:     true,
		},
		{
			name:     "restricted with no recipe acgs denies everyone",
			recipe:   restricted(),
			userAcgs: []string{"A", "B"},
			want:     false,
		},
		{
			name:   "restricted denies user with no acgs",
			recipe: restricted("A"),
			want:   false,
		},
		{
			name:     "intersection grants",
			recipe:   restricted("A", "B"),
			userAcgs: []string{"C", "B"},
			want:     true,
		},
		{
			name:     "disjoint sets deny",
			recipe:   restricted("A", "B"),
			userAcgs: []string{"C", "D"},
			want:     false,
		},
		{
			name:     "acg comparison is case sensitive",
			recipe:   restricted("Alpha"),
			userAcgs: []string{"alpha"},
			want:     false,
		},
		{
			name: "nil recipe is not restricted",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, abac.CanAccess(tt.recipe, tt.userAcgs, tt.isAdmin))
		})
	}
}

func TestCanAccessIdentity(t *testing.T) {
	recipe := restricted("A")

	assert.False(t, abac.CanAccessIdentity(recipe, nil), "anonymous caller")

	admin := &model.Identity{SubjectID: "root@example.com", Roles: []string{"ADMIN"}}
	assert.True(t, abac.CanAccessIdentity(recipe, admin))

	legacyAdmin := &model.Identity{SubjectID: "root@example.com", Roles: []string{"ROLE_ADMIN"}}
	assert.True(t, abac.CanAccessIdentity(recipe, legacyAdmin))

	member := &model.Identity{SubjectID: "u@example.com", AccessControlGroups: []string{"A"}}
	assert.True(t, abac.CanAccessIdentity(recipe, member))

	outsider := &model.Identity{SubjectID: "u@example.com", AccessControlGroups: []string{"B"}}
	assert.False(t, abac.CanAccessIdentity(recipe, outsider))
}

func TestFilterRecipesPreservesOrder(t *testing.T) {
	recipes := []*model.Recipe{
		{ID: "1"},
		restricted("A"),
		{ID: "3"},
		restricted("B"),
	}
	recipes[1].ID = "2"
	recipes[3].ID = "4"

	visible := abac.FilterRecipes(recipes, []string{"B"}, false)

	ids := make([]string, len(visible))
	for i, r := range visible {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"1", "3", "4"}, ids)
}

func TestFilterRecipesEmptyInput(t *testing.T) {
	assert.Empty(t, abac.FilterRecipes(nil, []string{"A"}, false))
}

// Randomized check: access to a restricted recipe with non-empty ACGs must
// agree with a brute-force intersection test.
func TestCanAccessAgreesWithBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []string{"A", "B", "C", "D", "E", "F", "G", "H"}

	pick := func() []string {
		n := rng.Intn(len(pool))
		out := make([]string, 0, n)
		for _, g := range rng.Perm(len(pool))[:n] {
			out = append(out, pool[g])
		}
		return out
	}

	for i := 0; i < 500; i++ {
		recipeAcgs := pick()
		userAcgs := pick()
		recipe := restricted(recipeAcgs...)

		want := false
		for _, a := range recipeAcgs {
			for _, b := range userAcgs {
				if a == b {
					want = true
				}
			}
		}
		if len(recipeAcgs) == 0 || len(userAcgs) == 0 {
			want = false
		}

		got := abac.CanAccess(recipe, userAcgs, false)
		assert.Equal(t, want, got,
			fmt.Sprintf("recipe=%v user=%v", recipeAcgs, userAcgs))
	}
}
