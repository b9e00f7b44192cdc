// api/abac/coi.go
package abac

// MatchingTags returns the intersection of a recipe's community tags and a
// subscriber's interests, preserving the order of the recipe's tags. Either
// side empty or nil yields an empty result.
func MatchingTags(recipeTags, subscriberTags []string) []string {
	if len(recipeTags) == 0 || len(subscriberTags) == 0 {
		return nil
	}

	interests := make(map[string]struct{}, len(subscriberTags))
	for _, tag := range subscriberTags {
		interests[tag] = struct{}{}
	}

	var matched []string
	for _, tag := range recipeTags {
		if _, ok := interests[tag]; ok {
			matched = append(matched, tag)
		}
	}
	return matched
}

// ShouldNotify reports whether a subscriber's interests overlap a recipe's
// community tags at all.
func ShouldNotify(recipeTags, subscriberTags []string) bool {
	return len(MatchingTags(recipeTags, subscriberTags)) > 0
}
