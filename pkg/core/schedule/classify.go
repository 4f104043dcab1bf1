package schedule

import "strings"

// Category is a presentation grouping for role labels.
type Category string

const (
	CategoryManagers Category = "Managers"
	CategoryFloor    Category = "Floor"
	CategoryFAB      Category = "FAB"
	CategoryOther    Category = "Other"
)

// CategoryRule maps role text to a category. Rules are evaluated top to
// bottom and the first match wins, so ordering is part of the policy.
type CategoryRule struct {
	Substrings []string
	Category   Category
}

// DefaultCategoryRules is the rota grouping policy. Role labels are free
// text, so classification is substring based.
var DefaultCategoryRules = []CategoryRule{
	{Substrings: []string{"manager", "cem"}, Category: CategoryManagers},
	{Substrings: []string{"ushering"}, Category: CategoryFloor},
	{Substrings: []string{"fab"}, Category: CategoryFAB},
}

// ClassifyRole runs role text through an ordered rule list, returning
// CategoryOther when nothing matches.
func ClassifyRole(role string, rules []CategoryRule) Category {
	role = strings.ToLower(role)
	for _, rule := range rules {
		for _, sub := range rule.Substrings {
			if strings.Contains(role, sub) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}
