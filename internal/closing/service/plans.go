package service

import "strings"

// Plan is one subscription tier a deal can close on.
type Plan struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// Plans returns the fixed price list, cheapest first. Values are monthly
// prices in BRL cents.
func Plans() []Plan {
	return []Plan{
		{Name: "Starter", PriceCents: 29700},
		{Name: "Professional", PriceCents: 69700},
		{Name: "Enterprise", PriceCents: 149700},
	}
}

// FindPlan resolves a plan by name, case-insensitively. Prices always come
// from this catalog, never from a caller.
func FindPlan(name string) (Plan, bool) {
	for _, plan := range Plans() {
		if strings.EqualFold(plan.Name, name) {
			return plan, true
		}
	}
	return Plan{}, false
}
