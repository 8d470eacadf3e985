// Package scoring computes the heuristic qualification score for a lead.
package scoring

// Attributes is the snapshot of lead fields the score is derived from.
type Attributes struct {
	Company  string
	Title    string
	Phone    string
	Budget   string
	Interest string
}

// Weights per attribute. The terms sum to 100 with the interaction cap,
// so the score never needs explicit clamping.
const (
	companyPoints  = 20
	titlePoints    = 15
	phonePoints    = 10
	budgetPoints   = 25
	interestPoints = 20

	pointsPerInteraction = 2
	interactionCap       = 10
)

// Score maps a lead's attribute completeness and interaction count to a
// qualification score in [0,100]. Pure and deterministic; persistence of the
// result is the caller's concern.
func Score(attrs Attributes, interactionCount int) int {
	score := 0
	if attrs.Company != "" {
		score += companyPoints
	}
	if attrs.Title != "" {
		score += titlePoints
	}
	if attrs.Phone != "" {
		score += phonePoints
	}
	if attrs.Budget != "" {
		score += budgetPoints
	}
	if attrs.Interest != "" {
		score += interestPoints
	}

	interactionPoints := pointsPerInteraction * interactionCount
	if interactionPoints > interactionCap {
		interactionPoints = interactionCap
	}
	if interactionPoints > 0 {
		score += interactionPoints
	}

	return score
}
