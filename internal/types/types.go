// Package types defines the domain types shared across the incident pipeline.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Crime categorizes a reported incident. The set is closed: classification
// output carrying any other token is a validation failure, not a new category.
type Crime string

const (
	CrimeRockThrowing    Crime = "rock_throwing"
	CrimeMolotovCocktail Crime = "molotov_cocktail"
	CrimeRamming         Crime = "ramming"
	CrimeStabbing        Crime = "stabbing"
	CrimeShooting        Crime = "shooting"
	CrimeTheft           Crime = "theft"
)

// AllCrimes lists every valid crime type, in prompt order.
var AllCrimes = []Crime{
	CrimeRockThrowing,
	CrimeMolotovCocktail,
	CrimeRamming,
	CrimeStabbing,
	CrimeShooting,
	CrimeTheft,
}

// IsValid checks if the crime value is one of the enumerated types
func (c Crime) IsValid() bool {
	switch c {
	case CrimeRockThrowing, CrimeMolotovCocktail, CrimeRamming,
		CrimeStabbing, CrimeShooting, CrimeTheft:
		return true
	}
	return false
}

// Label returns the human-readable form, e.g. "rock_throwing" -> "Rock Throwing".
func (c Crime) Label() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Classification is the outcome of the plan step: either the report was
// judged not relevant (Reason explains why) or it names a concrete incident.
type Classification struct {
	Relevant bool   `json:"relevant"`
	Reason   string `json:"reason,omitempty"`

	// Set only when Relevant is true.
	Location              string `json:"location,omitempty"`
	Crime                 Crime  `json:"crime,omitempty"`
	RequiresPriorityAlert bool   `json:"requires_priority_alert,omitempty"`
}

// NotRelevant builds a skip classification with the given reason.
func NotRelevant(reason string) Classification {
	return Classification{Relevant: false, Reason: reason}
}

// Validate checks the classification invariants. A relevant classification
// must carry a location and a valid crime.
func (c *Classification) Validate() error {
	if !c.Relevant {
		return nil
	}
	if strings.TrimSpace(c.Location) == "" {
		return fmt.Errorf("relevant classification missing location")
	}
	if !c.Crime.IsValid() {
		return fmt.Errorf("invalid crime type: %q", c.Crime)
	}
	return nil
}

// Incident is a validated incident record. Immutable after creation; the
// persist path derives its dedup fingerprint from these three fields.
type Incident struct {
	Location  string    `json:"location"`
	Crime     Crime     `json:"crime"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the incident has valid field values
func (i *Incident) Validate() error {
	if strings.TrimSpace(i.Location) == "" {
		return fmt.Errorf("location is required")
	}
	if !i.Crime.IsValid() {
		return fmt.Errorf("invalid crime type: %q", i.Crime)
	}
	if i.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}

// Evaluation is the scored verdict on a translation attempt. Score is on the
// evaluator's native 0-10 scale; the pipeline normalizes to [0,1] before
// storing it in loop state.
type Evaluation struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// EvaluationScoreMax is the top of the evaluator's native score range.
const EvaluationScoreMax = 10.0

// Validate checks the evaluation against its schema constraints.
func (e *Evaluation) Validate() error {
	if e.Score < 0 || e.Score > EvaluationScoreMax {
		return fmt.Errorf("score must be between 0 and %v (got %v)", EvaluationScoreMax, e.Score)
	}
	return nil
}
