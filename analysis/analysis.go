// Package analysis defines the structured verdict a nutrition analysis
// produces and validates provider output against it.
package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel classifies a single ingredient.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "Safe"
	RiskCaution RiskLevel = "Caution"
	RiskAvoid   RiskLevel = "Avoid"
)

func (r RiskLevel) valid() bool {
	switch r {
	case RiskSafe, RiskCaution, RiskAvoid:
		return true
	}
	return false
}

// Profile is the dietary lens an analysis is evaluated under.
type Profile string

const (
	ProfileStandard   Profile = "Standard"
	ProfileVegan      Profile = "Vegan"
	ProfileKeto       Profile = "Keto"
	ProfileGlutenFree Profile = "Gluten-Free"
	ProfileLowFODMAP  Profile = "Low-FODMAP"
	ProfilePaleo      Profile = "Paleo"
)

// Profiles lists every dietary lens in cycle order.
var Profiles = []Profile{
	ProfileStandard,
	ProfileVegan,
	ProfileKeto,
	ProfileGlutenFree,
	ProfileLowFODMAP,
	ProfilePaleo,
}

// ParseProfile resolves a profile name case-insensitively. Unknown names
// fall back to Standard with ok=false.
func ParseProfile(s string) (Profile, bool) {
	for _, p := range Profiles {
		if strings.EqualFold(string(p), s) {
			return p, true
		}
	}
	return ProfileStandard, false
}

// Next returns the profile after p in cycle order, wrapping around.
func (p Profile) Next() Profile {
	for i, cur := range Profiles {
		if cur == p {
			return Profiles[(i+1)%len(Profiles)]
		}
	}
	return ProfileStandard
}

// Ingredient is one entry of the ingredient breakdown.
type Ingredient struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	RiskLevel RiskLevel `json:"risk_level"`
	Reasoning string    `json:"reasoning"`
}

// Result is the full structured verdict for one analysis.
type Result struct {
	ProductCategoryGuess string       `json:"product_category_guess"`
	VerdictEmoji         string       `json:"verdict_emoji"`
	VerdictShort         string       `json:"verdict_short"`
	HealthScore          int          `json:"health_score"`
	NutritionalDensity   string       `json:"nutritional_density"`
	ProcessingLevel      string       `json:"processing_level"`
	ExecutiveSummary     string       `json:"executive_summary"`
	IntentInference      string       `json:"intent_inference"`
	IngredientsBreakdown []Ingredient `json:"ingredients_breakdown"`
	Uncertainties        []string     `json:"uncertainties"`
	SuggestedQuestions   []string     `json:"suggested_questions"`
}

// Alternative is the healthier-swap suggestion offered for low-scoring
// products.
type Alternative struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	KeySwap string `json:"key_swap"`
}

// ChatRole identifies who authored a chat turn.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the follow-up conversation about a verdict.
type ChatMessage struct {
	Role ChatRole
	Text string
}

// SchemaError reports provider output that decoded but violated the
// verdict contract.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation in %s: %s", e.Field, e.Reason)
}

// Parse decodes raw provider text into a Result and validates it.
func Parse(raw string) (*Result, error) {
	var r Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, &SchemaError{Field: "body", Reason: err.Error()}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate enforces the verdict contract. Suggested questions beyond the
// first three are dropped rather than rejected.
func (r *Result) Validate() error {
	if r.HealthScore < 1 || r.HealthScore > 100 {
		return &SchemaError{
			Field:  "health_score",
			Reason: fmt.Sprintf("%d outside 1-100", r.HealthScore),
		}
	}
	if r.VerdictShort == "" {
		return &SchemaError{Field: "verdict_short", Reason: "empty"}
	}
	if r.ExecutiveSummary == "" {
		return &SchemaError{Field: "executive_summary", Reason: "empty"}
	}
	for i, ing := range r.IngredientsBreakdown {
		if !ing.RiskLevel.valid() {
			return &SchemaError{
				Field:  fmt.Sprintf("ingredients_breakdown[%d].risk_level", i),
				Reason: fmt.Sprintf("unknown value %q", ing.RiskLevel),
			}
		}
	}
	if len(r.SuggestedQuestions) > 3 {
		r.SuggestedQuestions = r.SuggestedQuestions[:3]
	}
	return nil
}

// ParseAlternative decodes raw provider text into an Alternative.
func ParseAlternative(raw string) (*Alternative, error) {
	var a Alternative
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, &SchemaError{Field: "body", Reason: err.Error()}
	}
	if a.Name == "" {
		return nil, &SchemaError{Field: "name", Reason: "empty"}
	}
	return &a, nil
}
