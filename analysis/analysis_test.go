package analysis

import (
	"errors"
	"testing"
)

const validVerdict = `{
  "product_category_guess": "Breakfast Cereal",
  "verdict_emoji": "⚠️",
  "verdict_short": "Sugar Bomb",
  "health_score": 34,
  "nutritional_density": "Low",
  "processing_level": "Ultra-Processed",
  "executive_summary": "Mostly refined grains and added sugar.",
  "intent_inference": "You seem to be checking a kids' cereal.",
  "ingredients_breakdown": [
    {"name": "Sugar", "category": "Sweetener", "risk_level": "Avoid", "reasoning": "Second ingredient by weight."},
    {"name": "Whole Oats", "category": "Grain", "risk_level": "Safe", "reasoning": "Intact fiber."}
  ],
  "uncertainties": ["Serving size not visible"],
  "suggested_questions": ["Is this OK for kids?", "What about the diet version?"]
}`

func TestParseValid(t *testing.T) {
	r, err := Parse(validVerdict)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if r.HealthScore != 34 {
		t.Errorf("HealthScore = %d, want 34", r.HealthScore)
	}
	if r.VerdictShort != "Sugar Bomb" {
		t.Errorf("VerdictShort = %q", r.VerdictShort)
	}
	if len(r.IngredientsBreakdown) != 2 {
		t.Fatalf("ingredients = %d, want 2", len(r.IngredientsBreakdown))
	}
	if r.IngredientsBreakdown[0].RiskLevel != RiskAvoid {
		t.Errorf("risk = %q, want Avoid", r.IngredientsBreakdown[0].RiskLevel)
	}
}

func TestParseRejectsScoreOutOfRange(t *testing.T) {
	for _, score := range []string{"0", "101", "-5"} {
		raw := `{"verdict_short":"x","executive_summary":"y","health_score":` + score + `}`
		_, err := Parse(raw)
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("score %s: error = %v, want SchemaError", score, err)
		}
		if se.Field != "health_score" {
			t.Errorf("score %s: field = %q", score, se.Field)
		}
	}
}

func TestParseRejectsUnknownRisk(t *testing.T) {
	raw := `{"verdict_short":"x","executive_summary":"y","health_score":50,
	  "ingredients_breakdown":[{"name":"Salt","risk_level":"Maybe"}]}`
	_, err := Parse(raw)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse("not json at all"); err == nil {
		t.Fatal("Parse() accepted malformed input")
	}
}

func TestValidateClampsQuestions(t *testing.T) {
	r := &Result{
		VerdictShort:       "x",
		ExecutiveSummary:   "y",
		HealthScore:        70,
		SuggestedQuestions: []string{"a", "b", "c", "d", "e"},
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(r.SuggestedQuestions) != 3 {
		t.Errorf("questions = %d, want 3", len(r.SuggestedQuestions))
	}
}

func TestParseAlternative(t *testing.T) {
	a, err := ParseAlternative(`{"name":"Plain Oats","reason":"No added sugar.","key_swap":"Sugar → none"}`)
	if err != nil {
		t.Fatalf("ParseAlternative() error = %v", err)
	}
	if a.KeySwap != "Sugar → none" {
		t.Errorf("KeySwap = %q", a.KeySwap)
	}
	if _, err := ParseAlternative(`{"reason":"r"}`); err == nil {
		t.Error("accepted alternative without a name")
	}
}

func TestProfileCycle(t *testing.T) {
	p := ProfileStandard
	seen := map[Profile]bool{}
	for range Profiles {
		if seen[p] {
			t.Fatalf("profile %q repeated before full cycle", p)
		}
		seen[p] = true
		p = p.Next()
	}
	if p != ProfileStandard {
		t.Errorf("cycle did not wrap, ended at %q", p)
	}
}

func TestParseProfile(t *testing.T) {
	if p, ok := ParseProfile("keto"); !ok || p != ProfileKeto {
		t.Errorf("ParseProfile(keto) = %q, %v", p, ok)
	}
	if p, ok := ParseProfile("carnivore"); ok || p != ProfileStandard {
		t.Errorf("ParseProfile(carnivore) = %q, %v", p, ok)
	}
}
