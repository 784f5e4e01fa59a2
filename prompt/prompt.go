// Package prompt builds the request payloads sent to the inference
// provider. Construction is deterministic so identical inputs always
// produce identical payloads.
package prompt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"nutrinode/analysis"
	"nutrinode/gemini"
)

// Kind selects which request variant to build.
type Kind int

const (
	KindTextAnalysis Kind = iota
	KindImageAnalysis
	KindChat
	KindAlternative
)

// ChatFallback is shown as the model's reply when a follow-up question
// cannot reach the provider.
const ChatFallback = "Sorry, I had trouble connecting. Please check your network or API key."

// Request carries everything a payload variant needs. Analysis and
// Question are only consulted for chat and alternative requests.
type Request struct {
	Kind      Kind
	Profile   analysis.Profile
	Text      string
	ImageData []byte
	ImageMime string
	Analysis  *analysis.Result
	Question  string
}

const schemaBlock = `{
  "product_category_guess": "String (e.g. 'Energy Drink', 'Cereal')",
  "verdict_emoji": "String (single emoji)",
  "verdict_short": "String (5-7 words max, punchy, like a headline)",
  "health_score": Number (1-100, heavily weighted by if it fits the %[1]s diet),
  "nutritional_density": "String (Low/Medium/High)",
  "processing_level": "String (Minimal/Moderate/Ultra-processed)",
  "executive_summary": "String (2-3 sentences. Use 'I' and 'You'. Explain if it fits the %[1]s diet and the 'vibe'.)",
  "intent_inference": "String (Guess why the user might be eating this.)",
  "ingredients_breakdown": [
    {
      "name": "String (Ingredient Name)",
      "category": "String (e.g. 'Sugar', 'Preservative', 'Whole Food')",
      "risk_level": "String (Safe/Caution/Avoid - strict for %[1]s)",
      "reasoning": "String (Why? Explain specific relation to %[1]s if relevant.)"
    }
  ],
  "uncertainties": [
    "String (List 1-2 things you are guessing about)"
  ],
  "suggested_questions": [
    "String (Generate 3 context-aware questions the user might want to ask next)"
  ]
}`

const dietRules = `Strictly evaluate ingredients based on the %[1]s diet rules.
Example: If diet is Keto, Sugar/Grains are 'Avoid'. If Vegan, Honey/Dairy are 'Avoid'.`

// Build assembles the provider payload for a request. Analysis requests
// ask for a JSON response body; chat requests get free text.
func Build(r Request) (gemini.Payload, error) {
	switch r.Kind {
	case KindTextAnalysis:
		return buildTextAnalysis(r)
	case KindImageAnalysis:
		return buildImageAnalysis(r)
	case KindChat:
		return buildChat(r)
	case KindAlternative:
		return buildAlternative(r)
	}
	return gemini.Payload{}, fmt.Errorf("unknown request kind %d", r.Kind)
}

func jsonConfig() *gemini.GenerationConfig {
	return &gemini.GenerationConfig{ResponseMimeType: "application/json"}
}

func buildTextAnalysis(r Request) (gemini.Payload, error) {
	if len(strings.TrimSpace(r.Text)) < 3 {
		return gemini.Payload{}, fmt.Errorf("ingredient list too short")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are NutriNode, an AI-Native food analyst.\n")
	fmt.Fprintf(&b, "Target Audience Profile: %s Diet.\n\n", r.Profile)
	fmt.Fprintf(&b, "Analyze the following ingredient list: %q\n\n", r.Text)
	fmt.Fprintf(&b, dietRules, r.Profile)
	b.WriteString("\n\nReturn a valid JSON object with this exact schema:\n")
	fmt.Fprintf(&b, schemaBlock, r.Profile)

	return gemini.Payload{
		Model: gemini.ModelAnalysis,
		Contents: []gemini.Content{
			{Parts: []gemini.Part{{Text: b.String()}}},
		},
		GenerationConfig: jsonConfig(),
	}, nil
}

func buildImageAnalysis(r Request) (gemini.Payload, error) {
	if len(r.ImageData) == 0 {
		return gemini.Payload{}, fmt.Errorf("no image data")
	}
	if r.ImageMime == "" {
		return gemini.Payload{}, fmt.Errorf("no image MIME type")
	}

	var b strings.Builder
	b.WriteString("Analyze this image of a food product (ingredient label or packaging).\n")
	fmt.Fprintf(&b, "Target Audience Profile: %s Diet.\n\n", r.Profile)
	fmt.Fprintf(&b, dietRules, r.Profile)
	b.WriteString("\n\nReturn a valid JSON object with this exact schema:\n")
	fmt.Fprintf(&b, schemaBlock, r.Profile)

	return gemini.Payload{
		Model: gemini.ModelAnalysis,
		Contents: []gemini.Content{
			{Parts: []gemini.Part{
				{Text: b.String()},
				{InlineData: &gemini.InlineData{
					MimeType: r.ImageMime,
					Data:     base64.StdEncoding.EncodeToString(r.ImageData),
				}},
			}},
		},
		GenerationConfig: jsonConfig(),
	}, nil
}

func buildChat(r Request) (gemini.Payload, error) {
	if r.Analysis == nil {
		return gemini.Payload{}, fmt.Errorf("chat requires an active analysis")
	}
	if strings.TrimSpace(r.Question) == "" {
		return gemini.Payload{}, fmt.Errorf("empty question")
	}

	names := make([]string, len(r.Analysis.IngredientsBreakdown))
	for i, ing := range r.Analysis.IngredientsBreakdown {
		names[i] = ing.Name
	}
	nameList, err := json.Marshal(names)
	if err != nil {
		return gemini.Payload{}, err
	}

	var b strings.Builder
	b.WriteString("You are a helpful nutritionist assistant named NutriNode.\n")
	fmt.Fprintf(&b, "User's Diet Goal: %s.\n\n", r.Profile)
	b.WriteString("CURRENT ANALYSIS CONTEXT:\n")
	fmt.Fprintf(&b, "Product: %s\n", r.Analysis.ProductCategoryGuess)
	fmt.Fprintf(&b, "Verdict: %s\n", r.Analysis.VerdictShort)
	fmt.Fprintf(&b, "Summary: %s\n", r.Analysis.ExecutiveSummary)
	fmt.Fprintf(&b, "Ingredients: %s\n\n", nameList)
	fmt.Fprintf(&b, "USER QUESTION: %q\n\n", r.Question)
	b.WriteString("Answer the user's question briefly and helpfully based on the context above.")

	return gemini.Payload{
		Model: gemini.ModelAnalysis,
		Contents: []gemini.Content{
			{Parts: []gemini.Part{{Text: b.String()}}},
		},
	}, nil
}

func buildAlternative(r Request) (gemini.Payload, error) {
	if r.Analysis == nil {
		return gemini.Payload{}, fmt.Errorf("alternative requires an active analysis")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Context: A user is looking at a %s which has a health score of %d/100.\n",
		r.Analysis.ProductCategoryGuess, r.Analysis.HealthScore)
	fmt.Fprintf(&b, "Dietary Goal: %s.\n", r.Profile)
	fmt.Fprintf(&b, "Task: Suggest ONE specific healthier alternative type of product that fits the %s diet better.\n", r.Profile)
	b.WriteString(`Return JSON: { "name": "String", "reason": "String", "key_swap": "String" }`)

	return gemini.Payload{
		Model: gemini.ModelAnalysis,
		Contents: []gemini.Content{
			{Parts: []gemini.Part{{Text: b.String()}}},
		},
		GenerationConfig: jsonConfig(),
	}, nil
}

// Speech is the text spoken aloud for a verdict.
func Speech(a *analysis.Result) string {
	return fmt.Sprintf("Here is the Nutri Node verdict. %s. %s", a.VerdictShort, a.ExecutiveSummary)
}

// ShareText is the clipboard-ready summary of a verdict.
func ShareText(profile analysis.Profile, a *analysis.Result) string {
	return fmt.Sprintf("🍎 NutriNode Verdict (%s View): %s\n\n%q\n\nHealth Score: %d/100",
		profile, a.VerdictShort, a.ExecutiveSummary, a.HealthScore)
}

// LoadingMessages is the progress ticker sequence shown while an analysis
// is in flight.
func LoadingMessages(profile analysis.Profile) []string {
	return []string{
		"Scanning visual data...",
		"Identifying ingredients...",
		fmt.Sprintf("Applying %s lens...", profile),
		"Cross-referencing health studies...",
		"Synthesizing verdict...",
	}
}
