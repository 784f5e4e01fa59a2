package prompt

import (
	"encoding/base64"
	"reflect"
	"strings"
	"testing"

	"nutrinode/analysis"
	"nutrinode/gemini"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		ProductCategoryGuess: "Energy Drink",
		VerdictShort:         "Liquid Candy With Caffeine",
		HealthScore:          22,
		ExecutiveSummary:     "I see mostly sugar and stimulants here.",
		IngredientsBreakdown: []analysis.Ingredient{
			{Name: "Sugar", RiskLevel: analysis.RiskAvoid},
			{Name: "Taurine", RiskLevel: analysis.RiskCaution},
		},
	}
}

func TestTextAnalysisPayload(t *testing.T) {
	p, err := Build(Request{
		Kind:    KindTextAnalysis,
		Profile: analysis.ProfileKeto,
		Text:    "water, sugar, salt",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.Model != gemini.ModelAnalysis {
		t.Errorf("model = %q", p.Model)
	}
	if p.GenerationConfig == nil || p.GenerationConfig.ResponseMimeType != "application/json" {
		t.Error("analysis payload must request a JSON response")
	}

	text := p.Contents[0].Parts[0].Text
	for _, want := range []string{
		"water, sugar, salt",
		"Keto",
		"Sugar/Grains are 'Avoid'",
		"product_category_guess",
		"suggested_questions",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestTextAnalysisRejectsShortInput(t *testing.T) {
	for _, in := range []string{"", "  ", "ab"} {
		if _, err := Build(Request{Kind: KindTextAnalysis, Profile: analysis.ProfileStandard, Text: in}); err == nil {
			t.Errorf("input %q accepted", in)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	r := Request{Kind: KindTextAnalysis, Profile: analysis.ProfileVegan, Text: "oats, honey"}
	a, err := Build(r)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(r)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical requests produced different payloads")
	}
}

func TestImageAnalysisPayload(t *testing.T) {
	img := []byte{0x89, 0x50, 0x4e, 0x47}
	p, err := Build(Request{
		Kind:      KindImageAnalysis,
		Profile:   analysis.ProfileStandard,
		ImageData: img,
		ImageMime: "image/png",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	parts := p.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if parts[1].InlineData == nil {
		t.Fatal("missing inline image data")
	}
	if parts[1].InlineData.MimeType != "image/png" {
		t.Errorf("mime = %q", parts[1].InlineData.MimeType)
	}
	if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString(img) {
		t.Error("image bytes not base64-encoded verbatim")
	}
}

func TestImageAnalysisRequiresData(t *testing.T) {
	if _, err := Build(Request{Kind: KindImageAnalysis, Profile: analysis.ProfileStandard}); err == nil {
		t.Error("accepted image request without data")
	}
}

func TestChatPayloadCarriesContext(t *testing.T) {
	p, err := Build(Request{
		Kind:     KindChat,
		Profile:  analysis.ProfileKeto,
		Analysis: sampleResult(),
		Question: "Is taurine safe?",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.GenerationConfig != nil {
		t.Error("chat payload must not force a JSON response")
	}

	text := p.Contents[0].Parts[0].Text
	for _, want := range []string{
		"Energy Drink",
		"Liquid Candy With Caffeine",
		`["Sugar","Taurine"]`,
		"Is taurine safe?",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("chat prompt missing %q", want)
		}
	}
}

func TestChatRequiresAnalysis(t *testing.T) {
	if _, err := Build(Request{Kind: KindChat, Question: "hi"}); err == nil {
		t.Error("accepted chat request without an analysis")
	}
}

func TestAlternativePayload(t *testing.T) {
	p, err := Build(Request{
		Kind:     KindAlternative,
		Profile:  analysis.ProfileVegan,
		Analysis: sampleResult(),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.GenerationConfig == nil || p.GenerationConfig.ResponseMimeType != "application/json" {
		t.Error("alternative payload must request a JSON response")
	}

	text := p.Contents[0].Parts[0].Text
	if !strings.Contains(text, "22/100") {
		t.Error("alternative prompt missing health score")
	}
	if !strings.Contains(text, `"key_swap"`) {
		t.Error("alternative prompt missing key_swap schema")
	}
}

func TestSpeech(t *testing.T) {
	got := Speech(sampleResult())
	want := "Here is the Nutri Node verdict. Liquid Candy With Caffeine. I see mostly sugar and stimulants here."
	if got != want {
		t.Errorf("Speech() = %q, want %q", got, want)
	}
}

func TestShareText(t *testing.T) {
	got := ShareText(analysis.ProfileKeto, sampleResult())
	for _, want := range []string{
		"NutriNode Verdict (Keto View): Liquid Candy With Caffeine",
		"Health Score: 22/100",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("share text missing %q in %q", want, got)
		}
	}
}

func TestLoadingMessagesIncludeProfile(t *testing.T) {
	msgs := LoadingMessages(analysis.ProfilePaleo)
	if len(msgs) != 5 {
		t.Fatalf("messages = %d, want 5", len(msgs))
	}
	if msgs[2] != "Applying Paleo lens..." {
		t.Errorf("profile lens line = %q", msgs[2])
	}
}
