package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain value", "Stiga", "Stiga"},
		{"surrounding whitespace", "  Stiga \n", "Stiga"},
		{"quoted value", `"Stiga"`, "Stiga"},
		{"first line wins", "Stiga\nBecause the text mentions it.", "Stiga"},
		{"leading blank lines", "\n\nStiga", "Stiga"},
		{"no answer token", "NO ANSWER", ""},
		{"no answer lowercase", "no answer", ""},
		{"empty reply", "", ""},
		{"whitespace only", "  \n \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAnswer(tt.text))
		})
	}
}

func TestModelFor(t *testing.T) {
	a := &Anthropic{cfg: Config{FlagshipModel: "flagship", EfficientModel: "efficient"}}

	assert.Equal(t, "efficient", a.modelFor("brand"))
	assert.Equal(t, "efficient", a.modelFor("Brand"))
	assert.Equal(t, "efficient", a.modelFor("stock status"))
	assert.Equal(t, "efficient", a.modelFor("variant attribute name"))
	assert.Equal(t, "flagship", a.modelFor("category"))
	assert.Equal(t, "flagship", a.modelFor("model"))
}

func TestBuildPrompt_IncludesHintsAndExamples(t *testing.T) {
	a := &Anthropic{cfg: Config{MaxExamples: 1}}
	prompt := a.buildPrompt(Request{
		Attribute:   "brand",
		ProductName: "Tenergy 05",
		URL:         "https://example.com/p/1",
		Hints:       []string{"Butterfly", "Stiga"},
		Examples: []Example{
			{Key: "Evolution MX-P", Value: "Tibhar"},
			{Key: "Rakza 7", Value: "Yasaka"},
		},
	})

	assert.Contains(t, prompt, "Tenergy 05")
	assert.Contains(t, prompt, "Butterfly, Stiga")
	assert.Contains(t, prompt, "Tibhar")
	// MaxExamples caps the consistency sample.
	assert.NotContains(t, prompt, "Yasaka")
}
