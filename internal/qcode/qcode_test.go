package qcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nconklindev/qtranslate/internal/lang"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		code      string
		remainder string
	}{
		{"Plain code", "Q12 How old are you?", "Q12", " How old are you?"},
		{"Code with suffix", "P7a Your opinion:", "P7a", " Your opinion:"},
		{"Code only", "Q5", "Q5", ""},
		{"No separator", "Q3bWhat?", "Q3b", "What?"},
		{"Second letter stays in remainder", "Q12ab text", "Q12a", "b text"},
		{"Multi-line remainder", "Q1 first\nsecond", "Q1", " first\nsecond"},
		{"No code", "How old are you?", "", "How old are you?"},
		{"Lowercase family", "q12 text", "", "q12 text"},
		{"Family without digits", "Question 1", "", "Question 1"},
		{"Other family", "A12 text", "", "A12 text"},
		{"Leading space", " Q12 text", "", " Q12 text"},
		{"Empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, rest := Extract(tt.input)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.remainder, rest)
		})
	}
}

func TestParse(t *testing.T) {
	c, rest, ok := Parse("P3b Rate the service")
	assert.True(t, ok)
	assert.Equal(t, FamilyP, c.Family)
	assert.Equal(t, "3", c.Number)
	assert.Equal(t, "b", c.Suffix)
	assert.Equal(t, "P3b", c.String())
	assert.Equal(t, " Rate the service", rest)

	_, rest, ok = Parse("Rate the service")
	assert.False(t, ok)
	assert.Equal(t, "Rate the service", rest)
}

func TestRemapFamily(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		from, to lang.Code
		expected string
	}{
		{"en to sq", "Q12", lang.English, lang.Albanian, "P12"},
		{"en to sr", "Q12", lang.English, lang.Serbian, "P12"},
		{"en to mk", "Q12", lang.English, lang.Macedonian, "P12"},
		{"sq to en", "P7a", lang.Albanian, lang.English, "Q7a"},
		{"mk to en is not declared", "Q12", lang.Macedonian, lang.English, "Q12"},
		{"mk to en keeps P", "P12", lang.Macedonian, lang.English, "P12"},
		{"sr to sq is not declared", "P4", lang.Serbian, lang.Albanian, "P4"},
		{"sq to sr is not declared", "P4", lang.Albanian, lang.Serbian, "P4"},
		{"Identity pair", "Q1", lang.English, lang.English, "Q1"},
		{"Wrong family for pair", "P12", lang.English, lang.Albanian, "P12"},
		{"Suffix letter untouched", "Q1q", lang.English, lang.Albanian, "P1q"},
		{"Suffix P untouched", "P1P", lang.Albanian, lang.English, "Q1P"},
		{"Unknown language", "Q1", lang.Code("de"), lang.Albanian, "Q1"},
		{"Empty code", "", lang.English, lang.Albanian, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemapFamily(tt.code, tt.from, tt.to))
		})
	}
}

func TestRulesAreOnlyTheDeclaredPairs(t *testing.T) {
	declared := 0
	for _, from := range lang.All() {
		for _, to := range lang.All() {
			if _, ok := Lookup(from, to); ok {
				declared++
			}
		}
	}
	assert.Equal(t, 4, declared)
	assert.Len(t, Rules, 4)
}
