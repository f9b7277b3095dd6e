// Package qcode parses the question code that leads a questionnaire cell
// ("Q12", "Q12a", "P3b") and rewrites its family letter when a questionnaire
// moves between language conventions.
package qcode

import "regexp"

// Family is the leading letter of a question code.
type Family byte

const (
	FamilyQ Family = 'Q'
	FamilyP Family = 'P'
)

func (f Family) String() string {
	return string(rune(f))
}

// (?s) so a multi-line cell keeps everything after the code in the remainder.
var codePattern = regexp.MustCompile(`(?s)^([QP])(\d+)([a-zA-Z]?)(.*)$`)

// Code is a parsed question code.
type Code struct {
	Family Family
	Number string
	Suffix string
}

func (c Code) String() string {
	return c.Family.String() + c.Number + c.Suffix
}

// Parse splits text into its leading question code and the remainder.
// ok is false when text does not start with a code.
func Parse(text string) (code Code, remainder string, ok bool) {
	m := codePattern.FindStringSubmatch(text)
	if m == nil {
		return Code{}, text, false
	}
	return Code{Family: Family(m[1][0]), Number: m[2], Suffix: m[3]}, m[4], true
}

// Extract returns the leading question code and everything after it. Text
// without a code comes back whole as the remainder with an empty code.
func Extract(text string) (code, remainder string) {
	c, rest, ok := Parse(text)
	if !ok {
		return "", text
	}
	return c.String(), rest
}
