package lang

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/xerrors"
)

// Code is a translation language code as understood by the translation service.
type Code string

const (
	Albanian   Code = "sq"
	English    Code = "en"
	Serbian    Code = "sr"
	Macedonian Code = "mk"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Picker order.
var supported = []Code{Albanian, English, Serbian, Macedonian}

// Picker labels, in Albanian for the survey operators.
var labels = map[Code]string{
	Albanian:   "Shqipe",
	English:    "Angleze",
	Serbian:    "Serbe",
	Macedonian: "Maqedonase",
}

// All returns the supported languages in picker order.
func All() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)
	return out
}

// Parse accepts a BCP 47 tag ("sq", "SQ", "sr-Latn", "mk_MK") and returns the
// supported language it belongs to.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return "", xerrors.Errorf("empty code: %w", ErrUnsupportedLanguage)
	}

	tag, err := language.Parse(s)
	if err != nil {
		return "", xerrors.Errorf("%q: %w", s, ErrUnsupportedLanguage)
	}

	base, _ := tag.Base()
	code := Code(base.String())
	if !code.Valid() {
		return "", xerrors.Errorf("%q: %w", s, ErrUnsupportedLanguage)
	}
	return code, nil
}

// Valid reports whether c is one of the supported languages.
func (c Code) Valid() bool {
	for _, s := range supported {
		if s == c {
			return true
		}
	}
	return false
}

func (c Code) String() string {
	return string(c)
}

// Tag returns the language tag for c.
func (c Code) Tag() language.Tag {
	return language.Make(string(c))
}

// Name returns the language's own name for itself, e.g. "shqip" for sq.
func (c Code) Name() string {
	if name := display.Self.Name(c.Tag()); name != "" {
		return name
	}
	return string(c)
}

// Label returns the picker label, falling back to the code for unknown values.
func (c Code) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Next cycles through All, wrapping around. Unknown codes start at the first language.
func (c Code) Next() Code {
	for i, s := range supported {
		if s == c {
			return supported[(i+1)%len(supported)]
		}
	}
	return supported[0]
}
