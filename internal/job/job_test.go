package job

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/qtranslate/internal/lang"
)

const samplePlan = `
input: survey.xlsx
sheets:
  - name: Wave1
    source_column: Question
    source_lang: en
    targets:
      - column: Pyetja
        lang: sq
      - column: Прашање
        lang: mk-MK
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "survey.xlsx"), p.InputPath())
	assert.Equal(t, filepath.Join(dir, "survey_translated.xlsx"), p.OutputPath())

	require.Len(t, p.Sheets, 1)
	s := p.Sheets[0]
	assert.Equal(t, "Wave1", s.Name)
	assert.Equal(t, lang.English, s.Language())
	require.Len(t, s.Targets, 2)
	assert.Equal(t, "Прашање", s.Targets[1].Column)
	assert.Equal(t, lang.Macedonian, s.Targets[1].Language())
}

func TestOutputOverride(t *testing.T) {
	p, err := Parse([]byte(samplePlan + "output: /tmp/out.xlsx\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.xlsx", p.OutputPath())
	assert.Equal(t, "survey.xlsx", p.InputPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"No input", "sheets: [{name: a, source_column: q, source_lang: en, targets: [{column: x, lang: sq}]}]"},
		{"No sheets", "input: a.xlsx"},
		{"Sheet without name", "input: a.xlsx\nsheets: [{source_column: q, source_lang: en, targets: [{column: x, lang: sq}]}]"},
		{"Duplicate sheet", "input: a.xlsx\nsheets: [{name: a, source_column: q, source_lang: en, targets: [{column: x, lang: sq}]}, {name: a, source_column: q, source_lang: en, targets: [{column: x, lang: sq}]}]"},
		{"No source column", "input: a.xlsx\nsheets: [{name: a, source_lang: en, targets: [{column: x, lang: sq}]}]"},
		{"No targets", "input: a.xlsx\nsheets: [{name: a, source_column: q, source_lang: en}]"},
		{"Target is source", "input: a.xlsx\nsheets: [{name: a, source_column: q, source_lang: en, targets: [{column: q, lang: sq}]}]"},
		{"Target without column", "input: a.xlsx\nsheets: [{name: a, source_column: q, source_lang: en, targets: [{lang: sq}]}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPlan), "got %v", err)
		})
	}
}

func TestValidateLanguages(t *testing.T) {
	_, err := Parse([]byte("input: a.xlsx\nsheets: [{name: a, source_column: q, source_lang: de, targets: [{column: x, lang: sq}]}]"))
	assert.True(t, errors.Is(err, lang.ErrUnsupportedLanguage))

	_, err = Parse([]byte("input: a.xlsx\nsheets: [{name: a, source_column: q, source_lang: en, targets: [{column: x, lang: fr}]}]"))
	assert.True(t, errors.Is(err, lang.ErrUnsupportedLanguage))
}

func TestMarshalRoundTrip(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)

	data, err := p.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, p.Sheets, back.Sheets)
	assert.NotContains(t, string(data), "output:")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
