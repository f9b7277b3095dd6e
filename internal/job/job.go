// Package job reads translation plans for headless runs.
//
// A plan names the input workbook and, per sheet, the column holding the
// questionnaire text, its language and the columns to fill with each
// translation:
//
//	input: survey.xlsx
//	sheets:
//	  - name: Wave1
//	    source_column: Question
//	    source_lang: en
//	    targets:
//	      - column: Pyetja
//	        lang: sq
package job

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/nconklindev/qtranslate/internal/lang"
	"github.com/nconklindev/qtranslate/internal/workbook"
)

var ErrInvalidPlan = errors.New("invalid plan")

// Plan is the top-level job file structure.
type Plan struct {
	// Input is the workbook to translate, relative to the plan file.
	Input string `yaml:"input"`
	// Output defaults to <input>_translated.<ext>.
	Output string      `yaml:"output,omitempty"`
	Sheets []SheetPlan `yaml:"sheets"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// SheetPlan describes the translations of one sheet.
type SheetPlan struct {
	Name         string   `yaml:"name"`
	SourceColumn string   `yaml:"source_column"`
	SourceLang   string   `yaml:"source_lang"`
	Targets      []Target `yaml:"targets"`
}

// Target is one output column and its language.
type Target struct {
	Column string `yaml:"column"`
	Lang   string `yaml:"lang"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading plan: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Parse decodes and validates a plan. Relative paths stay relative to the
// working directory.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, xerrors.Errorf("parsing plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks names and languages.
func (p *Plan) Validate() error {
	if p.Input == "" {
		return xerrors.Errorf("input is required: %w", ErrInvalidPlan)
	}
	if len(p.Sheets) == 0 {
		return xerrors.Errorf("at least one sheet is required: %w", ErrInvalidPlan)
	}

	seen := make(map[string]bool)
	for i, s := range p.Sheets {
		if s.Name == "" {
			return xerrors.Errorf("sheets[%d]: name is required: %w", i, ErrInvalidPlan)
		}
		if seen[s.Name] {
			return xerrors.Errorf("sheet %q listed twice: %w", s.Name, ErrInvalidPlan)
		}
		seen[s.Name] = true

		if s.SourceColumn == "" {
			return xerrors.Errorf("sheet %q: source_column is required: %w", s.Name, ErrInvalidPlan)
		}
		if _, err := lang.Parse(s.SourceLang); err != nil {
			return xerrors.Errorf("sheet %q: source_lang: %w", s.Name, err)
		}
		if len(s.Targets) == 0 {
			return xerrors.Errorf("sheet %q: at least one target is required: %w", s.Name, ErrInvalidPlan)
		}
		for j, t := range s.Targets {
			if t.Column == "" {
				return xerrors.Errorf("sheet %q: targets[%d]: column is required: %w", s.Name, j, ErrInvalidPlan)
			}
			if t.Column == s.SourceColumn {
				return xerrors.Errorf("sheet %q: targets[%d]: column %q is the source column: %w", s.Name, j, t.Column, ErrInvalidPlan)
			}
			if _, err := lang.Parse(t.Lang); err != nil {
				return xerrors.Errorf("sheet %q: targets[%d]: %w", s.Name, j, err)
			}
		}
	}
	return nil
}

// Language returns the parsed source language of s. Validate has already
// checked it.
func (s SheetPlan) Language() lang.Code {
	c, _ := lang.Parse(s.SourceLang)
	return c
}

// Language returns the parsed target language.
func (t Target) Language() lang.Code {
	c, _ := lang.Parse(t.Lang)
	return c
}

func (p *Plan) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}

// InputPath is the input workbook path.
func (p *Plan) InputPath() string {
	return p.resolve(p.Input)
}

// OutputPath is the output workbook path.
func (p *Plan) OutputPath() string {
	if p.Output != "" {
		return p.resolve(p.Output)
	}
	return workbook.OutputPath(p.InputPath())
}

// Marshal encodes the plan as YAML.
func (p *Plan) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
