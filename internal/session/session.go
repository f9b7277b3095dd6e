// Package session tracks which sheets of an open workbook have already been
// translated during one run of the tool.
package session

import (
	"errors"

	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/types"
)

var (
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrAlreadyTranslated = errors.New("sheet already translated")
)

// Session is owned by one caller and is not safe for concurrent use.
type Session struct {
	wb         *types.Workbook
	translated map[string]bool
	order      []string
	selected   string
}

func New(wb *types.Workbook) *Session {
	s := &Session{wb: wb, translated: make(map[string]bool)}
	if len(wb.Sheets) > 0 {
		s.selected = wb.Sheets[0].Name
	}
	return s
}

// Workbook returns the workbook with every committed translation applied.
func (s *Session) Workbook() *types.Workbook {
	return s.wb
}

// Available lists the sheets not translated yet, in workbook order.
func (s *Session) Available() []string {
	var out []string
	for _, sh := range s.wb.Sheets {
		if !s.translated[sh.Name] {
			out = append(out, sh.Name)
		}
	}
	return out
}

// Select marks a sheet as the one being worked on.
func (s *Session) Select(name string) error {
	if s.wb.Sheet(name) == nil {
		return xerrors.Errorf("%q: %w", name, ErrSheetNotFound)
	}
	if s.translated[name] {
		return xerrors.Errorf("%q: %w", name, ErrAlreadyTranslated)
	}
	s.selected = name
	return nil
}

func (s *Session) Selected() string {
	return s.selected
}

// Sheet returns the current data of a sheet.
func (s *Session) Sheet(name string) (*types.SheetData, error) {
	sh := s.wb.Sheet(name)
	if sh == nil {
		return nil, xerrors.Errorf("%q: %w", name, ErrSheetNotFound)
	}
	return sh, nil
}

// Commit replaces the sheet with the same name and marks it translated.
func (s *Session) Commit(data *types.SheetData) error {
	for i, sh := range s.wb.Sheets {
		if sh.Name != data.Name {
			continue
		}
		s.wb.Sheets[i] = data
		if !s.translated[data.Name] {
			s.translated[data.Name] = true
			s.order = append(s.order, data.Name)
		}
		return nil
	}
	return xerrors.Errorf("%q: %w", data.Name, ErrSheetNotFound)
}

// IsTranslated reports whether the sheet has been committed.
func (s *Session) IsTranslated(name string) bool {
	return s.translated[name]
}

// Translated lists the committed sheets in commit order.
func (s *Session) Translated() []string {
	return append([]string(nil), s.order...)
}

// Done reports whether every sheet has been translated.
func (s *Session) Done() bool {
	return len(s.Available()) == 0
}
