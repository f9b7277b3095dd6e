package types

import "github.com/nconklindev/qtranslate/internal/lang"

// SheetData is one sheet read from a workbook. Rows are padded on write, so
// a row may be shorter than Headers.
type SheetData struct {
	Name string
	// Preamble holds the blank rows above the header row.
	Preamble [][]string
	Headers  []string
	Rows     [][]string
	// HeaderRow is the zero-based row index of Headers in the sheet.
	HeaderRow int
}

// ColumnIndex returns the index of the column with the given header, or -1.
func (s *SheetData) ColumnIndex(header string) int {
	for i, h := range s.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Cell returns the value at row, col, or "" past the end of a short row.
func (s *SheetData) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// SetCell writes a value, growing the row as needed.
func (s *SheetData) SetCell(row, col int, value string) {
	for len(s.Rows[row]) <= col {
		s.Rows[row] = append(s.Rows[row], "")
	}
	s.Rows[row][col] = value
}

// Clone returns a deep copy.
func (s *SheetData) Clone() *SheetData {
	return &SheetData{
		Name:      s.Name,
		Preamble:  cloneRows(s.Preamble),
		Headers:   append([]string(nil), s.Headers...),
		Rows:      cloneRows(s.Rows),
		HeaderRow: s.HeaderRow,
	}
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Workbook is every sheet of an input file, in file order.
type Workbook struct {
	Path   string
	Sheets []*SheetData
}

// SheetNames lists the sheet names in file order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the named sheet or nil.
func (w *Workbook) Sheet(name string) *SheetData {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ColumnStats counts what happened to the cells of one translated column.
type ColumnStats struct {
	Sheet      string
	Source     string
	Target     string
	From       lang.Code
	To         lang.Code
	Translated int
	Failed     int
	Skipped    int
}

// Cells is the number of rows the column went through.
func (c ColumnStats) Cells() int {
	return c.Translated + c.Failed + c.Skipped
}

// TranslationResult summarises a finished run.
type TranslationResult struct {
	InputFile  string
	OutputFile string
	Sheets     []string
	Columns    []ColumnStats
}

// Totals adds up the column counters.
func (r *TranslationResult) Totals() (translated, failed, skipped int) {
	for _, c := range r.Columns {
		translated += c.Translated
		failed += c.Failed
		skipped += c.Skipped
	}
	return translated, failed, skipped
}
