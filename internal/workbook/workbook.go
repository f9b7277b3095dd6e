// Package workbook reads questionnaires from .xlsx and .csv files and writes
// the translated sheets back.
package workbook

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/xuri/excelize/v2"
	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/types"
)

var log = logging.Logger("workbook")

// rawValues reads stored values instead of display-formatted text, so a
// 1.5 shown as "1.50" reads back as "1.5".
var rawValues = excelize.Options{RawCellValue: true}

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmptyFile         = errors.New("empty file")
)

// Open reads every sheet of an .xlsx file, or the single table of a .csv file.
func Open(path string) (*types.Workbook, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, xerrors.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
}

// OutputPath derives the default output file name from the input file name.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "_translated" + ext
}

func sheetNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readCSV(path string) (*types.Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, xerrors.Errorf("reading %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, xerrors.Errorf("%s: %w", path, ErrEmptyFile)
	}
	// Excel's "CSV UTF-8" export starts with a byte order mark
	if len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	return &types.Workbook{
		Path: path,
		Sheets: []*types.SheetData{{
			Name:    sheetNameFromPath(path),
			Headers: records[0],
			Rows:    records[1:],
		}},
	}, nil
}

func readXLSX(path string) (*types.Workbook, error) {
	f, err := excelize.OpenFile(path, rawValues)
	if err != nil {
		return nil, xerrors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	wb := &types.Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, rawValues)
		if err != nil {
			return nil, xerrors.Errorf("reading sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, sheetFromRows(name, rows))
	}

	if len(wb.Sheets) == 0 {
		return nil, xerrors.Errorf("%s: %w", path, ErrEmptyFile)
	}

	log.Infow("opened workbook", "path", path, "sheets", len(wb.Sheets))
	return wb, nil
}

// sheetFromRows takes the first non-empty row as the header. Blank rows
// above it are kept as the preamble so rows are written back in place.
func sheetFromRows(name string, rows [][]string) *types.SheetData {
	if len(rows) == 0 {
		return &types.SheetData{Name: name}
	}

	header := firstNonEmptyRow(rows)
	return &types.SheetData{
		Name:      name,
		Preamble:  rows[:header],
		Headers:   rows[header],
		Rows:      rows[header+1:],
		HeaderRow: header,
	}
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return 0
}

// Save writes every sheet of wb to path. An .xlsx source workbook is reopened
// and only the cells whose value changed are written, so formatting, formulas
// and untouched cells survive.
func Save(wb *types.Workbook, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return writeCSV(wb, path)
	case ".xlsx":
		return writeXLSX(wb, path)
	default:
		return xerrors.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
}

func writeCSV(wb *types.Workbook, path string) error {
	if len(wb.Sheets) != 1 {
		return xerrors.Errorf("csv output holds one sheet, workbook has %d", len(wb.Sheets))
	}
	s := wb.Sheets[0]

	records := make([][]string, 0, len(s.Rows)+1)
	records = append(records, s.Headers)
	records = append(records, s.Rows...)

	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	if err := writer.WriteAll(records); err != nil {
		return xerrors.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// openOrCreate reopens an .xlsx source, or starts a fresh file when the
// source is not a workbook. fresh is true in the latter case.
func openOrCreate(source string) (f *excelize.File, fresh bool) {
	if !strings.EqualFold(filepath.Ext(source), ".xlsx") {
		return excelize.NewFile(), true
	}

	f, err := excelize.OpenFile(source, rawValues)
	if err != nil {
		log.Warnw("could not reopen source workbook, writing a fresh one", "path", source, "error", err)
		return excelize.NewFile(), true
	}
	return f, false
}

func writeXLSX(wb *types.Workbook, path string) error {
	f, fresh := openOrCreate(wb.Path)
	defer f.Close()

	for i, s := range wb.Sheets {
		if err := ensureSheet(f, s.Name, fresh && i == 0); err != nil {
			return err
		}

		var before [][]string
		if !fresh {
			rows, err := f.GetRows(s.Name, rawValues)
			if err != nil {
				return xerrors.Errorf("reading sheet %q: %w", s.Name, err)
			}
			before = rows
		}

		if err := writeSheet(f, s, before); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return xerrors.Errorf("saving %s: %w", path, err)
	}

	log.Infow("saved workbook", "path", path, "sheets", len(wb.Sheets))
	return nil
}

// ensureSheet makes sure the named sheet exists. A fresh file starts with one
// default sheet, which becomes the first sheet of the workbook.
func ensureSheet(f *excelize.File, name string, reuseDefault bool) error {
	if reuseDefault {
		if def := f.GetSheetName(0); def != name {
			if err := f.SetSheetName(def, name); err != nil {
				return xerrors.Errorf("renaming sheet %q: %w", name, err)
			}
		}
		return nil
	}

	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return xerrors.Errorf("sheet %q: %w", name, err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(name); err != nil {
			return xerrors.Errorf("creating sheet %q: %w", name, err)
		}
	}
	return nil
}

// writeSheet sets every cell of s whose value differs from before, the raw
// rows already in the sheet.
func writeSheet(f *excelize.File, s *types.SheetData, before [][]string) error {
	rows := make([][]string, 0, len(s.Preamble)+1+len(s.Rows))
	rows = append(rows, s.Preamble...)
	rows = append(rows, s.Headers)
	rows = append(rows, s.Rows...)

	for r, values := range rows {
		for c, v := range values {
			if cellAt(before, r, c) == v {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return xerrors.Errorf("sheet %q: %w", s.Name, err)
			}
			if err := f.SetCellValue(s.Name, cell, cellValue(v)); err != nil {
				return xerrors.Errorf("sheet %q, cell %s: %w", s.Name, cell, err)
			}
		}
	}
	return nil
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// cellValue writes plain numbers back as numbers. Anything whose string form
// would change (leading zeros, "1.50", "+3") stays text.
func cellValue(s string) interface{} {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(n, 'f', -1, 64) == s {
		return n
	}
	return s
}
