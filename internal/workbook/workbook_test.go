package workbook

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/qtranslate/internal/types"
)

func writeXLSXFixture(t *testing.T, path string, sheets map[string][][]interface{}, order []string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestOpenXLSXAllSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	writeXLSXFixture(t, path, map[string][][]interface{}{
		"Wave1": {
			{},
			{},
			{"ID", "Question", "Shqip"},
			{1, "Q1 Age"},
			{2, "Q2 Gender"},
		},
		"Pyetje": {
			{"Pyetja"},
			{"P1 Mosha"},
		},
	}, []string{"Wave1", "Pyetje"})

	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wave1", "Pyetje"}, wb.SheetNames())

	w1 := wb.Sheet("Wave1")
	require.NotNil(t, w1)
	assert.Equal(t, 2, w1.HeaderRow)
	assert.Equal(t, []string{"ID", "Question", "Shqip"}, w1.Headers)
	assert.Len(t, w1.Preamble, 2)
	assert.Equal(t, "Q2 Gender", w1.Cell(1, 1))

	// single-column sheet falls back to the first non-empty row
	p := wb.Sheet("Pyetje")
	require.NotNil(t, p)
	assert.Equal(t, []string{"Pyetja"}, p.Headers)
	assert.Equal(t, "P1 Mosha", p.Cell(0, 0))
}

func TestSaveXLSXRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "survey.xlsx")
	writeXLSXFixture(t, in, map[string][][]interface{}{
		"Wave1": {
			{"ID", "Question"},
			{1, "Q1 Age"},
			{2, "Q2 Gender"},
		},
		"Notes": {
			{"Note", "Owner"},
			{"keep me", "ana"},
		},
	}, []string{"Wave1", "Notes"})

	wb, err := Open(in)
	require.NoError(t, err)

	w1 := wb.Sheet("Wave1")
	w1.Headers = append(w1.Headers, "Shqip")
	w1.SetCell(0, 2, "P1 Mosha")
	w1.SetCell(1, 2, "P2 Gjinia")

	out := OutputPath(in)
	assert.Equal(t, filepath.Join(dir, "survey_translated.xlsx"), out)
	require.NoError(t, Save(wb, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Wave1", "Notes"}, f.GetSheetList())

	v, err := f.GetCellValue("Wave1", "C1")
	require.NoError(t, err)
	assert.Equal(t, "Shqip", v)

	v, err = f.GetCellValue("Wave1", "C3")
	require.NoError(t, err)
	assert.Equal(t, "P2 Gjinia", v)

	v, err = f.GetCellValue("Notes", "A2")
	require.NoError(t, err)
	assert.Equal(t, "keep me", v)

	typ, err := f.GetCellType("Wave1", "A2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "numbers stay numbers")
	assert.NotEqual(t, excelize.CellTypeInlineString, typ, "numbers stay numbers")
}

func TestSaveXLSXFromCSVSource(t *testing.T) {
	dir := t.TempDir()
	wb := &types.Workbook{
		Path: filepath.Join(dir, "survey.csv"),
		Sheets: []*types.SheetData{
			{Name: "survey", Headers: []string{"Question", "Shqip"}, Rows: [][]string{{"Q1 Age", "P1 Mosha"}}},
			{Name: "Sheet1", Headers: []string{"Other"}},
		},
	}

	out := filepath.Join(dir, "out.xlsx")
	require.NoError(t, Save(wb, out))

	back, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"survey", "Sheet1"}, back.SheetNames())
	assert.Equal(t, "P1 Mosha", back.Sheet("survey").Cell(0, 1))
}

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "pyetesori.csv")

	f, err := os.Create(in)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll([][]string{
		{"Question", "Shqip"},
		{"Q1 Age"},
		{"Q2 Gender", ""},
	}))
	require.NoError(t, f.Close())

	wb, err := Open(in)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "pyetesori", wb.Sheets[0].Name)
	assert.Equal(t, []string{"Question", "Shqip"}, wb.Sheets[0].Headers)
	assert.Len(t, wb.Sheets[0].Rows, 2)

	wb.Sheets[0].SetCell(0, 1, "P1 Mosha")
	out := OutputPath(in)
	require.NoError(t, Save(wb, out))

	back, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "P1 Mosha", back.Sheets[0].Cell(0, 1))
	assert.Equal(t, "Q2 Gender", back.Sheets[0].Cell(1, 0))
}

func TestCSVRejectsMultipleSheets(t *testing.T) {
	wb := &types.Workbook{Sheets: []*types.SheetData{{Name: "a"}, {Name: "b"}}}
	assert.Error(t, Save(wb, filepath.Join(t.TempDir(), "out.csv")))
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Open("survey.ods")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	err = Save(&types.Workbook{}, "survey.txt")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestEmptyCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := Open(path)
	assert.True(t, errors.Is(err, ErrEmptyFile))
}

func TestSheetFromRows(t *testing.T) {
	tests := []struct {
		name     string
		input    [][]string
		header   []string
		preamble int
		dataRows int
	}{
		{"First row", [][]string{{"ID", "Question"}, {"1", "Q1"}}, []string{"ID", "Question"}, 0, 1},
		{"Blank rows above", [][]string{{}, {"", ""}, {"Бр", "Прашање"}, {"1", "P1"}}, []string{"Бр", "Прашање"}, 2, 1},
		{"Single column", [][]string{{"Question"}, {"Q1"}}, []string{"Question"}, 0, 1},
		{"Numbers only", [][]string{{"1", "2"}, {"3", "4"}}, []string{"1", "2"}, 0, 1},
		{
			"Data row wider than header",
			[][]string{{"Question", "Pyetja"}, {"Q1 Age", "", ""}, {"Q2 Gender", "x", "note: skip if minor"}},
			[]string{"Question", "Pyetja"}, 0, 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sheetFromRows("Wave1", tt.input)
			assert.Equal(t, tt.header, s.Headers)
			assert.Len(t, s.Preamble, tt.preamble)
			assert.Equal(t, tt.preamble, s.HeaderRow)
			assert.Len(t, s.Rows, tt.dataRows)
		})
	}
}

func TestSaveKeepsFormatsAndFormulas(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scores.xlsx")
	writeXLSXFixture(t, in, map[string][][]interface{}{
		"Wave1": {
			{"ID", "Question", "Score", "Total"},
			{1, "Q1 Age", 1.5},
		},
	}, []string{"Wave1"})

	src, err := excelize.OpenFile(in)
	require.NoError(t, err)
	style, err := src.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, src.SetCellStyle("Wave1", "C2", "C2", style))
	require.NoError(t, src.SetCellFormula("Wave1", "D2", "B2*10"))
	require.NoError(t, src.Save())
	require.NoError(t, src.Close())

	wb, err := Open(in)
	require.NoError(t, err)
	w1 := wb.Sheet("Wave1")
	assert.Equal(t, "1.5", w1.Cell(0, 2))

	w1.Headers = append(w1.Headers, "Pyetja")
	w1.SetCell(0, 4, "P1 Mosha")

	out := OutputPath(in)
	require.NoError(t, Save(wb, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Wave1", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1.50", v)

	typ, err := f.GetCellType("Wave1", "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)

	formula, err := f.GetCellFormula("Wave1", "D2")
	require.NoError(t, err)
	assert.Equal(t, "B2*10", formula)

	v, err = f.GetCellValue("Wave1", "E2")
	require.NoError(t, err)
	assert.Equal(t, "P1 Mosha", v)
}

func TestCSVByteOrderMark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excel.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffQuestion,Shqip\r\nQ1 Age,\r\n"), 0644))

	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Question", "Shqip"}, wb.Sheets[0].Headers)
	assert.Equal(t, 0, wb.Sheets[0].ColumnIndex("Question"))
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(""))
	assert.Equal(t, float64(12), cellValue("12"))
	assert.Equal(t, 1.5, cellValue("1.5"))
	assert.Equal(t, "007", cellValue("007"))
	assert.Equal(t, "1.50", cellValue("1.50"))
	assert.Equal(t, "Q1", cellValue("Q1"))
}
