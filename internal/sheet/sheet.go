// Package sheet translates a whole column of a sheet, cell by cell.
package sheet

import (
	"context"
	"errors"

	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/lang"
	"github.com/nconklindev/qtranslate/internal/translator"
	"github.com/nconklindev/qtranslate/internal/types"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyTarget    = errors.New("target column name is empty")
)

// TranslateColumn returns a copy of data where every row's target column
// holds the translation of its source column. A missing target column is
// appended, an existing one is overwritten. Rows are processed in order,
// one service call at a time. onProgress may be nil.
func TranslateColumn(ctx context.Context, data *types.SheetData, source, target string, from, to lang.Code,
	tr *translator.Translator, onProgress func(done, total int)) (*types.SheetData, *types.ColumnStats, error) {

	src := data.ColumnIndex(source)
	if src < 0 {
		return nil, nil, xerrors.Errorf("sheet %q, column %q: %w", data.Name, source, ErrColumnNotFound)
	}
	if target == "" {
		return nil, nil, ErrEmptyTarget
	}

	out := data.Clone()
	dst := out.ColumnIndex(target)
	if dst < 0 {
		out.Headers = append(out.Headers, target)
		dst = len(out.Headers) - 1
	}

	stats := &types.ColumnStats{Sheet: data.Name, Source: source, Target: target, From: from, To: to}
	total := len(data.Rows)

	for i := range data.Rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		res := tr.Translate(ctx, data.Cell(i, src), from, to)
		out.SetCell(i, dst, res.Text)

		switch res.Status {
		case translator.StatusTranslated:
			stats.Translated++
		case translator.StatusFailed:
			stats.Failed++
		default:
			stats.Skipped++
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return out, stats, nil
}
