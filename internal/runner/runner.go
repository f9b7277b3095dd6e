// Package runner executes a job plan without the terminal UI.
package runner

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/job"
	"github.com/nconklindev/qtranslate/internal/session"
	"github.com/nconklindev/qtranslate/internal/sheet"
	"github.com/nconklindev/qtranslate/internal/translator"
	"github.com/nconklindev/qtranslate/internal/types"
	"github.com/nconklindev/qtranslate/internal/workbook"
)

var log = logging.Logger("runner")

// Callbacks report progress. Any of them may be nil.
type Callbacks struct {
	// OnColumnStart is called before a target column is filled, with the
	// number of rows it will process.
	OnColumnStart func(sheet, target string, rows int)
	OnProgress    func(done, total int)
	OnColumnDone  func(stats types.ColumnStats)
}

// Run translates every sheet named in the plan and saves the workbook to
// plan.OutputPath(). Sheets not named in the plan are written back unchanged.
func Run(ctx context.Context, plan *job.Plan, tr *translator.Translator, cb Callbacks) (*types.TranslationResult, error) {
	wb, err := workbook.Open(plan.InputPath())
	if err != nil {
		return nil, err
	}

	sess := session.New(wb)
	result := &types.TranslationResult{
		InputFile:  plan.InputPath(),
		OutputFile: plan.OutputPath(),
	}

	for _, sp := range plan.Sheets {
		if err := sess.Select(sp.Name); err != nil {
			return nil, err
		}
		data, err := sess.Sheet(sp.Name)
		if err != nil {
			return nil, err
		}

		from := sp.Language()
		for _, t := range sp.Targets {
			if cb.OnColumnStart != nil {
				cb.OnColumnStart(sp.Name, t.Column, len(data.Rows))
			}

			out, stats, err := sheet.TranslateColumn(ctx, data, sp.SourceColumn, t.Column, from, t.Language(), tr, cb.OnProgress)
			if err != nil {
				return nil, xerrors.Errorf("translating sheet %q into %q: %w", sp.Name, t.Column, err)
			}
			data = out

			log.Infow("column translated", "sheet", sp.Name, "source", sp.SourceColumn, "target", t.Column,
				"from", from, "to", t.Language(), "translated", stats.Translated, "failed", stats.Failed, "skipped", stats.Skipped)

			result.Columns = append(result.Columns, *stats)
			if cb.OnColumnDone != nil {
				cb.OnColumnDone(*stats)
			}
		}

		if err := sess.Commit(data); err != nil {
			return nil, err
		}
	}

	result.Sheets = sess.Translated()

	if err := workbook.Save(sess.Workbook(), result.OutputFile); err != nil {
		return nil, xerrors.Errorf("saving %s: %w", result.OutputFile, err)
	}
	log.Infow("workbook saved", "path", result.OutputFile, "sheets", len(result.Sheets))

	return result, nil
}
