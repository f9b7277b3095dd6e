package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/job"
	"github.com/nconklindev/qtranslate/internal/runner"
	"github.com/nconklindev/qtranslate/internal/translator"
	"github.com/nconklindev/qtranslate/internal/types"
	"github.com/nconklindev/qtranslate/internal/workbook"
)

type translateOptions struct {
	jobFile      string
	sheet        string
	sourceColumn string
	from         string
	to           []string
	output       string
	savePlan     string
	dryRun       bool
}

func newTranslateCmd(global *globalOptions) *cobra.Command {
	o := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [FILE]",
		Short: "Translate sheets without the interactive UI",
		Long: `Translate one sheet described on the command line, or every sheet of a job file.

Each --to takes LANG:COLUMN. The column is created when the sheet does not
have it and overwritten when it does.`,
		Example: `  qtranslate translate survey.xlsx --sheet Wave1 --source-column Question --from en --to sq:Pyetja --to mk:Прашање
  qtranslate translate --job plan.yaml
  qtranslate translate survey.xlsx --from en --source-column Question --to sq:Pyetja --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), cmd.OutOrStdout(), global, o, args)
		},
	}

	cmd.Flags().StringVar(&o.jobFile, "job", "", "YAML job file listing sheets and targets")
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "Sheet to translate (default: first sheet)")
	cmd.Flags().StringVar(&o.sourceColumn, "source-column", "", "Column holding the questionnaire text")
	cmd.Flags().StringVar(&o.from, "from", "", "Source language: sq, en, sr or mk")
	cmd.Flags().StringArrayVar(&o.to, "to", nil, "Target as LANG:COLUMN (repeatable)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output file (default: <input>_translated.<ext>)")
	cmd.Flags().StringVar(&o.savePlan, "save-plan", "", "Also write the resolved job file to this path")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Only rewrite question codes, do not call the translation service")

	cmd.MarkFlagsMutuallyExclusive("job", "sheet")
	cmd.MarkFlagsMutuallyExclusive("job", "source-column")
	cmd.MarkFlagsMutuallyExclusive("job", "from")
	cmd.MarkFlagsMutuallyExclusive("job", "to")

	return cmd
}

// parseTarget splits "sq:Pyetja" into its language and column.
func parseTarget(s string) (job.Target, error) {
	l, column, ok := strings.Cut(s, ":")
	if !ok || l == "" || column == "" {
		return job.Target{}, xerrors.Errorf("target %q: want LANG:COLUMN: %w", s, job.ErrInvalidPlan)
	}
	return job.Target{Column: column, Lang: l}, nil
}

// buildPlan turns the command line into a job plan.
func buildPlan(o *translateOptions, args []string) (*job.Plan, error) {
	if o.jobFile != "" {
		if len(args) > 0 {
			return nil, xerrors.Errorf("the input file comes from the job file, got %q: %w", args[0], job.ErrInvalidPlan)
		}
		return job.Load(o.jobFile)
	}

	if len(args) == 0 {
		return nil, xerrors.Errorf("an input file or --job is required: %w", job.ErrInvalidPlan)
	}

	sp := job.SheetPlan{
		Name:         o.sheet,
		SourceColumn: o.sourceColumn,
		SourceLang:   o.from,
	}
	for _, s := range o.to {
		t, err := parseTarget(s)
		if err != nil {
			return nil, err
		}
		sp.Targets = append(sp.Targets, t)
	}

	if sp.Name == "" {
		wb, err := workbook.Open(args[0])
		if err != nil {
			return nil, err
		}
		sp.Name = wb.SheetNames()[0]
	}

	plan := &job.Plan{Input: args[0], Sheets: []job.SheetPlan{sp}}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func runTranslate(ctx context.Context, w io.Writer, global *globalOptions, o *translateOptions, args []string) error {
	plan, err := buildPlan(o, args)
	if err != nil {
		return err
	}
	if o.output != "" {
		out, err := filepath.Abs(o.output)
		if err != nil {
			return err
		}
		plan.Output = out
	}

	if o.savePlan != "" {
		data, err := plan.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.savePlan, data, 0644); err != nil {
			return xerrors.Errorf("writing plan: %w", err)
		}
	}

	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Log.Level, cfg.Log.File); err != nil {
		return err
	}

	service := translator.Passthrough
	if !o.dryRun {
		if err := cfg.Validate(); err != nil {
			return err
		}
		service = translator.NewAzureService(cfg.Azure())
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var bar *progressbar.ProgressBar
	res, err := runner.Run(ctx, plan, translator.New(service), runner.Callbacks{
		OnColumnStart: func(sheet, target string, rows int) {
			bar = progressbar.NewOptions(rows,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s: %s[reset]", sheet, target)),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}))
		},
		OnProgress: func(done, total int) {
			if bar != nil {
				_ = bar.Set(done)
			}
		},
	})
	if err != nil {
		return err
	}

	printSummary(w, res, o.dryRun)
	return nil
}

func printSummary(w io.Writer, res *types.TranslationResult, dryRun bool) {
	for _, c := range res.Columns {
		fmt.Fprintf(w, "%s: %s -> %s (%s -> %s): %s translated, %s unchanged, %s empty\n",
			c.Sheet, c.Source, c.Target, c.From, c.To,
			humanize.Comma(int64(c.Translated)), humanize.Comma(int64(c.Failed)), humanize.Comma(int64(c.Skipped)))
	}

	translated, failed, _ := res.Totals()
	if dryRun {
		fmt.Fprintln(w, "Dry run: question codes rewritten, text left untranslated.")
	}
	fmt.Fprintf(w, "Wrote %s (%s cells translated", res.OutputFile, humanize.Comma(int64(translated)))
	if failed > 0 {
		fmt.Fprintf(w, ", %s kept their original text", humanize.Comma(int64(failed)))
	}
	fmt.Fprintln(w, ")")
}
