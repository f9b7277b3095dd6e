package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/config"
	"github.com/nconklindev/qtranslate/internal/i18n"
	"github.com/nconklindev/qtranslate/internal/lang"
	"github.com/nconklindev/qtranslate/internal/qcode"
	"github.com/nconklindev/qtranslate/internal/translator"
	"github.com/nconklindev/qtranslate/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var log = logging.Logger("qtranslate")

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFile    string
	uiLang     string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "qtranslate [FILE]",
		Short: "Translate questionnaire spreadsheets between Albanian, English, Serbian and Macedonian",
		Long: `qtranslate translates the question text of survey workbooks with Azure Translator.

Cells that start with a question code such as Q12a or P3 keep their code; only
the text after it is translated. Going from English to Albanian, Serbian or
Macedonian the code becomes a P code, and from Albanian to English a Q code.

Without a command qtranslate opens the interactive terminal UI.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			i18n.Init(opts.uiLang)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runTUI(opts, file)
		},
	}
	root.SetVersionTemplate(versionString())

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/qtranslate/config.toml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "File with AZURE_TRANSLATOR_* variables")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	root.PersistentFlags().StringVar(&opts.uiLang, "ui-lang", "", "Interface language (default: from LANG)")

	root.AddCommand(
		newTranslateCmd(opts),
		newLanguagesCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, then .env, then the environment, then
// the command line.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		// no config directory just means no config file
		path, _ = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.envFile != "" {
		if err := config.LoadEnv(opts.envFile); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	return cfg, nil
}

// setupLogging sends logs to file, or to stderr when file is empty.
func setupLogging(level, file string) error {
	lvl, err := logging.LevelFromString(level)
	if err != nil {
		return xerrors.Errorf("log level %q: %w", level, err)
	}

	format := logging.ColorizedOutput
	if file != "" {
		format = logging.PlaintextOutput
	}

	logging.SetupLogging(logging.Config{
		Format: format,
		Level:  lvl,
		Stderr: file == "",
		File:   file,
	})
	return nil
}

func runTUI(opts *globalOptions, file string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// the alt screen owns the terminal, so logs always go to a file
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "qtranslate.log")
	}
	if err := setupLogging(cfg.Log.Level, logFile); err != nil {
		return err
	}
	log.Infow("starting ui", "version", version, "file", file)

	tr := translator.New(translator.NewAzureService(cfg.Azure()))

	p := tea.NewProgram(ui.InitialModel(tr, file), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return xerrors.Errorf("running ui: %w", err)
	}
	return nil
}

func versionString() string {
	return fmt.Sprintf("qtranslate %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionString())
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and question code rules",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "Languages:")
			for _, c := range lang.All() {
				fmt.Fprintf(w, "  %-3s %s (%s)\n", c, c.Name(), c.Label())
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, "Question code rules:")
			for _, from := range lang.All() {
				for _, to := range lang.All() {
					if r, ok := qcode.Lookup(from, to); ok {
						fmt.Fprintf(w, "  %s -> %s: %s12 becomes %s12\n", from, to, r.From, r.To)
					}
				}
			}
		},
	}
}
