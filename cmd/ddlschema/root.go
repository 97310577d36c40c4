package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/config"
	"github.com/sadopc/ddlschema/internal/extract"
	"github.com/sadopc/ddlschema/internal/logging"
	"github.com/sadopc/ddlschema/internal/render"
	"github.com/sadopc/ddlschema/internal/schema"
	"github.com/sadopc/ddlschema/internal/source"
	"github.com/sadopc/ddlschema/internal/theme"
	"github.com/sadopc/ddlschema/internal/watch"
)

// cli holds state shared by the commands of one invocation.
type cli struct {
	configPath string
	fromDB     string
	watch      bool

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "ddlschema [files...]",
		Short: "Extract a structured schema from SQLite DDL",
		Long: `ddlschema applies DDL statements to a throwaway in-memory SQLite database
and prints the resulting schema: tables, columns, indexes, triggers, foreign
keys and views with the origin of each view column.

Examples:
  ddlschema schema.sql                      # JSON to stdout
  cat schema.sql | ddlschema -f yaml        # read stdin
  ddlschema --from-db app.db -f markdown    # document an existing database
  ddlschema -w -f table migrations/*.sql    # rerun on every change`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return c.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.teardown()
		},
		RunE: c.runExtract,
	}

	fs := rootCmd.PersistentFlags()
	fs.StringVarP(&c.configPath, "config", "c", "", "Config file path")
	fs.StringVar(&c.fromDB, "from-db", "", "Read DDL from an existing SQLite database file")
	fs.BoolVarP(&c.watch, "watch", "w", false, "Rerun whenever an input file changes")
	fs.StringP("format", "f", "json", "Output format (json, yaml, table, markdown)")
	fs.StringP("output", "o", "", "Write output to a file instead of stdout")
	fs.String("color", render.ColorAuto, "Colorize output (auto, always, never)")
	fs.String("theme", "default", "Color theme (default, light, monokai)")
	fs.String("engine", extract.DefaultEngine, "Engine the DDL is applied to")
	fs.StringSlice("include", nil, "Only tables matching these patterns (glob)")
	fs.StringSlice("exclude", nil, "Skip tables matching these patterns (glob)")
	fs.String("log-level", "warn", "Log level (debug, info, warn, error)")
	fs.String("log-format", logging.FormatConsole, "Log format (console, json)")
	fs.String("log-file", "", "Also append JSON logs to this file")
	fs.Duration("debounce", config.DefaultDebounce, "Quiet period before a watch rerun")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, f := range render.Formats() {
			names = append(names, string(f))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("theme", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return theme.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newBrowseCmd(c), newVersionCmd())
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	c.cfg = cfg
	theme.Current = theme.Get(cfg.Theme)

	logger, closeLog, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Path:      cfg.Log.Path,
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Stderr:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	c.logger = logger
	c.closeLog = closeLog

	if cfg.Source != "" {
		logger.Debug("config loaded", zap.String("file", cfg.Source))
	}
	return nil
}

func (c *cli) teardown() error {
	_ = c.logger.Sync()
	if c.closeLog == nil {
		return nil
	}
	return c.closeLog()
}

// inputs returns the files watch mode observes.
func (c *cli) inputs(args []string) ([]string, error) {
	if c.fromDB != "" {
		return []string{c.fromDB}, nil
	}
	var paths []string
	for _, a := range args {
		if a == source.Stdin {
			return nil, errors.New("--watch cannot be used with stdin")
		}
		paths = append(paths, a)
	}
	if len(paths) == 0 {
		return nil, errors.New("--watch needs input files or --from-db")
	}
	return paths, nil
}

// load reads the DDL script from --from-db, the argument files, or stdin.
func (c *cli) load(ctx context.Context, cmd *cobra.Command, args []string) (string, error) {
	if c.fromDB != "" {
		if len(args) > 0 {
			return "", errors.New("--from-db cannot be combined with input files")
		}
		return source.FromDatabase(ctx, c.fromDB)
	}
	if len(args) == 0 {
		args = []string{source.Stdin}
	}
	return source.ReadFilesFrom(cmd.InOrStdin(), args...)
}

func (c *cli) extract(ctx context.Context, cmd *cobra.Command, args []string) ([]schema.Schema, error) {
	ddl, err := c.load(ctx, cmd, args)
	if err != nil {
		return nil, err
	}

	engine, ok := adapter.Lookup(c.cfg.Engine)
	if !ok {
		return nil, fmt.Errorf("%w: %q", extract.ErrUnknownEngine, c.cfg.Engine)
	}
	return extract.Extract(ctx, ddl,
		extract.WithEngine(engine),
		extract.WithLogger(c.logger),
		extract.WithFilter(c.cfg.Filter()))
}

func (c *cli) runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !c.watch {
		return c.extractAndRender(ctx, cmd, args)
	}

	paths, err := c.inputs(args)
	if err != nil {
		return err
	}
	return watch.Run(ctx, paths, watch.Options{Debounce: c.cfg.Watch.Debounce, Logger: c.logger}, func(ctx context.Context) error {
		err := c.extractAndRender(ctx, cmd, args)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		return err
	})
}

func (c *cli) extractAndRender(ctx context.Context, cmd *cobra.Command, args []string) error {
	schemas, err := c.extract(ctx, cmd, args)
	if err != nil {
		return err
	}

	format, err := render.ParseFormat(c.cfg.Format)
	if err != nil {
		return err
	}

	w, closeOut, err := c.output(cmd)
	if err != nil {
		return err
	}
	err = render.Render(w, schemas, format, render.Options{
		Color: render.ColorEnabled(c.cfg.Color, w),
		Theme: theme.Current,
	})
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

// output returns the destination for rendered schemas. A file given by
// --output is replaced on every run.
func (c *cli) output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if c.cfg.Output == "" || c.cfg.Output == source.Stdin {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.cfg.Output), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(c.cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ddlschema %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(out, "\nSupported engines:")
			for _, name := range adapter.Names() {
				fmt.Fprintf(out, "  - %s\n", name)
			}
		},
	}
}
