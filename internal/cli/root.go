// Package cli implements the sakilaimport command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/sakilaimport/internal/config"
	"github.com/JonMunkholm/sakilaimport/internal/core"
	_ "github.com/JonMunkholm/sakilaimport/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/sakilaimport/internal/logging"
	"github.com/JonMunkholm/sakilaimport/internal/schema"
	"github.com/JonMunkholm/sakilaimport/internal/store"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Execute runs the command with args (without the program name) and returns
// the process exit status. Results go to stdout; errors and logs to stderr.
//
// Example:
//
//	func main() {
//	    os.Exit(cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
//	}
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	code := exitCode(err)
	fmt.Fprintf(stderr, "sakilaimport: %v\n", err)
	if code != ExitUsage && core.IsUserFacing(err) {
		fmt.Fprintf(stderr, "%s\n", core.FormatUserError(err))
	}
	return code
}

type options struct {
	dryRun  bool
	verbose bool
	envFile string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "sakilaimport <schema.toml> <snapshot.json> <output>",
		Short: "Import a Sakila JSON snapshot into a relational store",
		Long: `sakilaimport loads a table-shaped Sakila JSON snapshot, links every
foreign key into an object graph, and writes the graph in one transaction.

The output is a SQLite file path, or a postgres:// URL. The SQLite file is
written under a temporary name and only renamed into place after the commit.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return withCode(ExitUsage, fmt.Errorf("expected 3 arguments (schema, snapshot, output), got %d", len(args)))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args[0], args[1], args[2], stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(ExitUsage, err)
	})

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "load and link everything, but keep the result in memory")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading configuration, if present")

	return cmd
}

func run(ctx context.Context, opts options, schemaPath, inputPath, output string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts.envFile)
	if err != nil {
		return withCode(ExitConfig, err)
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	logger := logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.FromContext(ctx)
	log.Debug("configuration loaded", "config", cfg.String())

	snap, size, err := core.ReadSnapshot(inputPath, cfg.Import.MaxInputSize)
	if err != nil {
		return withCode(classifyReadError(err), err)
	}
	log.Debug("snapshot read", "path", inputPath, "bytes", size, "tables", len(snap))

	sc, err := schema.Load(schemaPath)
	if err != nil {
		return withCode(ExitSchema, err)
	}
	log.Debug("schema loaded", "path", schemaPath, "entities", len(sc.Entities))

	session, err := store.Open(ctx, output, sc, cfg, store.Options{
		RunID:  runID,
		DryRun: opts.dryRun,
		Logger: log,
	})
	if err != nil {
		return withCode(ExitStore, err)
	}

	importer := core.NewImporter(session,
		core.WithLogger(logger),
		core.WithRunID(runID),
		core.WithRequireAllTables(cfg.Import.RequireAllTables),
	)

	result, err := importer.Import(ctx, snap)
	if err != nil {
		return err
	}

	return printResult(stdout, result, output, opts.dryRun)
}

// loadConfig reads the optional dotenv file, then the environment.
func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return config.Load()
}

// printResult writes the per-table counts under their registry groups, then
// diagnostics and a one-line summary.
func printResult(w io.Writer, result *core.Result, output string, dryRun bool) error {
	counts := make(map[string]core.TableCount, len(result.Counts))
	for _, c := range result.Counts {
		counts[c.Table] = c
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, group := range core.Groups() {
		var lines []string
		for _, def := range core.ByGroup(group) {
			c, ok := counts[def.Info.Key]
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s\t%d\n", def.Info.Label, c.Count))
			delete(counts, def.Info.Key)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\n", group)
		for _, line := range lines {
			fmt.Fprint(tw, line)
		}
	}

	// Tables loaded outside the registry keep plan order.
	for _, c := range result.Counts {
		if _, ok := counts[c.Table]; !ok {
			continue
		}
		label := c.Label
		if label == "" {
			label = c.Table
		}
		fmt.Fprintf(tw, "%s\t%d\n", label, c.Count)
	}
	fmt.Fprintf(tw, "Total\t%d\n", result.Total())
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(w, "note: %s\n", d)
	}

	dest := output
	if dryRun {
		dest = "memory (dry run)"
	}
	_, err := fmt.Fprintf(w, "imported %d entities into %s in %s (run %s)\n",
		result.Total(), dest, result.Duration.Round(time.Millisecond), result.RunID)
	return err
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
