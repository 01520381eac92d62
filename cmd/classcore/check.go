package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/funvibe/classcore/internal/analyzer"
	"github.com/funvibe/classcore/internal/backend"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/parser"
	"github.com/funvibe/classcore/internal/pipeline"
	"github.com/funvibe/classcore/internal/symbols"
)

type checkFlags struct {
	configPath string
	libs       []string
	workers    int
	debug      bool
	color      string
	emit       string
}

func newCheckCmd() *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check [units...]",
		Short: "Analyze unit declarations and report diagnostics",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			opts, err := loadOptions(f.configPath, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				if f.workers < 1 {
					return fmt.Errorf("--workers must be positive, got %d", f.workers)
				}
				opts.Workers = f.workers
			}
			if cmd.Flags().Changed("color") {
				switch f.color {
				case "auto", "always", "never":
				default:
					return fmt.Errorf("--color must be auto, always or never, got %q", f.color)
				}
				opts.Color = f.color
			}
			if f.debug || opts.Debug {
				enableDebug(cmd.ErrOrStderr())
				defer enableDebug(io.Discard)
			}
			return runCheck(cmd, opts, append(opts.LibraryPaths(), f.libs...), args, f.emit)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to classcore.yaml (default: searched upward from the first unit)")
	cmd.Flags().StringArrayVar(&f.libs, "lib", nil, "library declaration file or SQLite index (repeatable)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "units analyzed concurrently")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "trace stages to stderr")
	cmd.Flags().StringVar(&f.color, "color", "auto", "color diagnostics: auto, always or never")
	cmd.Flags().StringVar(&f.emit, "emit", "", "write the lowered classes as YAML to this file")
	return cmd
}

// loadOptions reads the options file given, or the nearest classcore.yaml
// above the first unit path.
func loadOptions(path, firstUnit string) (*config.Options, error) {
	if path != "" {
		return config.LoadOptions(path)
	}
	dir := firstUnit
	if info, err := os.Stat(firstUnit); err == nil && !info.IsDir() {
		dir = filepath.Dir(firstUnit)
	}
	found, err := config.FindOptions(dir)
	if err != nil {
		return nil, err
	}
	if found == "" {
		return config.DefaultOptions(), nil
	}
	return config.LoadOptions(found)
}

// newPipeline wires the six stages.
func newPipeline(emitter backend.Emitter) *pipeline.Pipeline {
	return pipeline.New(
		parser.Processor{},
		analyzer.NameResolution{},
		analyzer.TypeResolution{},
		analyzer.MemberResolution{},
		analyzer.Directives{},
		backend.NewProcessor(nil, emitter),
	)
}

func runCheck(cmd *cobra.Command, opts *config.Options, libPaths, unitPaths []string, emit string) error {
	libs, err := modules.LoadLibraries(libPaths)
	if err != nil {
		return err
	}
	defer libs.Close()

	paths, err := modules.CollectUnits(unitPaths)
	if err != nil {
		return err
	}
	sources, err := modules.ReadSources(paths)
	if err != nil {
		return err
	}

	ctx := pipeline.NewContext(cmd.Context(), opts, symbols.NewTable(libs.List...))
	ctx.Sources = sources
	rec := backend.NewRecorder()
	ctx = newPipeline(rec).Run(ctx)

	sink := diagnostics.NewTextSink(cmd.ErrOrStderr(), opts.ColorMode())
	for _, d := range ctx.Diagnostics.Diagnostics() {
		sink.Report(d)
	}
	printSummary(cmd.OutOrStdout(), ctx, opts.ColorMode())

	if ctx.Fault != nil {
		return fmt.Errorf("run %s: %w", ctx.RunID, ctx.Fault)
	}
	if !ctx.Succeeded() {
		errs, _ := ctx.Diagnostics.Counts()
		return exitCodeError{code: 1, err: fmt.Errorf("%d error(s) in stage %s", errs, ctx.FailedStage)}
	}
	if emit != "" {
		return writeArtifacts(emit, rec)
	}
	return nil
}

func writeArtifacts(path string, rec *backend.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := rec.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
