package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"wotwrh-convert/internal/cache"
	"wotwrh-convert/internal/config"
	"wotwrh-convert/internal/convert"
	"wotwrh-convert/internal/filewalker"
	"wotwrh-convert/internal/runner"
	"wotwrh-convert/internal/watch"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command.
type options struct {
	outDir    string
	workers   int
	recursive bool
	force     bool
	verbose   bool

	cfg *config.Config
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "wotwrh-convert [file]",
		Short: "Quote the text fields of randomizer header files",
		Long: `Rewrites .wotwrh header scripts so that flag names, message text, icon paths,
names and descriptions become quoted string literals. Output goes to a
"converted" directory beside each input.

With a file argument only that header is converted. Without one, every header
in the directory containing this executable is converted.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runConvert(opts, args)
			}
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			return runConvert(opts, []string{filepath.Dir(exe)})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.outDir, "out-dir", "", "Name of the output directory created beside each header (default from OUTPUT_DIR_NAME)")
	flags.IntVar(&opts.workers, "workers", 0, "Number of headers converted concurrently (default from WORKER_COUNT)")
	flags.BoolVar(&opts.recursive, "recursive", false, "Descend into subdirectories")
	flags.BoolVar(&opts.force, "force", false, "Convert even when the output is up to date")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(convertCmd(opts))
	rootCmd.AddCommand(watchCmd(opts))

	return rootCmd
}

// load reads the configuration and applies flag overrides.
func (o *options) load(cmd *cobra.Command) error {
	o.cfg = config.Load()

	level, err := zerolog.ParseLevel(o.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	if o.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	flags := cmd.Flags()
	if flags.Changed("out-dir") {
		o.cfg.OutputDirName = o.outDir
	}
	if flags.Changed("workers") {
		o.cfg.WorkerCount = o.workers
	}
	if flags.Changed("recursive") {
		o.cfg.Recursive = o.recursive
	}
	if o.cfg.OutputDirName == "" || filepath.Base(o.cfg.OutputDirName) != o.cfg.OutputDirName {
		return fmt.Errorf("output directory must be a plain name, got %q", o.cfg.OutputDirName)
	}
	return nil
}

func (o *options) walker() *filewalker.Walker {
	return filewalker.NewWalker(o.cfg.HeaderExtension, o.cfg.OutputDirName, o.cfg.Recursive)
}

func convertCmd(opts *options) *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "convert <path>...",
		Short: "Convert header files or every header in the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdout {
				if len(args) != 1 {
					return errors.New("--stdout takes exactly one file")
				}
				return printConverted(cmd, args[0])
			}
			return runConvert(opts, args)
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the converted header instead of writing it")

	return cmd
}

func watchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <directory>",
		Short: "Convert every header, then reconvert headers as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0])
		},
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// initCache opens the conversion cache. A database that cannot be reached
// only costs the skip-unchanged optimisation, so it is not fatal.
func initCache(ctx context.Context, cfg *config.Config) *cache.ConversionCache {
	if cfg.DatabaseURL == "" {
		return cache.NewConversionCache(nil)
	}

	pool, err := cache.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("Conversion cache unavailable, continuing without it")
		return cache.NewConversionCache(nil)
	}

	c := cache.NewConversionCache(pool)
	if err := c.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("Conversion cache unavailable, continuing without it")
		c.Close()
		return cache.NewConversionCache(nil)
	}
	if err := c.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload conversion cache")
	}
	return c
}

// collect resolves files and directories into header entries.
func collect(w *filewalker.Walker, paths []string) ([]filewalker.FileEntry, error) {
	var entries []filewalker.FileEntry
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := w.Walk(path)
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", path, err)
			}
			entries = append(entries, found...)
			continue
		}

		entry, err := w.Entry(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// runConvert handles the root and `convert` commands.
func runConvert(opts *options, paths []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	entries, err := collect(opts.walker(), paths)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Warn().Strs("paths", paths).Msg("No headers found")
		return nil
	}

	c := initCache(ctx, opts.cfg)
	defer c.Close()

	r := runner.New(c, opts.cfg.WorkerCount, opts.force)
	return r.Run(ctx, entries).Err()
}

// printConverted handles `convert --stdout`.
func printConverted(cmd *cobra.Command, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), convert.Convert(string(content)))
	return err
}

// runWatch handles the `watch` command.
func runWatch(opts *options, dir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	w := opts.walker()
	entries, err := w.Walk(dir)
	if err != nil {
		return fmt.Errorf("walk input directory: %w", err)
	}

	c := initCache(ctx, opts.cfg)
	defer c.Close()

	r := runner.New(c, opts.cfg.WorkerCount, opts.force)
	if summary := r.Run(ctx, entries); summary.Failed > 0 {
		log.Warn().Err(summary.Err()).Msg("Initial conversion incomplete")
	}

	watcher, err := watch.New(w, opts.cfg.WatchDebounce, func(ctx context.Context, path string) {
		entry, err := w.Entry(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping header")
			return
		}
		r.Run(ctx, []filewalker.FileEntry{entry})
	})
	if err != nil {
		return err
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve watch directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	return watcher.Run(ctx)
}
