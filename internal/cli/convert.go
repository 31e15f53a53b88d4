package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"cs2ts/internal/cache"
	"cs2ts/internal/config"
	"cs2ts/internal/converter"
	"cs2ts/internal/filewalker"
	"cs2ts/internal/worker"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// conversionFlags are shared by convert and watch. Flags override the
// options file only when set explicitly.
type conversionFlags struct {
	configPath        string
	namespace         string
	stringUnions      bool
	includeInterfaces bool
	timeout           time.Duration
	workers           int
}

func (f *conversionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Options file (YAML, TOML or JSON)")
	cmd.Flags().StringVar(&f.namespace, "namespace", "", "Wrap output in a module with this name")
	cmd.Flags().BoolVar(&f.stringUnions, "string-unions", false, "Emit enums as string-literal unions")
	cmd.Flags().BoolVar(&f.includeInterfaces, "include-interfaces", false, "Also convert interface declarations")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Budget for each pattern match (default from MATCH_TIMEOUT_MS)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Files converted in parallel (default from WORKER_COUNT)")
}

func (f *conversionFlags) options(cmd *cobra.Command, cfg *config.Config) (converter.Options, error) {
	fileOpts, err := config.LoadOptions(f.configPath)
	if err != nil {
		return converter.Options{}, err
	}
	opts := fileOpts.Converter(cfg.MatchTimeout)

	flags := cmd.Flags()
	if flags.Changed("namespace") {
		opts.BaseNamespace = f.namespace
	}
	if flags.Changed("string-unions") {
		opts.UseStringUnionTypes = f.stringUnions
	}
	if flags.Changed("include-interfaces") {
		opts.IncludeInterfaces = f.includeInterfaces
	}
	if flags.Changed("timeout") {
		opts.Timeout = f.timeout
	}
	return opts, nil
}

func (f *conversionFlags) workerCount(cfg *config.Config) int {
	if f.workers > 0 {
		return f.workers
	}
	return cfg.WorkerCount
}

func convertCmd() *cobra.Command {
	var flags conversionFlags

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a source file or directory tree",
		Long: `Converts a single file to stdout (or to [output]), or every .cs file under a
directory into the matching path under [output] with a .d.ts extension
(.ts when definitionFile is false).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := ""
			if len(args) == 2 {
				output = args[1]
			}
			return runConvert(cmd, &flags, args[0], output)
		},
	}

	flags.register(cmd)
	return cmd
}

// runConvert handles the `convert` command.
func runConvert(cmd *cobra.Command, flags *conversionFlags, input, output string) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	cfg := config.Load()

	opts, err := flags.options(cmd, cfg)
	if err != nil {
		return err
	}

	conversionCache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	p := newPipeline(opts, conversionCache)

	info, err := os.Stat(input)
	if err != nil {
		return errors.Wrap(err, "stat input")
	}

	if info.IsDir() {
		if output == "" {
			return errors.New("an output directory is required when converting a directory")
		}
		return p.convertTree(ctx, input, output, flags.workerCount(cfg))
	}

	if output != "" {
		return p.convertFile(ctx, input, output)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrapf(err, "read %s", input)
	}
	out, err := p.convertSource(ctx, string(data))
	if err != nil {
		return errors.Wrapf(err, "convert %s", input)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

// pipeline converts sources with one set of options through the cache.
type pipeline struct {
	opts        converter.Options
	fingerprint string
	cache       *cache.ConversionCache
}

func newPipeline(opts converter.Options, c *cache.ConversionCache) *pipeline {
	return &pipeline{
		opts:        opts,
		fingerprint: opts.Fingerprint(),
		cache:       c,
	}
}

func (p *pipeline) convertSource(ctx context.Context, source string) (string, error) {
	if out, ok := p.cache.Get(ctx, source, p.fingerprint); ok {
		log.Debug().Msg("Cache hit")
		return out, nil
	}

	out, err := converter.Convert(ctx, source, p.opts)
	if err != nil {
		return "", err
	}

	if err := p.cache.Set(ctx, source, p.fingerprint, out); err != nil {
		log.Warn().Err(err).Msg("Failed to cache conversion")
	}
	return out, nil
}

func (p *pipeline) convertFile(ctx context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, "read %s", src)
	}

	out, err := p.convertSource(ctx, string(data))
	if err != nil {
		return errors.Wrapf(err, "convert %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		return errors.Wrapf(err, "write %s", dst)
	}

	log.Info().Str("input", src).Str("output", dst).Msg("File converted")
	return nil
}

func (p *pipeline) convertTree(ctx context.Context, inputDir, outputDir string, workers int) error {
	entries, err := filewalker.NewWalker().Walk(inputDir)
	if err != nil {
		return errors.Wrap(err, "walk input directory")
	}

	outputAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return errors.Wrap(err, "resolve output directory")
	}

	log.Info().Int("files", len(entries)).Int("workers", workers).Msg("Starting conversion")

	pool := worker.NewPool[filewalker.FileEntry, string](workers, func(ctx context.Context, entry filewalker.FileEntry) (string, error) {
		dst := filewalker.OutputPath(outputAbs, entry.Rel, p.opts.IsDefinitionFile())
		return dst, p.convertFile(ctx, entry.Path, dst)
	})
	results := pool.Execute(ctx, entries)

	for _, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("file", r.Input.Path).Msg("Conversion failed")
		}
	}

	failed := worker.Failed(results)
	log.Info().
		Int("files", len(entries)).
		Int("failed", failed).
		Str("output", outputAbs).
		Msg("Conversion complete")

	if failed > 0 {
		return errors.Newf("%d of %d files failed", failed, len(entries))
	}
	return nil
}
