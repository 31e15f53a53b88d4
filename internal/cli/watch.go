package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cs2ts/internal/config"
	"cs2ts/internal/filewalker"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultDebounce = 300 * time.Millisecond

func watchCmd() *cobra.Command {
	var (
		flags    conversionFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <input-dir> <output-dir>",
		Short: "Convert a directory tree and keep it converted as files change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, &flags, args[0], args[1], debounce)
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "Quiet period before a changed file is reconverted")

	return cmd
}

// runWatch handles the `watch` command.
func runWatch(cmd *cobra.Command, flags *conversionFlags, inputDir, outputDir string, debounce time.Duration) error {
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

	// Watches go in before the initial pass so no edit falls between them.
	tw, err := newTreeWatcher(inputDir, outputDir, p, debounce)
	if err != nil {
		return err
	}

	if err := p.convertTree(ctx, tw.inputDir, tw.outputDir, flags.workerCount(cfg)); err != nil {
		log.Warn().Err(err).Msg("Initial conversion incomplete")
	}

	log.Info().Str("input", tw.inputDir).Dur("debounce", debounce).Msg("Watching for changes")
	return tw.run(ctx)
}

// treeWatcher mirrors a source tree into an output tree, reconverting files
// after they stay unchanged for the debounce period.
type treeWatcher struct {
	inputDir  string
	outputDir string
	pipeline  *pipeline
	watcher   *fsnotify.Watcher
	debounce  time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closed  bool
	pending sync.WaitGroup
}

func newTreeWatcher(inputDir, outputDir string, p *pipeline, debounce time.Duration) (*treeWatcher, error) {
	inputAbs, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve input directory")
	}
	outputAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve output directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}

	tw := &treeWatcher{
		inputDir:  inputAbs,
		outputDir: outputAbs,
		pipeline:  p,
		watcher:   w,
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
	}

	if err := tw.addTree(inputAbs); err != nil {
		w.Close()
		return nil, err
	}
	return tw, nil
}

// addTree watches root and every directory below it, except build output.
func (tw *treeWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && filewalker.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := tw.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}

// run processes events until ctx is done, then waits for scheduled
// conversions to settle.
func (tw *treeWatcher) run(ctx context.Context) error {
	defer tw.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-tw.watcher.Events:
			if !ok {
				return nil
			}
			tw.handle(ctx, event)

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

func (tw *treeWatcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			tw.handleNewDir(ctx, event.Name)
			return
		}
	}

	if !filewalker.IsSource(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Change detected")
		tw.schedule(ctx, event.Name)
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		tw.remove(event.Name)
	}
}

// handleNewDir watches a directory created after startup and converts any
// sources that landed in it before the watch was added.
func (tw *treeWatcher) handleNewDir(ctx context.Context, dir string) {
	if filewalker.SkipDir(filepath.Base(dir)) {
		return
	}
	if err := tw.addTree(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Failed to watch new directory")
		return
	}

	entries, err := filewalker.NewWalker().Walk(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Failed to scan new directory")
		return
	}
	for _, e := range entries {
		tw.schedule(ctx, e.Path)
	}
}

// schedule debounces conversion of a single source file.
func (tw *treeWatcher) schedule(ctx context.Context, src string) {
	dst, ok := tw.outputFor(src)
	if !ok {
		return
	}

	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return
	}
	if t, exists := tw.timers[src]; exists {
		t.Stop()
	}

	tw.timers[src] = time.AfterFunc(tw.debounce, func() {
		if !tw.begin(src) {
			return
		}
		defer tw.pending.Done()

		if err := tw.pipeline.convertFile(ctx, src, dst); err != nil {
			log.Error().Err(err).Str("file", src).Msg("Conversion failed")
		}
	})
}

// begin claims a fired timer. It reports false once shutdown has started.
func (tw *treeWatcher) begin(src string) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return false
	}
	delete(tw.timers, src)
	tw.pending.Add(1)
	return true
}

func (tw *treeWatcher) remove(src string) {
	tw.mu.Lock()
	if t, exists := tw.timers[src]; exists {
		t.Stop()
		delete(tw.timers, src)
	}
	tw.mu.Unlock()

	dst, ok := tw.outputFor(src)
	if !ok {
		return
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("file", dst).Msg("Failed to remove output")
		return
	}
	log.Info().Str("input", src).Str("output", dst).Msg("Output removed")
}

// outputFor maps a watched source path to its output path.
func (tw *treeWatcher) outputFor(src string) (string, bool) {
	rel, err := filepath.Rel(tw.inputDir, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filewalker.OutputPath(tw.outputDir, rel, tw.pipeline.opts.IsDefinitionFile()), true
}

func (tw *treeWatcher) shutdown() {
	tw.mu.Lock()
	tw.closed = true
	for src, t := range tw.timers {
		t.Stop()
		delete(tw.timers, src)
	}
	tw.mu.Unlock()

	tw.pending.Wait()

	if err := tw.watcher.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close watcher")
	}
}
