package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called for the initial run and after every debounced change.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarizes one pipeline run.
type RunResult struct {
	Kept    int
	Dropped int

	// Outcomes maps item IDs to their outcome ("kept" or "dropped").
	Outcomes map[string]string
}

// Options configures Run.
type Options struct {
	// Paths are input files and directories. Directories are watched
	// recursively, skipping hidden ones.
	Paths []string

	// Debounce is the quiet period after the last change before a run.
	Debounce time.Duration

	// Ignore lists files whose changes never trigger a run, such as the
	// report written by the run itself.
	Ignore []string

	Logger *slog.Logger

	// Out receives the per-run status lines.
	Out io.Writer
}

// DefaultOptions returns options with a 500ms debounce that log through
// slog.Default and print status lines to stderr.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run performs an initial run, then runs again after every debounced batch
// of changes below opts.Paths. It returns nil once ctx is done or the
// process receives SIGINT or SIGTERM.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if len(opts.Paths) == 0 {
		return errors.New("no paths to watch")
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	t, err := newTree(opts.Logger)
	if err != nil {
		return err
	}
	defer t.close()

	for _, p := range opts.Paths {
		if err := t.add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
	}

	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			t.ignore[abs] = true
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Paths, ", "), opts.Debounce)

	r := &runner{out: opts.Out, runFn: runFn}
	r.run(ctx, "(initial)")

	d := NewDebouncer(opts.Debounce, func(paths []string) {
		r.run(ctx, describe(paths))
	})
	d.logger = opts.Logger

	// A run already in progress finishes before Run returns.
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out, "shutting down watcher")
			return nil

		case ev, ok := <-t.fsw.Events:
			if !ok {
				return nil
			}

			if t.accept(ev) {
				d.Trigger(ev.Name)
			}

		case werr, ok := <-t.fsw.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.Any("error", werr))
		}
	}
}

// describe renders the paths of a batch for a status line.
func describe(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}

	return fmt.Sprintf("%s (+%d more)", paths[0], len(paths)-1)
}

// runner prints one status line per run and the item changes since the
// previous successful run. The debouncer serializes calls after the
// initial run.
type runner struct {
	out   io.Writer
	runFn RunFunc
	prev  map[string]string
}

func (r *runner) run(ctx context.Context, trigger string) {
	stamp := time.Now().Format(time.TimeOnly)

	res, err := r.runFn(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "[%s] %s -> ERROR: %v\n", stamp, trigger, err)
		return
	}

	fmt.Fprintf(r.out, "[%s] %s -> OK (%d kept, %d dropped)\n", stamp, trigger, res.Kept, res.Dropped)

	if r.prev != nil {
		if changes := Diff(r.prev, res.Outcomes); len(changes) > 0 {
			fmt.Fprintf(r.out, "  items: %s\n", DiffSummary(changes))
		}
	}

	r.prev = res.Outcomes
}

// tree is the set of watched inputs. A single file is watched through its
// parent directory so that editors replacing the file by rename keep
// triggering; events for siblings of such a file are ignored. All paths
// are absolute.
type tree struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger

	// files are inputs given as files.
	files map[string]bool

	// dirs are directories watched for all of their entries.
	dirs map[string]bool

	ignore map[string]bool
}

func newTree(logger *slog.Logger) (*tree, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	return &tree{
		fsw:    fsw,
		logger: logger,
		files:  make(map[string]bool),
		dirs:   make(map[string]bool),
		ignore: make(map[string]bool),
	}, nil
}

func (t *tree) close() { _ = t.fsw.Close() }

// add watches path, recursively when it is a directory.
func (t *tree) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return t.addDir(abs)
	}

	t.files[abs] = true

	return t.fsw.Add(filepath.Dir(abs))
}

// addDir watches root and every non-hidden directory below it.
func (t *tree) addDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}

		if err := t.fsw.Add(path); err != nil {
			return err
		}

		t.dirs[path] = true

		return nil
	})
}

// accept reports whether ev should trigger a run. Directories created
// inside a watched directory are watched from then on.
func (t *tree) accept(ev fsnotify.Event) bool {
	if !isRelevant(ev) || t.ignore[ev.Name] {
		return false
	}

	if t.files[ev.Name] {
		return true
	}

	if !t.dirs[filepath.Dir(ev.Name)] {
		return false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := t.addDir(ev.Name); err != nil {
				t.logger.Warn("watching new directory", slog.String("path", ev.Name), slog.Any("error", err))
			}
		}
	}

	return true
}

// isRelevant drops chmod-only events and editor scratch files.
func isRelevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(ev.Name)

	switch {
	case hidden(name), strings.HasPrefix(name, "#"):
		return false
	case strings.HasSuffix(name, "~"), strings.HasSuffix(name, ".swp"):
		return false
	}

	return true
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
