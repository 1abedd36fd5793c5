package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/r4/internal/logger"
	"github.com/Faultbox/r4/pkg/obj"
)

// settleDelay batches the burst of events an editor produces on save.
const settleDelay = 200 * time.Millisecond

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	out := fs.String("o", ".", "Output directory")
	smooth := fs.Bool("smooth", false, "Use vertex normals on smooth faces")
	center := fs.Bool("center", false, "Move the mesh center to the origin")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: r4tool watch [-o dir] [-smooth] [-center] <dir>")
		os.Exit(1)
	}

	w, err := newWatcher(fs.Arg(0), *out, obj.ExportOptions{Smooth: *smooth, Center: *center})
	if err != nil {
		fail(err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := w.run(ctx); err != nil {
		fail(err)
	}
}

// watcher re-converts OBJ files in a directory when they, or a material
// library next to them, change.
type watcher struct {
	dir    string
	outDir string
	opts   obj.ExportOptions
	delay  time.Duration

	fsw *fsnotify.Watcher
	log *zap.Logger
}

func newWatcher(dir, outDir string, opts obj.ExportOptions) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &watcher{
		dir:    dir,
		outDir: outDir,
		opts:   opts,
		delay:  settleDelay,
		fsw:    fsw,
		log:    logger.Named("watch"),
	}, nil
}

func (w *watcher) Close() error {
	return w.fsw.Close()
}

func (w *watcher) run(ctx context.Context) error {
	w.log.Info("watching", zap.String("dir", w.dir), zap.String("out", w.outDir))

	pending := make(map[string]bool)
	timer := time.NewTimer(w.delay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			sources, err := w.affected(ev.Name)
			if err != nil {
				w.log.Warn("listing sources", zap.Error(err))
				continue
			}
			for _, src := range sources {
				pending[src] = true
			}
			if len(sources) > 0 {
				timer.Reset(w.delay)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			w.convert(pending)
			clear(pending)
		}
	}
}

// affected returns the OBJ files to rebuild for a change to name: the file
// itself, or every OBJ in the directory for a material library.
func (w *watcher) affected(name string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".obj":
		return []string{name}, nil
	case ".mtl":
		return listOBJ(w.dir)
	}
	return nil, nil
}

func (w *watcher) convert(pending map[string]bool) {
	sources := make([]string, 0, len(pending))
	for src := range pending {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		start := time.Now()
		stats, err := convertOBJ(src, w.outDir, w.opts)
		if err != nil {
			w.log.Error("conversion failed", zap.String("file", src), zap.Error(err))
			continue
		}
		w.log.Info("converted",
			zap.String("file", src),
			zap.Int("groups", stats.Groups),
			zap.Int("faces", stats.Faces),
			zap.Duration("took", time.Since(start)))
	}
}

func listOBJ(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".obj") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
