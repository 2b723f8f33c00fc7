// Package preview serves the generated site locally and rebuilds it whenever
// a source file changes.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/gitsource"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const debounceWindow = 300 * time.Millisecond

// Serve runs an initial build, then serves the output directory over HTTP
// while watching the local source roots for changes. Git-URL sources are not
// watched; they are fetched once per rebuild trigger.
func Serve(ctx context.Context, cfg *config.Config, builder *build.Builder, port int, registry *prometheus.Registry) error {
	if _, err := builder.Run(ctx); err != nil {
		// The preview keeps running on a failed initial build so the user
		// can fix sources and trigger a rebuild by saving.
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := setupWatcher(cfg.Sources)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	server := newHTTPServer(cfg.Output.Directory, port, registry)
	go func() {
		slog.Info("Preview server listening", logfields.URL(fmt.Sprintf("http://localhost:%d", port)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server failed", logfields.Error(err))
		}
	}()

	rebuildReq, trigger := debouncer()
	startRebuildWorker(ctx, builder, rebuildReq)

	return eventLoop(ctx, watcher, trigger, server)
}

func newHTTPServer(outputDir string, port int, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(outputDir)))
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func setupWatcher(sources []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	watched := 0
	for _, src := range sources {
		if gitsource.IsGitURL(src) {
			continue
		}
		if err := addDirsRecursive(watcher, src); err != nil {
			slog.Warn("Cannot watch source", logfields.Source(src), logfields.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return nil, errors.New("preview requires at least one watchable local source directory")
	}
	return watcher, nil
}

// debouncer coalesces bursts of filesystem events into one rebuild request.
func debouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// startRebuildWorker processes rebuild requests one at a time; a request
// arriving mid-build queues exactly one follow-up build.
func startRebuildWorker(ctx context.Context, builder *build.Builder, rebuildReq chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rebuildReq:
				if !ok {
					return
				}
				slog.Info("Change detected, rebuilding site")
				if _, err := builder.Run(ctx); err != nil {
					slog.Warn("Rebuild failed", logfields.Error(err))
				}
			}
		}
	}()
}

func eventLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func(), server *http.Server) error {
	for {
		select {
		case <-ctx.Done():
			return shutdown(server)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func shutdown(server *http.Server) error {
	slog.Info("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Preview server shutdown error", logfields.Error(err))
	}
	return nil
}

func handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnore(ev.Name) {
		return
	}
	// New directories must be added to the watch set before their contents
	// generate events.
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		return fmt.Errorf("source is not a directory: %s", abs)
	}
	return filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnore filters editor temp/swap files and hidden files.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
