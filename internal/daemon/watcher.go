package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Watcher monitors the docs tree and the site config file and calls its
// trigger once a burst of changes has been quiet for the debounce window.
type Watcher struct {
	docsDir    string
	configPath string
	debounce   time.Duration
	trigger    func(reason string)

	watcher *fsnotify.Watcher
	watched map[string]bool
	mu      sync.Mutex
	timer   *time.Timer
	last    string
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher. It does not watch anything until Start.
func NewWatcher(docsDir, configPath string, debounce time.Duration, trigger func(reason string)) (*Watcher, error) {
	docsAbs, err := filepath.Abs(docsDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve docs dir").Build()
	}
	cfgAbs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve site config path").Build()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "create file watcher").Build()
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{
		docsDir:    docsAbs,
		configPath: cfgAbs,
		debounce:   debounce,
		trigger:    trigger,
		watcher:    fw,
		watched:    make(map[string]bool),
		done:       make(chan struct{}),
	}, nil
}

// Start registers the watches and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.docsDir); err != nil {
		return err
	}
	// The directory is watched rather than the file so that editors that
	// replace the file on save keep being observed. It may sit outside the
	// docs tree or inside an ignored directory such as .vuepress.
	cfgDir := filepath.Dir(w.configPath)
	if !w.isWatched(cfgDir) {
		if err := w.add(cfgDir); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch site config directory").
				WithContext("dir", cfgDir).Build()
		}
	}
	slog.Info("Starting file watcher", logfields.Path(w.docsDir), logfields.File(w.configPath))

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop ends the watch and cancels a pending trigger.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	select {
	case <-w.done:
		w.mu.Unlock()
		return nil
	default:
	}
	close(w.done)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) inDocs(p string) bool {
	return p == w.docsDir || strings.HasPrefix(p, w.docsDir+string(filepath.Separator))
}

// addTree watches root and every directory below it that a scan would visit.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "walk docs directory").
				WithContext("path", p).Build()
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.add(p); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch directory").
				WithContext("path", p).Build()
		}
		return nil
	})
}

func (w *Watcher) add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.mu.Lock()
	w.watched[dir] = true
	w.mu.Unlock()
	return nil
}

func (w *Watcher) isWatched(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watched[dir]
}

func ignoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

func ignoredPath(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "" && ignoredDir(part) {
			return true
		}
	}
	return false
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	name := filepath.Clean(ev.Name)
	if name == w.configPath {
		w.schedule("site_config")
		return
	}
	if name == w.docsDir || !w.inDocs(name) || ignoredPath(strings.TrimPrefix(name, w.docsDir)) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.addTree(name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(name), logfields.Error(err))
			}
			w.schedule("docs")
			return
		}
	}
	// Removed or renamed directories are indistinguishable from files here.
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || strings.HasSuffix(name, ".md") {
		w.schedule("docs")
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
		return
	default:
	}
	w.last = reason
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		reason := w.last
		w.mu.Unlock()
		slog.Debug("File changes settled", slog.String("reason", reason))
		w.trigger(reason)
	})
}
