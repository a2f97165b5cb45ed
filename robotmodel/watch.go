package robotmodel

import (
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/gladys-robotics/navcore/logging"
)

// Watcher reloads a robot description file whenever it changes on disk, so
// a long-running process can pick up a new radius/velocity/cost table
// without restarting. Every derived CostMap/NavGraph becomes stale on
// reload — it is the caller's responsibility to rebuild them (spec §5:
// "Mutating a CostMap... invalidates every planner/detector/cache derived
// from it").
type Watcher struct {
	path    string
	log     logging.Logger
	watcher *fsnotify.Watcher
	onLoad  func(Model, error)
	done    chan struct{}
}

// Watch loads path immediately and then watches it for writes, invoking
// onLoad with each successfully (or unsuccessfully) reloaded Model.
func Watch(path string, log logging.Logger, onLoad func(Model, error)) (*Watcher, error) {
	m, err := Load(path)
	onLoad(m, err)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "robotmodel: starting file watcher")
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "robotmodel: watching %q", path)
	}

	w := &Watcher{path: path, log: log, watcher: fsw, onLoad: onLoad, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			m, err := Load(w.path)
			if err != nil && w.log != nil {
				w.log.Warnw("robot description reload failed", "path", w.path, "err", err)
			}
			w.onLoad(m, err)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Errorw("robot description watcher error", "path", w.path, "err", err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
