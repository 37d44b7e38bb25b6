// Package watch calls back when a single file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

type Options struct {
	// Debounce is how long to wait for more events before calling back.
	// Default: 100ms
	Debounce time.Duration
	Logger   log.Logger
}

// Watcher watches the directory holding a file, so that editors replacing
// the file by rename are still seen.
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	logger   log.Logger
	watcher  *fsnotify.Watcher
}

func New(path string, onChange func(), opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watching %s", filepath.Dir(abs))
	}
	return &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: opts.Debounce,
		logger:   log.With(opts.Logger, "component", "watch", "path", abs),
		watcher:  fw,
	}, nil
}

// Run delivers callbacks until ctx is done. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			level.Debug(w.logger).Log("msg", "file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			level.Warn(w.logger).Log("msg", "watch error", "err", err)
		}
	}
}
