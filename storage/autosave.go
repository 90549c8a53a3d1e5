package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// AutoSaveOptions tunes the autosave loop.
type AutoSaveOptions struct {
	// Interval is the periodic save frequency (default: 30s).
	Interval time.Duration `json:"interval" yaml:"interval"`

	// SaveOnMutation enables debounced saving after every mutation
	// notification. Off by default: under rapid editing it amplifies
	// storage I/O for no benefit over the periodic save.
	SaveOnMutation bool `json:"save_on_mutation" yaml:"save_on_mutation"`

	// Debounce is the quiet window after a mutation before a
	// save-on-mutation fires; further mutations reset it (default: 2s).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`

	// Logger overrides the default logger.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (o *AutoSaveOptions) defaults() {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.Debounce <= 0 {
		o.Debounce = 2 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// SaveFunc captures and persists the current document state.
type SaveFunc func(ctx context.Context) error

// AutoSaver periodically persists the document, and optionally after a
// debounced burst of mutation notifications. Saves are fire-and-forget
// relative to mutations: each save reflects whatever state exists when it
// runs, and a save dropped by the in-progress guard is simply skipped.
type AutoSaver struct {
	save SaveFunc
	opts AutoSaveOptions

	notify chan struct{}
	saves  atomic.Int64
	drops  atomic.Int64
}

// NewAutoSaver creates an AutoSaver around save. Call Run to start it.
func NewAutoSaver(save SaveFunc, opts AutoSaveOptions) *AutoSaver {
	opts.defaults()
	return &AutoSaver{
		save:   save,
		opts:   opts,
		notify: make(chan struct{}, 1),
	}
}

// Notify signals that a mutation happened. Non-blocking; coalesces bursts.
// Ignored unless SaveOnMutation is enabled.
func (a *AutoSaver) Notify() {
	if !a.opts.SaveOnMutation {
		return
	}
	select {
	case a.notify <- struct{}{}:
	default:
	}
}

// Saves returns how many saves the loop has completed.
func (a *AutoSaver) Saves() int64 { return a.saves.Load() }

// Run blocks until ctx is cancelled, saving on the interval tick and after
// debounced mutation bursts. A final save runs on shutdown so the persisted
// copy is as fresh as possible when the process exits.
func (a *AutoSaver) Run(ctx context.Context) {
	log := a.opts.Logger

	ticker := time.NewTicker(a.opts.Interval)
	defer ticker.Stop()

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	log.Info("autosave started", "interval", a.opts.Interval, "on_mutation", a.opts.SaveOnMutation)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			// On-unload save, detached from the cancelled context.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			a.fire(shutdownCtx, log)
			cancel()
			log.Info("autosave stopped")
			return

		case <-ticker.C:
			a.fire(ctx, log)

		case <-a.notify:
			// Burst coalescing: each notification resets the window.
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(a.opts.Debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			a.fire(ctx, log)
		}
	}
}

func (a *AutoSaver) fire(ctx context.Context, log *slog.Logger) {
	err := a.save(ctx)
	switch {
	case err == nil:
		a.saves.Add(1)
	case errors.Is(err, ErrSaveInProgress):
		a.drops.Add(1)
		log.Debug("autosave skipped, save in progress")
	default:
		log.Warn("autosave failed", "error", err)
	}
}
