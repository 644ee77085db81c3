package pipeline

import "log/slog"

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	progress  Progress
	stateHook func(State)
}

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		progress: nopProgress{},
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress sets the byte progress reporter driven by the aggregator.
// *progressbar.ProgressBar satisfies Progress.
func WithProgress(p Progress) Option {
	return func(o *options) {
		if p != nil {
			o.progress = p
		}
	}
}

// WithStateHook registers fn to be called on every state transition.
// fn runs on the orchestrating goroutine and must not block.
func WithStateHook(fn func(State)) Option {
	return func(o *options) {
		o.stateHook = fn
	}
}

// Progress receives the number of input bytes processed as batches are merged.
type Progress interface {
	Add64(n int64) error
	Finish() error
}

type nopProgress struct{}

func (nopProgress) Add64(int64) error { return nil }
func (nopProgress) Finish() error     { return nil }
