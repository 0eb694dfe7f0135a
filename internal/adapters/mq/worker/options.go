// Package worker runs scoring jobs off the queue and publishes the results.
package worker

import (
	"github.com/okian/wicket/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithResults registers a sink that receives every scored roster.
func WithResults(sink Results) Option {
	return func(w *InMemoryWorker) {
		if sink != nil {
			w.results = sink
		}
	}
}
