package model

import "context"

// Recorder defines a generic interface for publishing the outcome of a run to
// a persistent store or a message bus.
type Recorder interface {
	// Record is called once per capture file that was written successfully.
	Record(ctx context.Context, summary FixtureSummary) error

	// Close flushes anything buffered and releases connections.
	Close() error
}
