package watcher

import "context"

// Watcher hands new audio files in a directory to an EventHandler
type Watcher interface {
	// Start processes files already present, then blocks handling new ones until ctx is done.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles file events
type EventHandler func(ctx context.Context, filePath string) error

// Matcher reports whether a path should be handed to the EventHandler
type Matcher func(path string) bool
