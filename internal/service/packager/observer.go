package packager

import (
	"context"

	"github.com/clipmaster/ext-packager/internal/logger"
)

// Observer receives progress notifications while the archive is written.
// Implementations must be cheap; they are called once per archive entry.
type Observer interface {
	// FileAdded is called after the named entry has been written to the archive.
	FileAdded(ctx context.Context, name string)
}

// loggingObserver is the default Observer, reporting each entry on the log.
type loggingObserver struct{}

// FileAdded logs the added entry.
func (loggingObserver) FileAdded(ctx context.Context, name string) {
	logger.Infof(ctx, "Added: %s", name)
}
