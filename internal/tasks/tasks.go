// package tasks implements catalog maintenance operations.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// MediaWriter persists probed media. created is false when the path was already catalogued.
type MediaWriter interface {
	SaveMedia(ctx context.Context, item *models.MediaItem) (created bool, err error)
}

// ImportEngine runs catalog imports against a [MediaWriter].
type ImportEngine struct {
	writer MediaWriter
	logger *log.Logger
}

// NewImportEngine creates an engine. A nil logger discards output.
func NewImportEngine(writer MediaWriter, logger *log.Logger) *ImportEngine {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &ImportEngine{writer: writer, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
