package tasks

import (
	"fmt"
	"path/filepath"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanFiles Phase = iota
	ProbeMedia
	SaveMedia
)

func (p Phase) String() string {
	switch p {
	case ScanFiles:
		return "scan_files"
	case ProbeMedia:
		return "probe_media"
	case SaveMedia:
		return "save_media"
	default:
		return ""
	}
}

func scanningUpdate(root string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    0,
		Total:   0,
		Message: fmt.Sprintf("Scanning %s...", root),
	}
}

func scannedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Found %d media files", total),
	}
}

func probingUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProbeMedia,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Probing: %s...", step, total, filepath.Base(path)),
	}
}

func savedUpdate(step, total int, res FileResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveMedia,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%dx%d)", step, total, filepath.Base(res.Path), res.Width, res.Height),
		Data:    res,
	}
}

func skippedUpdate(step, total int, res FileResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveMedia,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s (already catalogued)", step, total, filepath.Base(res.Path)),
		Data:    res,
	}
}

func failedUpdate(step, total int, res FileResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveMedia,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(res.Path), res.Error),
		Data:    res,
	}
}
