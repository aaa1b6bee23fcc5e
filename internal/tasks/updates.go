package tasks

import (
	"fmt"

	"github.com/tuniverse/tvx/internal/services"
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
	FetchHealth Phase = iota
	FetchProfile
	FetchPlaylists
	FetchPassport
	Persist
	Compare
	ExportDemo
)

func (p Phase) String() string {
	switch p {
	case FetchHealth:
		return "fetch_health"
	case FetchProfile:
		return "fetch_profile"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchPassport:
		return "fetch_passport"
	case Persist:
		return "persist"
	case Compare:
		return "compare"
	case ExportDemo:
		return "export_demo"
	default:
		return ""
	}
}

func fetchPassportUpdate(step, total int, source services.PassportSource) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPassport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching passport (%s)...", source),
	}
}

func persistSnapshotUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persist,
		Step:    step,
		Total:   total,
		Message: "Recording snapshot...",
	}
}

func compareUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing sources...",
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func exportingDemoUpdate(step, total int, userID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDemo,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exporting demo passport (%s)...", userID),
	}
}

func exportCompletedUpdate(step, total int, userID string, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDemo,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exported %s (%d files)", userID, files),
	}
}

func exportFailedUpdate(step, total int, userID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDemo,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Export failed for %s: %v", userID, err),
	}
}
