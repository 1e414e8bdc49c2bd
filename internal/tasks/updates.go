package tasks

import (
	"fmt"
)

// Level classifies a [Notice].
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return ""
	}
}

// Notice is a transient, user-facing result of an action.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

func (n Notice) String() string {
	return fmt.Sprintf("%s: %s", n.Title, n.Message)
}

func errorNotice(err error) Notice {
	return Notice{Level: LevelError, Title: "Error", Message: err.Error()}
}

func createdNotice(entity string) Notice {
	msg := "Video uploaded"
	if entity == categoryEntity {
		msg = "Category added"
	}
	return Notice{Level: LevelSuccess, Title: "Created", Message: msg}
}

func updatedNotice(entity string) Notice {
	msg := "Video saved"
	if entity == categoryEntity {
		msg = "Category saved"
	}
	return Notice{Level: LevelSuccess, Title: "Updated", Message: msg}
}

func deletedNotice(entity string) Notice {
	msg := "Video removed"
	if entity == categoryEntity {
		msg = "Category removed"
	}
	return Notice{Level: LevelSuccess, Title: "Deleted", Message: msg}
}

func unchangedNotice() Notice {
	return Notice{Level: LevelInfo, Title: "Unchanged", Message: "No changes to save"}
}

// ProgressUpdate represents a progress event during a multi-page fetch.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchPages Phase = iota
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchPages:
		return "fetch_pages"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

func fetchedPageUpdate(step, total, page int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ page %d", step, total, page),
	}
}

func failedPageUpdate(step, total, page int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ page %d: %v", step, total, page, err),
	}
}

func writingExportUpdate(count int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %d videos to %s...", count, path),
	}
}
