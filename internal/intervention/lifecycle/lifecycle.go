// Package lifecycle implements the intervention status state machine and its
// elapsed-time accounting. The transition logic is pure: it performs no I/O,
// reads no clock of its own, and cannot fail on valid status values.
package lifecycle

import (
	"fmt"
	"time"

	domain "github.com/sahelsolar/fieldops/internal/intervention/domain"
)

// StatusNone marks the absence of a previously persisted status, i.e. the
// very first save of an intervention.
const StatusNone domain.Status = ""

// Apply executes the bookkeeping for a prev -> next status change as of now.
// All timestamps written during one invocation share the same instant.
//
// Entering in_progress opens a span (Start on first entry, Resume with a note
// afterwards). Leaving in_progress closes the span, folds its elapsed time
// into the accumulated duration and appends an End entry carrying it.
// A transition onto the same status is a strict no-op.
//
// The returned entries have already been appended to the intervention's
// status history; they are exposed so callers can record or publish them.
func Apply(iv *domain.Intervention, prev domain.Status, now time.Time) ([]domain.HistoryEntry, error) {
	if iv.Status == prev {
		return nil, nil
	}

	var entries []domain.HistoryEntry

	if prev == domain.StatusInProgress && iv.Status != domain.StatusInProgress {
		// Closing a span. ActiveSince is non-nil whenever the persisted
		// status was in_progress; guard anyway so corrupt rows degrade to a
		// plain status change instead of a panic.
		if iv.ActiveSince != nil {
			elapsed := now.Sub(*iv.ActiveSince)
			iv.AccumulatedDuration += elapsed
			iv.ActiveSince = nil
			entries = append(entries, domain.HistoryEntry{
				Status:    domain.StatusInProgress,
				Timestamp: now,
				Action:    domain.HistoryActionEnd,
				Elapsed:   elapsed,
			})
		}
	}

	if iv.Status == domain.StatusInProgress && prev != domain.StatusInProgress {
		startedAt := now
		iv.ActiveSince = &startedAt

		entry := domain.HistoryEntry{
			Status:    domain.StatusInProgress,
			Timestamp: now,
			Action:    domain.HistoryActionStart,
		}
		if prev != StatusNone {
			resumed, err := hasOpenedSpan(iv)
			if err != nil {
				return nil, err
			}
			if resumed {
				entry.Action = domain.HistoryActionResume
				entry.Note = fmt.Sprintf("resumed after %s status", prev)
			}
		}
		entries = append(entries, entry)
	}

	if err := iv.AppendHistory(entries...); err != nil {
		return nil, err
	}
	return entries, nil
}

// TotalDuration projects the intervention's cumulative in_progress time as of
// now: the persisted accumulation plus the live span when one is open. The
// live delta is never written back outside a transition, which keeps repeated
// reads from compounding clock skew.
func TotalDuration(iv *domain.Intervention, now time.Time) time.Duration {
	total := iv.AccumulatedDuration
	if iv.Status == domain.StatusInProgress && iv.ActiveSince != nil {
		total += now.Sub(*iv.ActiveSince)
	}
	return total
}

// FormatDuration renders a duration as days/hours/minutes, falling back to
// seconds for sub-minute spans.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0 min"
	}

	totalSeconds := int(d.Seconds())
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	out := ""
	if days > 0 {
		out += fmt.Sprintf("%dd ", days)
	}
	if hours > 0 {
		out += fmt.Sprintf("%dh ", hours)
	}
	if minutes > 0 {
		out += fmt.Sprintf("%dmin ", minutes)
	}
	if out == "" && seconds > 0 {
		out = fmt.Sprintf("%ds ", seconds)
	}
	if out == "" {
		return "0 min"
	}
	return out[:len(out)-1]
}

func hasOpenedSpan(iv *domain.Intervention) (bool, error) {
	history, err := iv.History()
	if err != nil {
		return false, err
	}
	for _, entry := range history {
		if entry.Action == domain.HistoryActionStart || entry.Action == domain.HistoryActionResume {
			return true, nil
		}
	}
	return false, nil
}
