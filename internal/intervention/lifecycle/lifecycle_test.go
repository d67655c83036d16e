package lifecycle

import (
	"testing"
	"time"

	domain "github.com/sahelsolar/fieldops/internal/intervention/domain"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newInProgress(t *testing.T) *domain.Intervention {
	t.Helper()
	iv := &domain.Intervention{
		Kind:   domain.KindMaintenance,
		Status: domain.StatusInProgress,
	}
	if _, err := Apply(iv, StatusNone, base); err != nil {
		t.Fatalf("apply initial: %v", err)
	}
	return iv
}

func transition(t *testing.T, iv *domain.Intervention, next domain.Status, at time.Time) []domain.HistoryEntry {
	t.Helper()
	prev := iv.Status
	iv.Status = next
	entries, err := Apply(iv, prev, at)
	if err != nil {
		t.Fatalf("apply %s -> %s: %v", prev, next, err)
	}
	return entries
}

func TestApplyFirstSaveOpensSpan(t *testing.T) {
	iv := newInProgress(t)

	if iv.ActiveSince == nil || !iv.ActiveSince.Equal(base) {
		t.Fatalf("active_since = %v, want %v", iv.ActiveSince, base)
	}
	if iv.AccumulatedDuration != 0 {
		t.Fatalf("accumulated = %v, want 0", iv.AccumulatedDuration)
	}

	history, err := iv.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Action != domain.HistoryActionStart {
		t.Fatalf("action = %q, want start", history[0].Action)
	}
	if history[0].Note != "" {
		t.Fatalf("start entry should carry no note, got %q", history[0].Note)
	}
}

func TestApplySameStatusIsNoOp(t *testing.T) {
	iv := newInProgress(t)

	entries, err := Apply(iv, domain.StatusInProgress, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %v", entries)
	}
	if !iv.ActiveSince.Equal(base) {
		t.Fatalf("active_since moved to %v", iv.ActiveSince)
	}
	history, _ := iv.History()
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
}

func TestApplyClosesSpanOnCompletion(t *testing.T) {
	iv := newInProgress(t)

	entries := transition(t, iv, domain.StatusCompleted, base.Add(90*time.Minute))

	if iv.AccumulatedDuration != 90*time.Minute {
		t.Fatalf("accumulated = %v, want 90m", iv.AccumulatedDuration)
	}
	if iv.ActiveSince != nil {
		t.Fatalf("active_since should be cleared, got %v", iv.ActiveSince)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Action != domain.HistoryActionEnd || entries[0].Elapsed != 90*time.Minute {
		t.Fatalf("end entry = %+v", entries[0])
	}
	if entries[0].Status != domain.StatusInProgress {
		t.Fatalf("end entry records status %q, want in_progress", entries[0].Status)
	}
}

func TestApplyResumeAccumulatesAcrossSpans(t *testing.T) {
	iv := newInProgress(t)

	transition(t, iv, domain.StatusPlanned, base.Add(90*time.Minute))
	entries := transition(t, iv, domain.StatusInProgress, base.Add(3*time.Hour))

	if len(entries) != 1 || entries[0].Action != domain.HistoryActionResume {
		t.Fatalf("expected a resume entry, got %+v", entries)
	}
	if entries[0].Note != "resumed after planned status" {
		t.Fatalf("resume note = %q", entries[0].Note)
	}

	transition(t, iv, domain.StatusCompleted, base.Add(3*time.Hour+30*time.Minute))

	if iv.AccumulatedDuration != 2*time.Hour {
		t.Fatalf("accumulated = %v, want 2h", iv.AccumulatedDuration)
	}

	history, err := iv.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	// start, end, resume, end
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
}

func TestApplyPlannedFirstThenStartIsNotResume(t *testing.T) {
	iv := &domain.Intervention{
		Kind:   domain.KindInstallation,
		Status: domain.StatusPlanned,
	}
	if _, err := Apply(iv, StatusNone, base); err != nil {
		t.Fatalf("apply: %v", err)
	}

	entries := transition(t, iv, domain.StatusInProgress, base.Add(time.Hour))
	if len(entries) != 1 || entries[0].Action != domain.HistoryActionStart {
		t.Fatalf("expected a plain start, got %+v", entries)
	}
}

func TestTotalDurationIncludesLiveSpan(t *testing.T) {
	iv := newInProgress(t)
	iv.AccumulatedDuration = 30 * time.Minute

	got := TotalDuration(iv, base.Add(15*time.Minute))
	if got != 45*time.Minute {
		t.Fatalf("total = %v, want 45m", got)
	}

	transition(t, iv, domain.StatusCancelled, base.Add(20*time.Minute))
	if got := TotalDuration(iv, base.Add(time.Hour)); got != 50*time.Minute {
		t.Fatalf("total after close = %v, want 50m", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 min"},
		{45 * time.Second, "45s"},
		{90 * time.Minute, "1h 30min"},
		{26*time.Hour + 5*time.Minute, "1d 2h 5min"},
		{24 * time.Hour, "1d"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
