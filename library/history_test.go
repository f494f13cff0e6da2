package library

import (
	"path/filepath"
	"testing"
	"time"
)

func TestHistoryLogMissingFile(t *testing.T) {
	h := NewHistoryLog(filepath.Join(t.TempDir(), historyFile))
	events, err := h.All()
	if err != nil {
		t.Fatalf("missing log should read empty: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("want no events, got %d", len(events))
	}
}

func TestHistoryLogAppendAndReplay(t *testing.T) {
	h := NewHistoryLog(filepath.Join(t.TempDir(), historyFile))
	h.clock = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	if _, err := h.Record(ActionCheckout, "BOOK_0001", "USER_0001"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := h.Record(ActionReturn, "BOOK_0001", "USER_0001"); err != nil {
		t.Fatalf("record: %v", err)
	}

	events, err := h.All()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want 2 events, got %d", len(events))
	}
	if events[0].Action != ActionCheckout || events[1].Action != ActionReturn {
		t.Fatalf("order wrong: %+v", events)
	}
	if events[0].Time != events[0].Time.UTC() {
		t.Fatalf("timestamps should be UTC")
	}
}
