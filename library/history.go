package library

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

const historyFile = "library_history.jsonl"

// Circulation actions recorded in the history log.
const (
	ActionCheckout = "checkout"
	ActionReturn   = "return"
)

// CirculationEvent is one checkout or return, as recorded on disk.
type CirculationEvent struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	BookID     string    `json:"book_id"`
	BorrowerID string    `json:"borrower_id"`
	Time       time.Time `json:"time"`
}

// HistoryLog is an append-only JSONL record of circulation activity.
// It is a side record for auditing; the authoritative loan state lives
// in the borrower documents.
type HistoryLog struct {
	path  string
	clock func() time.Time
}

// NewHistoryLog creates a log writing to path.
func NewHistoryLog(path string) *HistoryLog {
	return &HistoryLog{path: path, clock: time.Now}
}

// Record appends one event and returns it with id and timestamp filled in.
func (h *HistoryLog) Record(action, bookID, borrowerID string) (CirculationEvent, error) {
	ev := CirculationEvent{
		ID:         uuid.NewString(),
		Action:     action,
		BookID:     bookID,
		BorrowerID: borrowerID,
		Time:       h.clock().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return ev, fmt.Errorf("marshal event: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ev, fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return ev, fmt.Errorf("append event: %w", err)
	}
	return ev, nil
}

// All replays every event in the log, oldest first. A missing log file
// yields an empty slice.
func (h *HistoryLog) All() ([]CirculationEvent, error) {
	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []CirculationEvent{}, nil
		}
		return nil, fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()

	var events []CirculationEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev CirculationEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("decode history event: %w", err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history log: %w", err)
	}
	return events, nil
}
