package nav

import (
	"context"
	"time"
)

// HistoryRecord is one entry of the internal history stack. Counter equals
// the record's index and is echoed in the host payload.
type HistoryRecord struct {
	State     State  `json:"state"`
	Counter   int    `json:"counter"`
	SessionID string `json:"sessionId"`
}

// HistorySnapshot is the persisted form of a session's history stack.
type HistorySnapshot struct {
	SessionID     string          `json:"sessionId"`
	Pointer       int             `json:"pointer"`
	ModalSequence int             `json:"modalSequence"`
	Records       []HistoryRecord `json:"records"`
	SavedAt       time.Time       `json:"savedAt"`
}

// Valid reports whether the snapshot can seed a navigator.
func (s HistorySnapshot) Valid() bool {
	return s.SessionID != "" && len(s.Records) > 0 && s.Pointer >= 0 && s.Pointer < len(s.Records)
}

// HistoryPersister saves and restores history snapshots keyed by session id.
type HistoryPersister interface {
	SaveHistory(ctx context.Context, snapshot HistorySnapshot) error
	LoadHistory(ctx context.Context, sessionID string) (HistorySnapshot, bool, error)
}

// historyStack is the ordered record sequence plus the current position.
// Records past the pointer are forward entries.
type historyStack struct {
	records []HistoryRecord
	pointer int
	session string
}

func (h *historyStack) reset(session string) {
	h.records = nil
	h.pointer = 0
	h.session = session
}

func (h *historyStack) len() int {
	return len(h.records)
}

func (h *historyStack) current() (HistoryRecord, bool) {
	return h.at(h.pointer)
}

func (h *historyStack) at(index int) (HistoryRecord, bool) {
	if index < 0 || index >= len(h.records) {
		return HistoryRecord{}, false
	}
	return h.records[index], true
}

// push drops forward entries and appends state as the new current record.
func (h *historyStack) push(state State) HistoryRecord {
	if len(h.records) > 0 {
		h.records = h.records[:h.pointer+1]
	}
	record := HistoryRecord{State: state.Clone(), Counter: len(h.records), SessionID: h.session}
	h.records = append(h.records, record)
	h.pointer = record.Counter
	return record
}

// replace overwrites the current record.
func (h *historyStack) replace(state State) HistoryRecord {
	if len(h.records) == 0 {
		return h.push(state)
	}
	record := HistoryRecord{State: state.Clone(), Counter: h.pointer, SessionID: h.session}
	h.records[h.pointer] = record
	return record
}

// pop drops the current record and every forward entry, moving to the
// previous record. The root entry is never popped.
func (h *historyStack) pop() (HistoryRecord, bool) {
	if h.pointer == 0 {
		return HistoryRecord{}, false
	}
	h.records = h.records[:h.pointer]
	h.pointer--
	return h.records[h.pointer], true
}

// truncate keeps records up to and including index and moves there.
func (h *historyStack) truncate(index int) {
	if index < 0 || index >= len(h.records) {
		return
	}
	h.records = h.records[:index+1]
	h.pointer = index
}

// move shifts the pointer by delta, clamped to the stack bounds, and returns
// the number of steps actually taken.
func (h *historyStack) move(delta int) int {
	target := h.pointer + delta
	if target < 0 {
		target = 0
	}
	if target > len(h.records)-1 {
		target = len(h.records) - 1
	}
	taken := target - h.pointer
	h.pointer = target
	return taken
}

func (h *historyStack) list() []HistoryRecord {
	out := make([]HistoryRecord, len(h.records))
	for i, record := range h.records {
		record.State = record.State.Clone()
		out[i] = record
	}
	return out
}

func (h *historyStack) snapshot(modalSequence int) HistorySnapshot {
	return HistorySnapshot{
		SessionID:     h.session,
		Pointer:       h.pointer,
		ModalSequence: modalSequence,
		Records:       h.list(),
		SavedAt:       time.Now(),
	}
}

func (h *historyStack) restore(snapshot HistorySnapshot) {
	h.session = snapshot.SessionID
	h.records = make([]HistoryRecord, len(snapshot.Records))
	for i, record := range snapshot.Records {
		record.Counter = i
		record.SessionID = snapshot.SessionID
		record.State = record.State.Clone()
		h.records[i] = record
	}
	h.pointer = snapshot.Pointer
}
