package testutil

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"dump-go/internal/dump"
	"dump-go/internal/journal"
	"dump-go/internal/storage"
)

// NewTestStore opens a Store on empty in-memory storage with a fixed clock,
// sequential IDs and no journal. The seeded Inbox gets ID "id-1".
func NewTestStore(t *testing.T) (*dump.Store, *storage.MemoryStorage) {
	t.Helper()
	st := storage.NewMemoryStorage(nil)
	return dump.Open(st, nil, nil, FixedClock(), NewStubIDGenerator()), st
}

// NewTestJournal creates an in-memory SQLite journal closed when the test ends.
func NewTestJournal(t *testing.T) *journal.SQLiteJournal {
	t.Helper()
	j, err := journal.NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// ErrStorage is returned by FailingStorage.
var ErrStorage = errors.New("storage unavailable")

// FailingStorage fails loads, saves or both.
type FailingStorage struct {
	FailLoad bool
	FailSave bool
	Data     []byte
}

func (s *FailingStorage) Load() ([]byte, error) {
	if s.FailLoad {
		return nil, ErrStorage
	}
	return s.Data, nil
}

func (s *FailingStorage) Save(data []byte) error {
	if s.FailSave {
		return ErrStorage
	}
	s.Data = data
	return nil
}

var _ dump.Storage = (*FailingStorage)(nil)

// LogEntry is one message captured by RecordingLogger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger captures log calls for assertions. Safe for concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

// Entries returns the captured entries at level, or all entries when level is "".
func (l *RecordingLogger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEntry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// String formats the captured entries, one per line.
func (l *RecordingLogger) String() string {
	var s string
	for _, e := range l.Entries("") {
		s += fmt.Sprintf("%s %s %v\n", e.Level, e.Msg, e.Args)
	}
	return s
}

var _ dump.Logger = (*RecordingLogger)(nil)
