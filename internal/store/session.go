package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/phishtrail/phishtrail/internal/scan"
)

var storeTracer = otel.Tracer("github.com/phishtrail/phishtrail/internal/store")

// DefaultRecord is the backend key the history is persisted under.
const DefaultRecord = "scan_history"

// SessionStore holds the ordered scan history in memory and writes it
// through to a Backend on every mutation. Backend failures never fail the
// mutation: the history stays correct in memory and Persisted reports the
// degraded state.
type SessionStore struct {
	backend Backend
	record  string
	now     func() time.Time
	newID   func() string

	mu        sync.Mutex
	history   []scan.Result
	persisted bool
}

// Option configures a SessionStore
type Option func(*SessionStore)

// WithRecordName overrides the backend key the history is stored under
func WithRecordName(name string) Option {
	return func(s *SessionStore) {
		s.record = name
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) {
		s.now = now
	}
}

// WithIDGenerator overrides the id source
func WithIDGenerator(gen func() string) Option {
	return func(s *SessionStore) {
		s.newID = gen
	}
}

// New creates a SessionStore over the given backend. Call Open to load any
// previously persisted history.
func New(backend Backend, opts ...Option) *SessionStore {
	s := &SessionStore{
		backend:   backend,
		record:    DefaultRecord,
		now:       time.Now,
		newID:     uuid.NewString,
		persisted: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the persisted history. A missing record means an empty history.
// An unreadable or corrupt record degrades to an empty in-memory history
// rather than failing: scanning must stay usable without storage.
func (s *SessionStore) Open(ctx context.Context) error {
	data, err := s.backend.Get(ctx, s.record)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		slog.Warn("history record unreadable, starting empty", "record", s.record, "err", err)
		s.mu.Lock()
		s.persisted = false
		s.mu.Unlock()
		return nil
	}

	var history []scan.Result
	if err := json.Unmarshal(data, &history); err != nil {
		slog.Warn("history record corrupt, starting empty", "record", s.record, "err", err)
		s.mu.Lock()
		s.persisted = false
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.history = history
	s.mu.Unlock()
	return nil
}

// Close releases the backend.
func (s *SessionStore) Close() error {
	return s.backend.Close()
}

// Save assigns r an id and timestamp, appends it, and writes the history
// through to the backend. The returned slice is the full history including
// r. persisted is false when the backend write failed; the entry is still
// visible in memory for the life of the process.
func (s *SessionStore) Save(ctx context.Context, r scan.Result) (history []scan.Result, persisted bool) {
	ctx, span := storeTracer.Start(ctx, "save scan")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.newID()
	ts := s.now().UTC()
	// Timestamps are non-decreasing in append order even if the clock
	// steps backwards.
	if n := len(s.history); n > 0 && ts.Before(s.history[n-1].Timestamp) {
		ts = s.history[n-1].Timestamp
	}
	r.Timestamp = ts

	s.history = append(s.history, r)
	snapshot := s.snapshotLocked()

	span.SetAttributes(
		attribute.String("phishtrail.scan.id", r.ID),
		attribute.String("phishtrail.scan.type", r.ScanType),
		attribute.Int("phishtrail.store.records", len(s.history)),
	)

	if err := s.persistLocked(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("history write failed, result kept in memory", "id", r.ID, "err", err)
		s.persisted = false
		return snapshot, false
	}
	s.persisted = true
	return snapshot, true
}

// DeleteByID removes the entry with the given id and returns the remaining
// history. Absent ids are a no-op.
func (s *SessionStore) DeleteByID(ctx context.Context, id string) []scan.Result {
	ctx, span := storeTracer.Start(ctx, "delete scan")
	defer span.End()
	span.SetAttributes(attribute.String("phishtrail.scan.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	kept := s.history[:0]
	for _, r := range s.history {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	s.history = kept

	if found {
		if err := s.persistLocked(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("history write failed after delete", "id", id, "err", err)
			s.persisted = false
		} else {
			s.persisted = true
		}
	}
	return s.snapshotLocked()
}

// Clear empties the history and removes the persisted record.
func (s *SessionStore) Clear(ctx context.Context) []scan.Result {
	ctx, span := storeTracer.Start(ctx, "clear history")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	if err := s.backend.Delete(ctx, s.record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("history record delete failed", "record", s.record, "err", err)
		s.persisted = false
		return []scan.Result{}
	}
	s.persisted = true
	return []scan.Result{}
}

// All returns a copy of the history, oldest first.
func (s *SessionStore) All() []scan.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ByID returns the entry with the given id.
func (s *SessionStore) ByID(id string) (scan.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.history {
		if r.ID == id {
			return r, true
		}
	}
	return scan.Result{}, false
}

// Len returns the number of stored entries.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Persisted reports whether the in-memory history matches the backend. It
// turns false after a failed write or an unreadable record and recovers on
// the next successful write.
func (s *SessionStore) Persisted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// persistLocked writes the current history to the backend.
// Must be called with the lock held.
func (s *SessionStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.history)
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, s.record, data)
}

// snapshotLocked copies the history slice.
// Must be called with the lock held.
func (s *SessionStore) snapshotLocked() []scan.Result {
	out := make([]scan.Result, len(s.history))
	copy(out, s.history)
	return out
}

// Stats summarizes the stored history. An empty store yields zero values,
// never NaN.
type Stats struct {
	TotalScans         int               `json:"total_scans"`
	AverageScore       int               `json:"average_score"`
	Distribution       scan.Distribution `json:"distribution"`
	ByType             map[string]int    `json:"by_type"`
	IndicatorFrequency map[string]int    `json:"indicator_frequency"`
}

// Stats computes the aggregate view of the history.
func (s *SessionStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		// url and email are always reported, zeroed when absent. Other
		// types arrive as the remote service assigns them (qr).
		ByType:             map[string]int{"url": 0, "email": 0},
		IndicatorFrequency: map[string]int{},
	}
	st.TotalScans = len(s.history)
	if st.TotalScans == 0 {
		return st
	}

	sum, scored := 0, 0
	for _, r := range s.history {
		if v, ok := r.Score(); ok {
			sum += v
			scored++
		}
		st.Distribution.Add(r.Label)
		st.ByType[r.ScanType]++
		for _, ind := range r.Indicators {
			st.IndicatorFrequency[ind.Name]++
		}
	}
	if scored > 0 {
		st.AverageScore = int(math.Round(float64(sum) / float64(scored)))
	}
	return st
}
