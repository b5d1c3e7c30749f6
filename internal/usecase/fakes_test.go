package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/pkg/logger"
)

// nopLogger keeps test output quiet
type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Fatal(msg string, keysAndValues ...interface{}) {}
func (nopLogger) With(keysAndValues ...interface{}) logger.Logger {
	return nopLogger{}
}

// fakeCalendar is an in-memory calendar with per-key error injection. It
// records every remote call in order so tests can assert call counts and
// delete-before-create ordering.
type fakeCalendar struct {
	mu     sync.Mutex
	nextID int
	events map[string]entity.TimetableEvent // externalID -> event
	calls  []string
	failOn map[string]error // identityKey (create/update) or externalID (delete) -> injected error
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		events: make(map[string]entity.TimetableEvent),
		failOn: make(map[string]error),
	}
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, calendarID string, event entity.TimetableEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create:"+event.IdentityKey)
	if err, ok := f.failOn[event.IdentityKey]; ok {
		return "", err
	}
	f.nextID++
	externalID := fmt.Sprintf("ext-%d", f.nextID)
	f.events[externalID] = event
	return externalID, nil
}

func (f *fakeCalendar) UpdateEvent(ctx context.Context, calendarID, externalEventID string, event entity.TimetableEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update:"+event.IdentityKey)
	if err, ok := f.failOn[event.IdentityKey]; ok {
		return err
	}
	if _, ok := f.events[externalEventID]; !ok {
		return &entity.RemoteError{Op: "update", Err: errors.New("no such event"), Transient: false}
	}
	f.events[externalEventID] = event
	return nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, calendarID, externalEventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+externalEventID)
	if err, ok := f.failOn[externalEventID]; ok {
		return err
	}
	if _, ok := f.events[externalEventID]; !ok {
		return entity.ErrRemoteNotFound
	}
	delete(f.events, externalEventID)
	return nil
}

// memMappingRepo is an in-memory MappingRepository
type memMappingRepo struct {
	mu      sync.Mutex
	entries map[string]map[string]string // timetableKey -> identityKey -> externalID
}

func newMemMappingRepo() *memMappingRepo {
	return &memMappingRepo{entries: make(map[string]map[string]string)}
}

func (r *memMappingRepo) GetAll(ctx context.Context, timetableKey string) (entity.CalendarMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mapping := make(entity.CalendarMapping)
	for k, v := range r.entries[timetableKey] {
		mapping[k] = v
	}
	return mapping, nil
}

func (r *memMappingRepo) Upsert(ctx context.Context, timetableKey, identityKey, externalEventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[timetableKey] == nil {
		r.entries[timetableKey] = make(map[string]string)
	}
	r.entries[timetableKey][identityKey] = externalEventID
	return nil
}

func (r *memMappingRepo) Delete(ctx context.Context, timetableKey, identityKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries[timetableKey], identityKey)
	return nil
}

// memVersionRepo is an in-memory VersionRepository
type memVersionRepo struct {
	mu     sync.Mutex
	latest map[string]*entity.VersionRecord
	audit  []entity.VersionRecord
}

func newMemVersionRepo() *memVersionRepo {
	return &memVersionRepo{latest: make(map[string]*entity.VersionRecord)}
}

func (r *memVersionRepo) GetLatest(ctx context.Context, timetableKey string) (*entity.VersionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.latest[timetableKey]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (r *memVersionRepo) SaveLatest(ctx context.Context, record *entity.VersionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.latest[record.TimetableKey] = &copied
	return nil
}

func (r *memVersionRepo) AppendAudit(ctx context.Context, record *entity.VersionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audit = append(r.audit, *record)
	return nil
}

func (r *memVersionRepo) LatestVersionTimestamp(ctx context.Context, timetableKey string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.latest[timetableKey]; ok {
		return record.VersionTimestamp, nil
	}
	return time.Time{}, nil
}

// testEvent builds a normalized event for the Berlin timetable fixtures
func testEvent(t time.Time, startHour int, subject, room string) entity.TimetableEvent {
	start := time.Date(t.Year(), t.Month(), t.Day(), startHour, 0, 0, 0, t.Location())
	return entity.TimetableEvent{
		Subject:   subject,
		Keyword:   "ELM 3",
		Date:      time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()),
		StartTime: start,
		EndTime:   start.Add(90 * time.Minute),
		Room:      room,
	}.WithIdentityKey()
}

func transientErr(op string) error {
	return &entity.RemoteError{Op: op, Err: errors.New("503 backend error"), Transient: true}
}

func permanentErr(op string) error {
	return &entity.RemoteError{Op: op, Err: errors.New("400 invalid payload"), Transient: false}
}
