package fakes

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jacobmartinez3d/log2sql/internal/models"
)

// ErrInjected is returned by a FakeEventStore method listed in Fail with a nil error.
var ErrInjected = errors.New("injected failure")

// FakeEventStore is an in-memory EventStore. Ids are assigned from 1 per table.
type FakeEventStore struct {
	mu     sync.Mutex
	users  []models.User
	levels []models.LoggingLevel
	events []models.LoggingEvent

	// Fail makes the named method (e.g. "CreateEvent") return the mapped error.
	Fail map[string]error
	// Calls records invoked method names in order.
	Calls []string
}

func NewFakeEventStore() *FakeEventStore {
	return &FakeEventStore{Fail: make(map[string]error)}
}

func (f *FakeEventStore) call(method string) error {
	f.Calls = append(f.Calls, method)
	err, ok := f.Fail[method]
	if !ok {
		return nil
	}
	if err == nil {
		return ErrInjected
	}
	return err
}

func (f *FakeEventStore) FindUserByAlias(_ context.Context, alias string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FindUserByAlias"); err != nil {
		return nil, err
	}
	for _, u := range f.users {
		if u.Alias == alias {
			cpy := u
			return &cpy, nil
		}
	}
	return nil, nil
}

func (f *FakeEventStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateUser"); err != nil {
		return err
	}
	user.ID = uint(len(f.users) + 1)
	f.users = append(f.users, *user)
	return nil
}

func (f *FakeEventStore) FindLevelByNum(_ context.Context, num int) (*models.LoggingLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FindLevelByNum"); err != nil {
		return nil, err
	}
	for _, l := range f.levels {
		if l.Num == num {
			cpy := l
			return &cpy, nil
		}
	}
	return nil, nil
}

func (f *FakeEventStore) CreateLevel(_ context.Context, level *models.LoggingLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateLevel"); err != nil {
		return err
	}
	level.ID = uint(len(f.levels) + 1)
	f.levels = append(f.levels, *level)
	return nil
}

func (f *FakeEventStore) CreateEvent(_ context.Context, event *models.LoggingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateEvent"); err != nil {
		return err
	}
	if f.userByID(event.UserID) == nil {
		return errors.New("foreign key violation: user_id")
	}
	if f.levelByID(event.LoggingLevelID) == nil {
		return errors.New("foreign key violation: logging_level_id")
	}
	event.ID = f.nextEventID()
	stored := *event
	stored.User = nil
	stored.LoggingLevel = nil
	f.events = append(f.events, stored)
	return nil
}

func (f *FakeEventStore) GetEvent(_ context.Context, id uint) (*models.LoggingEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetEvent"); err != nil {
		return nil, err
	}
	for _, e := range f.events {
		if e.ID == id {
			out := f.preload(e)
			return &out, nil
		}
	}
	return nil, nil
}

func (f *FakeEventStore) ListEvents(_ context.Context, q models.ListEventsQuery) ([]models.LoggingEvent, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListEvents"); err != nil {
		return nil, 0, err
	}
	q.Normalize()

	out := make([]models.LoggingEvent, 0)
	for _, e := range f.events {
		ev := f.preload(e)
		if q.User != "" && ev.User.Alias != q.User {
			continue
		}
		if q.Level != "" && ev.LoggingLevel.Name != q.Level {
			continue
		}
		if q.LevelNum != nil && ev.LoggingLevel.Num != *q.LevelNum {
			continue
		}
		if q.Search != "" && !strings.Contains(ev.Msg, q.Search) {
			continue
		}
		if q.CreatedAfter != nil && ev.Created < *q.CreatedAfter {
			continue
		}
		if q.CreatedBefore != nil && ev.Created >= *q.CreatedBefore {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID > out[j].ID
	})

	total := int64(len(out))
	start := (q.Page - 1) * q.Limit
	if start > len(out) {
		return []models.LoggingEvent{}, total, nil
	}
	end := start + q.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (f *FakeEventStore) ListUsers(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListUsers"); err != nil {
		return nil, err
	}
	return append([]models.User{}, f.users...), nil
}

func (f *FakeEventStore) ListLevels(_ context.Context) ([]models.LoggingLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListLevels"); err != nil {
		return nil, err
	}
	return append([]models.LoggingLevel{}, f.levels...), nil
}

func (f *FakeEventStore) DeleteEvents(_ context.Context, ids []uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteEvents"); err != nil {
		return 0, err
	}
	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return f.deleteWhere(func(e models.LoggingEvent) bool { return drop[e.ID] }), nil
}

func (f *FakeEventStore) DeleteEventsCreatedBefore(_ context.Context, cutoff float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteEventsCreatedBefore"); err != nil {
		return 0, err
	}
	return f.deleteWhere(func(e models.LoggingEvent) bool { return e.Created < cutoff }), nil
}

func (f *FakeEventStore) Stats(_ context.Context) (models.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("Stats"); err != nil {
		return models.Stats{}, err
	}
	stats := models.Stats{
		Users:         int64(len(f.users)),
		Levels:        int64(len(f.levels)),
		Events:        int64(len(f.events)),
		EventsByLevel: make(map[string]int64),
	}
	for _, e := range f.events {
		if l := f.levelByID(e.LoggingLevelID); l != nil {
			stats.EventsByLevel[l.Name]++
		}
	}
	return stats, nil
}

// Users returns a snapshot of stored users.
func (f *FakeEventStore) Users() []models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User{}, f.users...)
}

// Levels returns a snapshot of stored levels.
func (f *FakeEventStore) Levels() []models.LoggingLevel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.LoggingLevel{}, f.levels...)
}

// Events returns a snapshot of stored events without preloaded relations.
func (f *FakeEventStore) Events() []models.LoggingEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.LoggingEvent{}, f.events...)
}

func (f *FakeEventStore) preload(e models.LoggingEvent) models.LoggingEvent {
	if u := f.userByID(e.UserID); u != nil {
		cpy := *u
		e.User = &cpy
	}
	if l := f.levelByID(e.LoggingLevelID); l != nil {
		cpy := *l
		e.LoggingLevel = &cpy
	}
	return e
}

func (f *FakeEventStore) userByID(id uint) *models.User {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i]
		}
	}
	return nil
}

func (f *FakeEventStore) levelByID(id uint) *models.LoggingLevel {
	for i := range f.levels {
		if f.levels[i].ID == id {
			return &f.levels[i]
		}
	}
	return nil
}

func (f *FakeEventStore) nextEventID() uint {
	var last uint
	for _, e := range f.events {
		if e.ID > last {
			last = e.ID
		}
	}
	return last + 1
}

func (f *FakeEventStore) deleteWhere(match func(models.LoggingEvent) bool) int64 {
	kept := f.events[:0]
	var deleted int64
	for _, e := range f.events {
		if match(e) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	f.events = kept
	return deleted
}
