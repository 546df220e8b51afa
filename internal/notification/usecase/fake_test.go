package usecase

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/clock"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
	"github.com/shandysiswandi/hrnotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/jwt"
	"github.com/shandysiswandi/hrnotify/internal/pkg/validator"
	"github.com/shandysiswandi/hrnotify/internal/shared/event"
)

type memRepo struct {
	mu            sync.Mutex
	prefs         map[int64]entity.UserPreference
	contacts      map[int64]entity.Contact
	devices       map[int64][]entity.Device
	notifications map[int64]entity.Notification
	records       map[int64]entity.DeliveryRecord
	claims        int
}

func newMemRepo() *memRepo {
	return &memRepo{
		prefs:         map[int64]entity.UserPreference{},
		contacts:      map[int64]entity.Contact{},
		devices:       map[int64][]entity.Device{},
		notifications: map[int64]entity.Notification{},
		records:       map[int64]entity.DeliveryRecord{},
	}
}

func (m *memRepo) GetPreference(_ context.Context, userID int64) (*entity.UserPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &p, nil
}

func (m *memRepo) UpsertPreference(_ context.Context, pref entity.UserPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[pref.UserID] = pref
	return nil
}

func (m *memRepo) GetContact(_ context.Context, userID int64) (*entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &c, nil
}

func (m *memRepo) UpsertContact(_ context.Context, c entity.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[c.UserID] = c
	return nil
}

func (m *memRepo) RegisterDevice(_ context.Context, d entity.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[d.UserID] = append(m.devices[d.UserID], d)
	return nil
}

func (m *memRepo) RemoveDevice(_ context.Context, userID int64, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.devices[userID])
	m.devices[userID] = slices.DeleteFunc(m.devices[userID], func(d entity.Device) bool { return d.Token == token })
	return len(m.devices[userID]) < before, nil
}

func (m *memRepo) CreateNotificationWithRecords(_ context.Context, n entity.Notification, records []entity.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = n
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *memRepo) GetNotification(_ context.Context, id int64) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &n, nil
}

func (m *memRepo) Transition(_ context.Context, id int64, from, to entity.DeliveryState, f entity.TransitionFields) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.State != from || !entity.CanTransition(from, to) {
		return false, nil
	}
	if f.ExpectAttempt != nil && r.AttemptCount != *f.ExpectAttempt {
		return false, nil
	}
	if r.State == entity.DeliveryStateFailed && (r.NextRetryAt == nil || (!f.At.IsZero() && r.NextRetryAt.After(f.At))) {
		return false, nil
	}
	if to == entity.DeliveryStateSending {
		m.claims++
	}
	r.State = to
	if !f.At.IsZero() {
		r.UpdatedAt = f.At
	}
	if f.AttemptCount != nil {
		r.AttemptCount = *f.AttemptCount
	}
	if f.LastError != nil {
		r.LastError = *f.LastError
	}
	if f.ClearNextRetry {
		r.NextRetryAt = nil
	}
	if f.NextRetryAt != nil {
		r.NextRetryAt = f.NextRetryAt
	}
	if f.SentAt != nil {
		r.SentAt = f.SentAt
	}
	m.records[id] = r
	return true, nil
}

func (m *memRepo) ListReadyDeliveries(_ context.Context, now time.Time, limit int) ([]entity.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.DeliveryRecord
	for _, r := range m.records {
		switch {
		case (r.State == entity.DeliveryStateQueued || r.State == entity.DeliveryStateDeferred) && !r.ScheduledFor.After(now):
		case r.State == entity.DeliveryStateFailed && r.NextRetryAt != nil && !r.NextRetryAt.After(now):
		default:
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b entity.DeliveryRecord) int { return int(a.ID - b.ID) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) ListStaleSending(_ context.Context, before time.Time, limit int) ([]entity.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.DeliveryRecord
	for _, r := range m.records {
		if r.State == entity.DeliveryStateSending && r.UpdatedAt.Before(before) {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) ListDeliveries(_ context.Context, notificationID int64) ([]entity.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.DeliveryRecord
	for _, r := range m.records {
		if r.NotificationID == notificationID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) ListRecent(_ context.Context, userID int64, unreadOnly bool, limit int) ([]entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && n.InApp && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) UnreadCount(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.notifications {
		if item.UserID == userID && item.InApp && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) MarkRead(_ context.Context, userID, id int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	if !n.IsRead {
		n.IsRead, n.ReadAt = true, &at
		m.notifications[id] = n
	}
	return true, nil
}

func (m *memRepo) MarkAllRead(_ context.Context, userID int64, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &at
			m.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (m *memRepo) record(id int64) entity.DeliveryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

func (m *memRepo) put(r entity.DeliveryRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
}

type fakeCache struct {
	mu      sync.Mutex
	prefs   map[int64]entity.UserPreference
	deleted []int64
}

func (c *fakeCache) GetPreference(_ context.Context, userID int64) (*entity.UserPreference, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *fakeCache) SetPreference(_ context.Context, pref entity.UserPreference) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prefs == nil {
		c.prefs = map[int64]entity.UserPreference{}
	}
	c.prefs[pref.UserID] = pref
	return nil
}

func (c *fakeCache) DeletePreference(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.prefs, userID)
	c.deleted = append(c.deleted, userID)
	return nil
}

type fakeMQ struct {
	mu     sync.Mutex
	events []event.DeliveryUpdatedMessage
}

func (f *fakeMQ) PublishDeliveryUpdated(_ context.Context, msg event.DeliveryUpdatedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls map[entity.Channel]int
	err   func(entity.OutboundMessage) error
	hold  chan struct{}
}

func (g *fakeGateway) Send(_ context.Context, msg entity.OutboundMessage) error {
	if g.hold != nil {
		<-g.hold
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = map[entity.Channel]int{}
	}
	g.calls[msg.Channel]++
	if g.err != nil {
		return g.err(msg)
	}
	return nil
}

func (g *fakeGateway) count(ch entity.Channel) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[ch]
}

type fakeGuard struct {
	mu        sync.Mutex
	state     idempotency.State
	completed []string
	released  []string
}

func (g *fakeGuard) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == "" {
		return idempotency.StateNone, nil
	}
	return g.state, nil
}

func (g *fakeGuard) MarkCompleted(_ context.Context, key string, _ time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed = append(g.completed, key)
	return nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = append(g.released, key)
	return nil
}

type fakeEnforcer struct{ allow bool }

func (f fakeEnforcer) Enforce(...any) (bool, error) { return f.allow, nil }

type seqID struct{ n atomic.Int64 }

func (s *seqID) Generate() int64 { return s.n.Add(1) }

type fixture struct {
	uc      *Usecase
	repo    *memRepo
	cache   *fakeCache
	mq      *fakeMQ
	gateway *fakeGateway
	guard   *fakeGuard
	clock   *clock.Fixed
}

// monday2330 is Monday 2026-03-02 23:30 UTC.
var monday2330 = time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, enforcer enforcer) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	f := &fixture{
		repo:    newMemRepo(),
		cache:   &fakeCache{},
		mq:      &fakeMQ{},
		gateway: &fakeGateway{},
		guard:   &fakeGuard{},
		clock:   clock.NewFixed(monday2330),
	}
	f.uc = New(Dependency{
		RepoDB:     f.repo,
		RepoCache:  f.cache,
		RepoMQ:     f.mq,
		Gateway:    f.gateway,
		Guard:      f.guard,
		Enforcer:   enforcer,
		UID:        &seqID{},
		Clock:      f.clock,
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})
	return f
}

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{
		RegisteredClaims: libJWT.RegisteredClaims{Subject: strconv.FormatInt(userID, 10)},
		UserID:           userID,
	})
}

func errCode(err error) goerror.Code {
	var ge *goerror.Error
	if errors.As(err, &ge) {
		return ge.Code()
	}
	return goerror.CodeInternal
}
