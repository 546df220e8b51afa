package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/clock"
	"github.com/shandysiswandi/hrnotify/internal/pkg/config"
	"github.com/shandysiswandi/hrnotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/uid"
	"github.com/shandysiswandi/hrnotify/internal/pkg/validator"
	"github.com/shandysiswandi/hrnotify/internal/shared/event"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetPreference(ctx context.Context, userID int64) (*entity.UserPreference, error)
	UpsertPreference(ctx context.Context, pref entity.UserPreference) error

	GetContact(ctx context.Context, userID int64) (*entity.Contact, error)
	UpsertContact(ctx context.Context, c entity.Contact) error
	RegisterDevice(ctx context.Context, d entity.Device) error
	RemoveDevice(ctx context.Context, userID int64, token string) (bool, error)

	CreateNotificationWithRecords(ctx context.Context, n entity.Notification, records []entity.DeliveryRecord) error
	GetNotification(ctx context.Context, id int64) (*entity.Notification, error)
	Transition(ctx context.Context, id int64, from, to entity.DeliveryState, fields entity.TransitionFields) (bool, error)
	ListReadyDeliveries(ctx context.Context, now time.Time, limit int) ([]entity.DeliveryRecord, error)
	ListStaleSending(ctx context.Context, before time.Time, limit int) ([]entity.DeliveryRecord, error)
	ListDeliveries(ctx context.Context, notificationID int64) ([]entity.DeliveryRecord, error)

	ListRecent(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]entity.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
}

// repoCache is a read-through cache in front of preferences. A miss is (nil, nil).
type repoCache interface {
	GetPreference(ctx context.Context, userID int64) (*entity.UserPreference, error)
	SetPreference(ctx context.Context, pref entity.UserPreference) error
	DeletePreference(ctx context.Context, userID int64) error
}

type repoMQ interface {
	PublishDeliveryUpdated(ctx context.Context, msg event.DeliveryUpdatedMessage) error
}

// gateway sends one message over msg.Channel.
type gateway interface {
	Send(ctx context.Context, msg entity.OutboundMessage) error
}

type streamHub interface {
	Subscribe(ctx context.Context, userID int64) <-chan entity.OutboundMessage
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

// Dependency lists what New needs. Optional parts may be nil.
type Dependency struct {
	RepoDB     repoDB
	RepoCache  repoCache
	RepoMQ     repoMQ
	Gateway    gateway
	Stream     streamHub
	Guard      idempotency.Guard
	Enforcer   enforcer
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

// DispatchConfig bounds retries and recovery of the dispatcher.
type DispatchConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	LockTTL     time.Duration
	DoneTTL     time.Duration
	StaleAfter  time.Duration
	BatchSize   int
}

func (c DispatchConfig) withDefaults() DispatchConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 30 * time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Minute
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 2 * time.Minute
	}
	if c.DoneTTL <= 0 {
		c.DoneTTL = 24 * time.Hour
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 5 * time.Minute
	}
	if c.BatchSize < 1 {
		c.BatchSize = 100
	}
	return c
}

// Usecase implements the notification operations for HTTP, bus and worker callers.
type Usecase struct {
	repoDB    repoDB
	repoCache repoCache
	repoMQ    repoMQ
	gateway   gateway
	stream    streamHub
	guard     idempotency.Guard
	enforcer  enforcer
	uid       uid.NumberID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
	cfg       DispatchConfig

	wake chan struct{}

	sentCounter    metric.Int64Counter
	failedCounter  metric.Int64Counter
	retriedCounter metric.Int64Counter
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:    dep.RepoDB,
		repoCache: dep.RepoCache,
		repoMQ:    dep.RepoMQ,
		gateway:   dep.Gateway,
		stream:    dep.Stream,
		guard:     dep.Guard,
		enforcer:  dep.Enforcer,
		uid:       dep.UID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		wake:      make(chan struct{}, 1),
	}

	if cfg := dep.Config; cfg != nil {
		s.cfg = DispatchConfig{
			MaxAttempts: cfg.GetInt("modules.notification.dispatcher.max_attempts"),
			BaseDelay:   cfg.GetSecond("modules.notification.dispatcher.base_delay_seconds"),
			MaxDelay:    cfg.GetSecond("modules.notification.dispatcher.max_delay_seconds"),
			LockTTL:     cfg.GetSecond("modules.notification.dispatcher.lock_ttl_seconds"),
			DoneTTL:     cfg.GetMinute("modules.notification.dispatcher.done_ttl_minutes"),
			StaleAfter:  cfg.GetSecond("modules.notification.dispatcher.stale_after_seconds"),
			BatchSize:   cfg.GetInt("modules.notification.dispatcher.batch_size"),
		}
	}
	s.cfg = s.cfg.withDefaults()

	meter := s.ins.Meter("notification.usecase")
	s.sentCounter = counter(meter, "notification.delivery.sent", "Deliveries that reached sent")
	s.failedCounter = counter(meter, "notification.delivery.failed", "Deliveries that failed permanently")
	s.retriedCounter = counter(meter, "notification.delivery.retried", "Delivery failures scheduled for retry")

	return s
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Error("failed to create counter", "name", name, "error", err)
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// Wakeups fires after Submit stores records that are ready now.
func (s *Usecase) Wakeups() <-chan struct{} {
	return s.wake
}

func (s *Usecase) signalWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
