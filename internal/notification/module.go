package notification

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/notification/inbound"
	"github.com/shandysiswandi/hrnotify/internal/notification/outbound/cache"
	"github.com/shandysiswandi/hrnotify/internal/notification/outbound/db"
	"github.com/shandysiswandi/hrnotify/internal/notification/outbound/gateway"
	"github.com/shandysiswandi/hrnotify/internal/notification/outbound/mq"
	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
	"github.com/shandysiswandi/hrnotify/internal/pkg/clock"
	"github.com/shandysiswandi/hrnotify/internal/pkg/config"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goroutine"
	"github.com/shandysiswandi/hrnotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/mail"
	"github.com/shandysiswandi/hrnotify/internal/pkg/messaging"
	"github.com/shandysiswandi/hrnotify/internal/pkg/router"
	"github.com/shandysiswandi/hrnotify/internal/pkg/uid"
	"github.com/shandysiswandi/hrnotify/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool
	CacheConn   redis.UniversalClient
	Idempotency idempotency.Guard
	Messaging   messaging.Messaging
	Mail        mail.Mail
	Config      config.Config
	Instrument  instrument.Instrumentation
	UID         uid.NumberID
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Router      *router.Router
	Enforcer    router.Enforcer
}

func New(dep Dependency) error {
	dbNotif := db.NewDB(dep.DBConn, dep.Instrument)
	if dep.Config.GetBool("modules.notification.migrate") {
		if err := dbNotif.Migrate(dep.Ctx); err != nil {
			return err
		}
	}

	cacheNotif := cache.New(dep.CacheConn, dep.Config.GetMinute("modules.notification.preference_cache_ttl_minutes"), dep.Instrument)
	mqNotif := mq.NewMessaging(dep.Messaging, dep.Instrument)

	hub := gateway.NewHub(dep.Config.GetInt("modules.notification.stream_buffer"))
	gateways, err := newGateways(dep, hub)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbNotif,
		RepoCache:  cacheNotif,
		RepoMQ:     mqNotif,
		Gateway:    gateways,
		Stream:     hub,
		Guard:      dep.Idempotency,
		Enforcer:   dep.Enforcer,
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Enforcer)
	if dep.Ctx == nil {
		return nil
	}

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	worker := inbound.NewWorker(uc, inbound.WorkerConfig{
		Workers:      dep.Config.GetInt("modules.notification.dispatcher.workers"),
		PollInterval: dep.Config.GetMillisecond("modules.notification.dispatcher.poll_interval_ms"),
	})
	dep.Goroutine.Go(dep.Ctx, worker.Run)

	scheduler, err := inbound.RegisterCron(dep.Config, uc, worker, dep.UUID)
	if err != nil {
		return err
	}
	dep.Goroutine.Go(dep.Ctx, func(ctx context.Context) error {
		scheduler.Start()
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return hub.Close()
	})

	return nil
}

// newGateways registers a provider per configured channel. In-app is always
// available; a channel without a provider fails its deliveries permanently.
func newGateways(dep Dependency, hub *gateway.Hub) (*gateway.Registry, error) {
	reg := gateway.NewRegistry(dep.Instrument)
	reg.Register(entity.ChannelInApp, hub)

	if dep.Mail != nil {
		reg.Register(entity.ChannelEmail, gateway.NewEmail(dep.Mail, dep.Config.GetString("modules.notification.email.subject_prefix")))
	}

	if sms := gateway.NewSMS(gateway.SMSConfig{
		Endpoint:   dep.Config.GetString("modules.notification.sms.endpoint"),
		AccountSID: dep.Config.GetString("modules.notification.sms.account_sid"),
		AuthToken:  dep.Config.GetString("modules.notification.sms.auth_token"),
		From:       dep.Config.GetString("modules.notification.sms.from"),
		Timeout:    dep.Config.GetSecond("modules.notification.sms.timeout_seconds"),
	}); sms != nil {
		reg.Register(entity.ChannelSMS, sms)
	}

	push, err := gateway.NewPush(gateway.PushConfig{
		Token: dep.Config.GetString("modules.notification.push.telegram_token"),
		URL:   dep.Config.GetString("modules.notification.push.telegram_url"),
	})
	if err != nil {
		return nil, err
	}
	if push != nil {
		reg.Register(entity.ChannelPush, push)
	}

	for _, ch := range entity.Channels {
		if !reg.Configured(ch) {
			slog.Warn("notification channel has no provider", "channel", ch.String())
		}
	}

	return reg, nil
}
