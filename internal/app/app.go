package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/hrnotify/internal/pkg/clock"
	"github.com/shandysiswandi/hrnotify/internal/pkg/config"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goroutine"
	"github.com/shandysiswandi/hrnotify/internal/pkg/idempotency"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/jwt"
	"github.com/shandysiswandi/hrnotify/internal/pkg/mail"
	"github.com/shandysiswandi/hrnotify/internal/pkg/messaging"
	"github.com/shandysiswandi/hrnotify/internal/pkg/router"
	"github.com/shandysiswandi/hrnotify/internal/pkg/uid"
	"github.com/shandysiswandi/hrnotify/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     *idempotency.StateTracker
	mail      mail.Mail
	messaging messaging.Messaging
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
