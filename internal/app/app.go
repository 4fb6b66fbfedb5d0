package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/zkotp-io/zkotp/internal/ledger"
	"github.com/zkotp-io/zkotp/internal/pkg/clock"
	"github.com/zkotp-io/zkotp/internal/pkg/config"
	"github.com/zkotp-io/zkotp/internal/pkg/goroutine"
	"github.com/zkotp-io/zkotp/internal/pkg/idempotency"
	"github.com/zkotp-io/zkotp/internal/pkg/instrument"
	"github.com/zkotp-io/zkotp/internal/pkg/otpcode"
	"github.com/zkotp-io/zkotp/internal/pkg/router"
	"github.com/zkotp-io/zkotp/internal/pkg/uid"
	"github.com/zkotp-io/zkotp/internal/pkg/validator"
	"github.com/zkotp-io/zkotp/internal/pkg/vault"
	"github.com/zkotp-io/zkotp/internal/zkp"
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
	nonce     uid.NumberID
	uuid      uid.StringID
	vault     *vault.Cipher
	otp       *otpcode.Engine

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency

	// proving oracle and ledger
	oracle     *zkp.Groth16Oracle
	assembler  *zkp.Assembler
	provePool  *zkp.Pool
	ledgerHost *ledger.Host

	// server
	router     *router.Router
	httpServer *http.Server

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
	app.initDatabase()
	app.initCache()
	app.initOracle()
	app.initLedger()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
