package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
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

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          true,
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.nonce = snow

	cipher, err := vault.NewCipher(a.config.GetString("vault.master_password"))
	if err != nil {
		slog.Error("failed to init secret vault", "error", err)
		os.Exit(1)
	}
	a.vault = cipher

	a.otp = otpcode.NewEngine(
		a.config.GetString("otp.issuer"),
		a.config.GetUint64("otp.period_seconds"),
	)
}

func (a *App) initDatabase() {
	driver := strings.TrimSpace(a.config.GetString("database.driver"))
	if driver == "memory" {
		slog.Warn("using in-memory account store, registrations will not survive restarts")
		return
	}

	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

// initOracle compiles the authorization circuit and runs the trusted setup.
// This is the slowest part of boot, a few seconds of constraint compilation.
func (a *App) initOracle() {
	started := time.Now()

	oracle, err := zkp.NewGroth16Oracle()
	if err != nil {
		slog.Error("failed to init proving oracle", "error", err)
		os.Exit(1)
	}

	a.oracle = oracle
	a.assembler = zkp.NewAssembler(oracle, oracle)
	a.provePool = zkp.NewPool(a.config.GetInt("zkp.prove_pool"))

	slog.Info("proving oracle ready", "took", time.Since(started).String())
}

func (a *App) initLedger() {
	registry := ledger.NewCallRegistry()
	registry.SetFallback(ledger.LogCall)

	opts := []ledger.Option{}
	if admin := a.config.GetString("ledger.admin"); admin != "" {
		opts = append(opts, ledger.WithAdmin(admin))
	}
	if window := a.config.GetUint64("ledger.nonce_window_steps"); window > 0 {
		opts = append(opts, ledger.WithNonceWindow(window))
	}

	routine := ledger.NewRoutine(a.config.GetString("ledger.owner"), a.oracle, registry.Call, opts...)
	gate := ledger.NewGate(a.oracle)

	a.ledgerHost = ledger.NewHost(routine, gate)

	slog.Info("ledger routine ready",
		"owner", a.config.GetString("ledger.owner"), "targets", registry.Targets())
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	a.router.GET("/health", func(_ *router.Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
