package demo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/utafrali/checkout-go/api"
	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/component"
	"github.com/utafrali/checkout-go/delegate"
	"github.com/utafrali/checkout-go/pkg/database"
	"github.com/utafrali/checkout-go/pkg/httpclient"
	"github.com/utafrali/checkout-go/pkg/kafka"
	"github.com/utafrali/checkout-go/pkg/logger"
	"github.com/utafrali/checkout-go/pkg/tracing"
	"github.com/utafrali/checkout-go/redirect"
	"github.com/utafrali/checkout-go/sessions"
	"github.com/utafrali/checkout-go/status"
	"github.com/utafrali/checkout-go/store"
	postgresstore "github.com/utafrali/checkout-go/store/postgres"
	redisstore "github.com/utafrali/checkout-go/store/redis"
)

// App wires a checkout component, its session handler and the HTTP server
// around them.
type App struct {
	cfg    *Config
	logger *slog.Logger

	component *component.Component
	handler   *sessions.Handler

	httpServer      *http.Server
	producer        *kafka.Producer
	tracingShutdown func(context.Context) error
	closers         []func() error
	healthChecks    map[string]func(context.Context) error

	mu          sync.Mutex
	redirectURL string
	lastResult  *checkout.SessionPaymentResult
	lastErr     error
}

// NewApp assembles all application dependencies.
func NewApp(ctx context.Context, cfg *Config, log *slog.Logger) (*App, error) {
	a := &App{
		cfg:          cfg,
		logger:       log,
		healthChecks: make(map[string]func(context.Context) error),
	}

	if cfg.TracingEnabled {
		tcfg := tracing.DefaultConfig("checkoutdemo")
		tcfg.Environment = cfg.Environment
		tcfg.OTLPEndpoint = cfg.TracingEndpoint
		tcfg.SampleRate = cfg.TracingSample
		tcfg.Enabled = true
		shutdown, err := tracing.InitTracer(ctx, tcfg)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		a.tracingShutdown = shutdown
	}

	state, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	base := httpclient.New(httpclient.DefaultConfig())
	breaker := httpclient.NewCircuitBreakerClient(
		base, httpclient.DefaultCircuitBreakerConfig("checkout-api"), log)
	client := api.NewClient(breaker, cfg.APIConfig(), log)

	// The status lookup is idempotent, so it alone gets retries.
	// MaxRetries counts retries after the first attempt: 3 attempts total.
	statusCfg := httpclient.DefaultConfig()
	statusCfg.MaxRetries = 2
	statusClient := api.NewClient(httpclient.New(statusCfg), cfg.APIConfig(), log)

	poller := status.NewPoller(statusClient, status.Config{}, log)
	dispatcher := redirect.NewDispatcher(redirect.LauncherFunc(a.launchRedirect), log)

	action := delegate.NewGenericActionDelegate(map[checkout.ActionType]delegate.ActionDelegate{
		checkout.ActionTypeRedirect: delegate.NewRedirectActionDelegate(dispatcher, log),
		checkout.ActionTypeAwait:    delegate.NewAwaitDelegate(poller, log),
		checkout.ActionTypeQRCode:   delegate.NewQRCodeDelegate(poller, log),
		checkout.ActionTypeVoucher:  delegate.NewVoucherDelegate(log),
	}, state, log)

	payment := delegate.NewDefaultPaymentDelegate(checkout.PaymentComponentData{
		ReturnURL: cfg.ReturnURL,
	}, log)

	model := checkout.SessionModel{ID: cfg.SessionID, SessionData: cfg.SessionData}
	repo := sessions.NewAPIRepository(client)
	interactor := sessions.NewInteractor(repo, model, noTakeover{}, log)

	handler := sessions.NewHandler(interactor, a, state, log)
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
		a.producer = producer
		a.closers = append(a.closers, producer.Close)
		handler = handler.WithPublisher(producer, cfg.KafkaTopic)
	}
	a.handler = handler
	a.component = component.New(payment, action, handler, log)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return a, nil
}

func (a *App) buildStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.StateBackend {
	case BackendRedis:
		s, err := redisstore.New(ctx, a.cfg.RedisConfig())
		if err != nil {
			return nil, fmt.Errorf("connect redis store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		a.healthChecks["redis"] = s.Ping
		return s, nil
	case BackendPostgres:
		pcfg := database.DefaultPostgresConfig()
		pcfg.Host = a.cfg.PostgresHost
		pcfg.Port = a.cfg.PostgresPort
		pcfg.User = a.cfg.PostgresUser
		pcfg.Password = a.cfg.PostgresPass
		pcfg.DBName = a.cfg.PostgresDB
		pcfg.SSLMode = a.cfg.PostgresSSL
		pool, err := database.NewPostgresPool(ctx, &pcfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres store: %w", err)
		}
		database.RegisterPoolMetrics(pool, "checkoutdemo")
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.healthChecks["postgres"] = pool.Ping
		return postgresstore.NewFromPool(pool), nil
	default:
		return store.NewMemory(), nil
	}
}

// launchRedirect records the URL the shopper must visit. A browser-based host
// would open it; the demo exposes it on the status endpoint instead.
func (a *App) launchRedirect(ctx context.Context, u *url.URL) error {
	a.mu.Lock()
	a.redirectURL = u.String()
	a.mu.Unlock()
	logger.FromContext(ctx).Info("redirect required", "url", u.String())
	return nil
}

// Run starts the HTTP server, restores any interrupted checkout and blocks
// until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	scope, cancel := context.WithCancel(ctx)
	defer cancel()

	a.component.Initialize(scope)
	a.handler.Restore(scope)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	a.logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", "error", err)
	}
	a.component.Teardown()
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Error("close dependency failed", "error", err)
		}
	}
	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown failed", "error", err)
		}
	}
	return nil
}

// noTakeover leaves every session flow to the built-in session handler.
type noTakeover struct{}

func (noTakeover) OnSubmit(checkout.ComponentState) bool { return false }

func (noTakeover) OnAdditionalDetails(checkout.ActionComponentData) bool { return false }

// The app itself is the session callback: terminal outcomes land on the
// status endpoint.

func (a *App) OnStateChanged(state checkout.ComponentState) {
	a.logger.Debug("component state changed",
		"valid", state.IsInputValid, "ready", state.IsReady)
}

func (a *App) OnLoading(loading bool) {
	a.logger.Debug("loading", "loading", loading)
}

func (a *App) OnFinished(result checkout.SessionPaymentResult) {
	a.mu.Lock()
	a.lastResult = &result
	a.lastErr = nil
	a.mu.Unlock()
	a.logger.Info("payment finished",
		"session_id", result.SessionID, "result_code", result.ResultCode)
}

func (a *App) OnError(err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
	a.logger.Error("payment failed", "error", err)
}
