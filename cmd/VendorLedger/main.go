package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	database "github.com/sebuszqo/VendorLedger/db"
	"github.com/sebuszqo/VendorLedger/internal/auth"
	"github.com/sebuszqo/VendorLedger/internal/config"
	"github.com/sebuszqo/VendorLedger/internal/identity"
	"github.com/sebuszqo/VendorLedger/internal/ledger/application"
	"github.com/sebuszqo/VendorLedger/internal/ledger/domain"
	"github.com/sebuszqo/VendorLedger/internal/ledger/infrastructure"
	"github.com/sebuszqo/VendorLedger/internal/ledger/infrastructure/memory"
	"github.com/sebuszqo/VendorLedger/internal/ledger/interfaces"
	"github.com/sebuszqo/VendorLedger/internal/metrics"
	"github.com/sebuszqo/VendorLedger/internal/response"
	"github.com/sebuszqo/VendorLedger/internal/views"
)

type repositories struct {
	accounts domain.AccountRepository
	vendors  domain.VendorRepository
	payments domain.PaymentRepository
	health   func(ctx context.Context) map[string]string
	close    func() error
}

func openPostgres(ctx context.Context, cfg *config.Config) (*repositories, error) {
	dbService, err := database.NewDBService(ctx, cfg.DBConnectionString)
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := dbService.Migrate(ctx); err != nil {
			dbService.Close()
			return nil, err
		}
	}
	return &repositories{
		accounts: infrastructure.NewAccountRepository(dbService.DB),
		vendors:  infrastructure.NewVendorRepository(dbService.DB),
		payments: infrastructure.NewPaymentRepository(dbService.DB),
		health:   dbService.Health,
		close:    dbService.Close,
	}, nil
}

func openMemory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	store := memory.NewStore()
	for _, seed := range cfg.SeedAccounts {
		account := domain.Account{Name: seed.Name, Balance: seed.Balance}
		if err := store.Accounts().Save(ctx, &account); err != nil {
			return nil, fmt.Errorf("could not seed account %q: %w", seed.Name, err)
		}
		logger.Info("Seeded account", "account_id", account.ID, "name", account.Name, "balance", account.Balance.String())
	}
	return &repositories{
		accounts: store.Accounts(),
		vendors:  store.Vendors(),
		payments: store.Payments(),
		health: func(context.Context) map[string]string {
			return map[string]string{"status": "up", "message": "in-memory store"}
		},
		close: func() error { return nil },
	}, nil
}

func NewServer(cfg *config.Config, repos *repositories, provider identity.Provider, collector *metrics.MetricsCollector, logger *slog.Logger) (*Server, *application.PaymentService, error) {
	responder := response.NewResponder(cfg.ExposeErrors, logger)

	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, nil, err
	}

	paymentService := application.NewPaymentService(repos.payments, repos.accounts, repos.vendors, application.Options{
		BalanceRetries:        cfg.BalanceRetries,
		RefundPendingOnDelete: cfg.RefundPendingOnDelete,
		Metrics:               collector,
		Logger:                logger,
	})
	accountService := application.NewAccountService(repos.accounts)
	vendorService := application.NewVendorService(repos.vendors)
	reportService := application.NewReportService(paymentService, accountService)

	authMiddleware := func(next http.Handler) http.Handler { return next }
	if cfg.AuthRequired {
		verifier := identity.NewTokenVerifier(provider, cfg.SupabaseJWTSecret)
		authMiddleware = auth.Middleware(verifier, responder.Error, logger)
	} else {
		logger.Warn("AUTH_REQUIRED is false, ledger routes are served without authentication")
	}

	server := &Server{
		responder:      responder,
		logger:         logger,
		metrics:        collector,
		authHandler:    auth.NewHandler(provider, renderer, responder.JSON, responder.Error, logger),
		authMiddleware: authMiddleware,
		vendorHandler:  interfaces.NewVendorHandler(vendorService, responder.JSON, responder.Error),
		accountHandler: interfaces.NewAccountHandler(accountService, reportService, responder.JSON, responder.Error),
		paymentHandler: interfaces.NewPaymentHandler(paymentService, responder.JSON, responder.Error),
		health:         repos.health,
		requestTimeout: cfg.RequestTimeout,
		corsOrigin:     cfg.CORSAllowedOrigin,
	}
	server.RegisterRoutes()
	return server, paymentService, nil
}

// StartOverdueSweep periodically reports pending payments whose date has passed.
func StartOverdueSweep(schedule string, payments *application.PaymentService, collector *metrics.MetricsCollector, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		overdue, err := payments.OverduePending(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Overdue payment sweep failed", "error", err)
			return
		}
		collector.SetOverduePayments(len(overdue))
		for _, payment := range overdue {
			logger.Warn("Pending payment is overdue",
				"payment_id", payment.ID,
				"vendor_id", payment.VendorID,
				"amount", payment.Amount.String(),
				"payment_date", payment.PaymentDate.Format(time.DateOnly),
			)
		}
		logger.Info("Overdue payment sweep completed", "overdue", len(overdue))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Missing configuration, update to start server", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repos *repositories
	if cfg.Store == config.StoreMemory {
		repos, err = openMemory(ctx, cfg, logger)
	} else {
		repos, err = openPostgres(ctx, cfg)
	}
	if err != nil {
		logger.Error("Could not initialize store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	collector := metrics.NewMetricsCollector()
	provider := identity.NewGoTrueClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)

	server, paymentService, err := NewServer(cfg, repos, provider, collector, logger)
	if err != nil {
		logger.Error("Could not build server", "error", err)
		os.Exit(1)
	}

	sweeper, err := StartOverdueSweep(cfg.OverdueSweepSchedule, paymentService, collector, logger)
	if err != nil {
		logger.Error("Scheduler didn't start, stopping the app", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "store", cfg.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
