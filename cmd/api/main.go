package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/cache"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/handler"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/memory"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/metrics"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/middleware"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/repository"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/config"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/services"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	dependencies := map[string]handler.Pinger{}
	degradable := map[string]handler.Pinger{}

	var (
		accounts  ports.AccountStores
		templates ports.TemplateStore
		ledger    ports.AppointmentLedger
	)

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("Using in-memory stores; data is lost on restart")
		accounts = memory.NewAccountStores()
		templates = memory.NewTemplateStore()
		ledger = memory.NewLedger()

	default:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
		dependencies["database"] = db.PingContext

		dbCB := config.NewCircuitBreaker(config.BreakerPostgres)
		accounts = repository.NewAccountRepositories(db, dbCB)
		templates = repository.NewTemplateRepository(db, dbCB)
		ledger = repository.NewAppointmentRepository(db, dbCB)
	}

	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING - redis unreachable, template cache will fall back to the store: %v", err)
		} else {
			log.Println("Authenticated with Redis successfully")
		}
		degradable["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		templates = cache.NewTemplateCache(templates, redisClient, config.NewCircuitBreaker(config.BreakerRedis), cfg.TemplateCacheTTL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	hasher := services.NewPasswordHasher(cfg.BcryptCost)
	tokens := services.NewTokenIssuer(cfg.JWTSecret)

	authService := services.NewAuthService(accounts, hasher, tokens)
	registrationService := services.NewRegistrationService(accounts[domain.RolePatient], hasher)
	slotService := services.NewSlotService(accounts[domain.RoleDoctor], templates, ledger)
	bookingService := services.NewBookingService(slotService)
	templateService := services.NewTemplateService(slotService)

	healthHandler := handler.NewHealthHandler(dependencies)
	for name, ping := range degradable {
		healthHandler.WithDegradable(name, ping)
	}

	router := &handler.Router{
		Auth:           handler.NewAuthHandler(authService, appMetrics),
		Registration:   handler.NewRegistrationHandler(registrationService),
		Appointments:   handler.NewAppointmentHandler(slotService, bookingService, appMetrics),
		Templates:      handler.NewTemplateHandler(templateService),
		Health:         healthHandler,
		AuthMiddleware: middleware.NewAuthMiddleware(tokens),
		Metrics:        appMetrics,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
