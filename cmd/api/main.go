package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/catalog"
	infrakafka "github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/redisx"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/telemetry"
)

// version se sobrescribe en build: -ldflags "-X main.version=..."
var version = "dev"

// storage agrupa el backend elegido (PostgreSQL o memoria).
type storage struct {
	txRunner  inventory.TxRunner
	products  repository.ProductRepository
	movements repository.MovementRepository
	pool      *pgxpool.Pool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if store.pool != nil {
		defer store.pool.Close()
	}

	// Caché de idempotencia (opcional)
	var cache inventory.IdempotencyCache
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisx.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		cache = redisx.NewIdempotencyCache(rdb)
	}

	// Eventos del libro (opcional)
	var publisher inventory.EventPublisher
	var producers []*infrakafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		movementsProducer := infrakafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMovements, 1024, log.Zerolog())
		alertsProducer := infrakafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, 256, log.Zerolog())
		movementsProducer.Start()
		alertsProducer.Start()
		producers = append(producers, movementsProducer, alertsProducer)
		publisher = infrakafka.NewEventPublisher(movementsProducer, alertsProducer, cfg.App.Name)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("publicación de eventos habilitada")
	}

	applyUC := inventory.NewApplyMovementUseCase(store.txRunner, cache, publisher, log.Zerolog(),
		inventory.WithIdempotencyTTL(cfg.Ledger.IdempotencyTTL))
	listUC := inventory.NewListMovementsUseCase(store.movements)
	auditUC := inventory.NewAuditUseCase(store.products, store.movements, log.Zerolog(), cfg.Ledger.AuditConcurrency)
	alertsUC := alerts.NewAlertsUseCase(store.products)
	distributionUC := analytics.NewDistributionUseCase(store.products)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ApplyMovement: applyUC,
		ListMovements: listUC,
		Audit:         auditUC,
		Alerts:        alertsUC,
		Distribution:  distributionUC,
		JWTSecret:     cfg.JWT.Secret,
		Log:           log.Component("http"),
		Health: func(ctx context.Context) error {
			if store.pool != nil {
				if err := store.pool.Ping(ctx); err != nil {
					return err
				}
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	for _, p := range producers {
		if err := p.Close(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("cierre del productor Kafka")
		}
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage usa PostgreSQL si está configurado; si no, el almacén en memoria (desarrollo).
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if !cfg.DB.Enabled() {
		if cfg.App.Env == "production" {
			return nil, errors.New("DATABASE_URL o DB_HOST es obligatorio en production")
		}
		mem := memory.NewStore()
		if cfg.Ledger.DemoCatalog != "" {
			items, err := catalog.Load(cfg.Ledger.DemoCatalog, cfg.Ledger.DemoCatalogCharset)
			if err != nil {
				return nil, err
			}
			if err := catalog.Seed(mem, items, time.Now().UTC()); err != nil {
				return nil, err
			}
			log.Info().Int("products", len(items)).Str("file", cfg.Ledger.DemoCatalog).Msg("catálogo de demostración cargado")
		}
		log.Warn().Msg("sin base de datos configurada: usando almacén en memoria")
		return &storage{txRunner: mem, products: mem, movements: mem}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		pool:      pool,
	}, nil
}
