// Package initializer builds the infrastructure the application runs on
// from configuration.
package initializer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/speibank/infra"
	infra_eventbus "github.com/amirasaad/speibank/infra/eventbus"
	"github.com/amirasaad/speibank/infra/provider/mockspei"
	"github.com/amirasaad/speibank/infra/provider/speigateway"
	infra_repository "github.com/amirasaad/speibank/infra/repository"
	"github.com/amirasaad/speibank/infra/repository/memory"
	"github.com/amirasaad/speibank/pkg/app"
	"github.com/amirasaad/speibank/pkg/bank"
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/eventbus"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	"gorm.io/gorm"
)

// Event bus drivers.
const (
	DriverMemory     = "memory"
	DriverMemorySync = "memory-sync"
	DriverRedis      = "redis"
	DriverKafka      = "kafka"
)

// InitializeDependencies initializes all the application dependencies. The
// returned *gorm.DB is nil when the in-memory store is used.
func InitializeDependencies(cfg *config.App) (deps *app.Deps, db *gorm.DB, err error) {
	deps = &app.Deps{}
	logger := SetupLogger(cfg.Log)
	deps.Logger = logger

	if cfg.DB != nil && cfg.DB.Url != "" {
		db, err = infra.NewDBConnection(cfg.DB, cfg.Env)
		if err != nil {
			logger.Error("Failed to initialize database", "error", err)
			return nil, nil, err
		}
		deps.Uow = infra_repository.NewUoW(db)
	} else {
		logger.Warn("DATABASE_URL is not set, using the in-memory ledger store")
		deps.Uow = memory.NewStore()
	}

	deps.Gateway = initGateway(cfg.Spei, logger)

	institution := bank.DefaultInstitutionCode
	if cfg.Spei != nil && cfg.Spei.InstitucionOperante != "" {
		institution = cfg.Spei.InstitucionOperante
	}
	deps.Directory = bank.Default(institution)

	deps.EventBus, err = initEventBus(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	return deps, db, nil
}

func initGateway(cfg *config.Spei, logger *slog.Logger) spei.Gateway {
	if cfg == nil || cfg.UseMock {
		logger.Warn("Using the mock settlement gateway")
		return mockspei.New()
	}
	return speigateway.New(cfg, logger)
}

// initEventBus selects the transport named by EVENT_BUS_DRIVER. A missing
// address is a configuration error; an unreachable broker degrades to the
// in-process async bus so the API keeps serving.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := DriverMemory
	if cfg.EventBus != nil && strings.TrimSpace(cfg.EventBus.Driver) != "" {
		driver = strings.ToLower(strings.TrimSpace(cfg.EventBus.Driver))
	}

	switch driver {
	case DriverMemory:
		return infra_eventbus.NewWithMemoryAsync(logger), nil
	case DriverMemorySync:
		return infra_eventbus.NewWithMemory(logger), nil
	case DriverRedis:
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, fmt.Errorf("event bus driver %q requires REDIS_URL", driver)
		}
		bus, err := infra_eventbus.NewWithRedis(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemoryAsync(logger), nil
		}
		return bus, nil
	case DriverKafka:
		if cfg.Kafka == nil || strings.TrimSpace(cfg.Kafka.Brokers) == "" {
			return nil, fmt.Errorf("event bus driver %q requires KAFKA_BROKERS", driver)
		}
		bus, err := infra_eventbus.NewWithKafka(cfg.Kafka, logger)
		if err != nil {
			logger.Warn("Kafka event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemoryAsync(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unsupported event bus driver %q", driver)
	}
}
