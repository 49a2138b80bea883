package initializer

import (
	"fmt"
	"log/slog"

	infraeventbus "github.com/amirasaad/studentrelief/infra/eventbus"
	"github.com/amirasaad/studentrelief/pkg/config"
)

// initEventBus builds the configured bus. A broker that is configured but
// unreachable degrades to the in-process async bus so the API still serves.
func initEventBus(cfg *config.App, logger *slog.Logger) (infraeventbus.ClosableBus, error) {
	driver := infraeventbus.DriverMemory
	if cfg.Bus != nil && cfg.Bus.Driver != "" {
		driver = cfg.Bus.Driver
	}

	switch driver {
	case infraeventbus.DriverMemory, infraeventbus.DriverMemorySync:
		return infraeventbus.New(cfg, logger)
	case infraeventbus.DriverRedis:
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, fmt.Errorf("bus driver %q requires REDIS_URL", driver)
		}
	case infraeventbus.DriverKafka:
		if cfg.Kafka == nil || cfg.Kafka.Brokers == "" {
			return nil, fmt.Errorf("bus driver %q requires KAFKA_BROKERS", driver)
		}
	case infraeventbus.DriverRabbitMQ:
		if cfg.RabbitMQ == nil || cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("bus driver %q requires RABBITMQ_URL", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported bus driver %q", driver)
	}

	bus, err := infraeventbus.New(cfg, logger)
	if err != nil {
		logger.Warn("⚠️ Event bus unavailable, falling back to in-memory async bus",
			"driver", driver,
			"error", err,
		)
		workers, buffer := 4, 256
		if cfg.Bus != nil && cfg.Bus.Workers > 0 {
			workers = cfg.Bus.Workers
		}
		if cfg.Bus != nil && cfg.Bus.Buffer > 0 {
			buffer = cfg.Bus.Buffer
		}
		return infraeventbus.NewWithMemoryAsync(logger, workers, buffer), nil
	}
	return bus, nil
}
