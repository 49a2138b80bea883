package eventbus

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
)

// ClosableBus is a bus owning background consumers or connections.
type ClosableBus interface {
	eventbus.Bus
	Close() error
}

const (
	DriverMemory     = "memory"
	DriverMemorySync = "sync"
	DriverRedis      = "redis"
	DriverKafka      = "kafka"
	DriverRabbitMQ   = "rabbitmq"
)

// New builds the bus selected by cfg.Bus.Driver.
func New(cfg *config.App, logger *slog.Logger) (ClosableBus, error) {
	driver := DriverMemory
	if cfg.Bus != nil && cfg.Bus.Driver != "" {
		driver = cfg.Bus.Driver
	}

	switch driver {
	case DriverMemory:
		workers, buffer := 4, 256
		if cfg.Bus != nil {
			workers, buffer = cfg.Bus.Workers, cfg.Bus.Buffer
		}
		return NewWithMemoryAsync(logger, workers, buffer), nil
	case DriverMemorySync:
		return NewWithMemory(logger), nil
	case DriverRedis:
		bus, err := NewWithRedis(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case DriverKafka:
		bus, err := NewWithKafka(cfg.Kafka, logger)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case DriverRabbitMQ:
		bus, err := NewWithRabbitMQ(cfg.RabbitMQ, logger)
		if err != nil {
			return nil, err
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("event bus: unknown driver %q", driver)
	}
}
