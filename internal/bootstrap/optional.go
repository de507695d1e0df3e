package bootstrap

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mohammadpnp/client-import/internal/config"
	"github.com/mohammadpnp/client-import/internal/infrastructure/events"
)

// ConnectOptional opens the preview cache and the event publisher when the
// config asks for them and adds them to infra. The returned func closes
// whatever was opened.
func ConnectOptional(cfg config.Config, infra Infrastructure, logger *zap.Logger) (Infrastructure, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return infra, closeAll, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		closers = append(closers, func() { _ = client.Close() })
		infra.Redis = client
	} else {
		logger.Warn("REDIS_URL not set, preview snapshots are disabled")
	}

	if cfg.Kafka.Enabled {
		publisher := events.NewKafkaPublisher(events.KafkaPublisherConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ImportTopic,
		}, logger.Named("events"))
		closers = append(closers, func() { _ = publisher.Close() })
		infra.Events = publisher
	}

	return infra, closeAll, nil
}
