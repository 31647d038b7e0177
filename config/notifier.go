package config

import (
	"io"

	"restaurant-api/notifier"

	"github.com/sirupsen/logrus"
)

// Notifiers wires the event sinks: the in-process hub always, redis and
// rabbitmq when configured. The returned closers release broker connections.
func Notifiers(cfg *Config, hub *notifier.Hub, log *logrus.Logger) (notifier.Notifier, []io.Closer, error) {
	sinks := notifier.Fanout{hub}
	closers := []io.Closer{hub}

	if cfg.RedisAddr != "" {
		rdb, err := NewRedisClient(cfg)
		if err != nil {
			return nil, closers, err
		}
		sinks = append(sinks, notifier.NewRedisPublisher(rdb))
		closers = append(closers, rdb)
		log.WithField("addr", cfg.RedisAddr).Info("publishing events to redis")
	}

	if cfg.AMQPURL != "" {
		pub, err := notifier.DialAMQP(cfg.AMQPURL)
		if err != nil {
			return nil, closers, err
		}
		sinks = append(sinks, pub)
		closers = append(closers, pub)
		log.WithField("exchange", notifier.Exchange).Info("publishing events to rabbitmq")
	}

	return sinks, closers, nil
}
