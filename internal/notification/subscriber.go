package notification

import (
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/model"
	"fmt"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// FixtureHandler is a function that processes a received fixture summary.
type FixtureHandler func(summary model.FixtureSummary)

// Subscriber is responsible for subscribing to a NATS subject and processing messages.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.NATSConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name("ns-fixtures-watch"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	log.WithField("url", cfg.URL).Info("Connected to NATS server")
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to the configured subject and hands every decoded summary to handler.
func (s *Subscriber) Start(handler FixtureHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		summary, err := Decode(msg.Data)
		if err != nil {
			log.WithError(err).Warn("Dropping malformed fixture message")
			return
		}
		handler(summary)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.WithField("subject", s.subject).Info("Subscribed. Waiting for messages...")
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Info("NATS connection closed.")
	}
}
