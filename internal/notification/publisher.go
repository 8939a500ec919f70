package notification

import (
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Publisher announces written capture files on a NATS subject. It
// implements the model.Recorder interface.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name("ns-fixtures"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	log.WithField("url", cfg.URL).Info("Connected to NATS server")
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Encode serializes a summary into the protobuf Struct sent on the wire.
func Encode(summary model.FixtureSummary) ([]byte, error) {
	msg, err := structpb.NewStruct(map[string]interface{}{
		"run_id":     summary.RunID,
		"archetype":  summary.Archetype,
		"path":       summary.Path,
		"packets":    summary.Packets,
		"bytes":      summary.Bytes,
		"target":     summary.Target,
		"seed":       fmt.Sprintf("%d", summary.Seed),
		"created_at": summary.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build fixture message: %w", err)
	}
	return proto.Marshal(msg)
}

// Decode is the inverse of Encode for subscribers.
func Decode(data []byte) (model.FixtureSummary, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return model.FixtureSummary{}, fmt.Errorf("failed to unmarshal fixture message: %w", err)
	}
	f := msg.GetFields()
	summary := model.FixtureSummary{
		RunID:     f["run_id"].GetStringValue(),
		Archetype: f["archetype"].GetStringValue(),
		Path:      f["path"].GetStringValue(),
		Packets:   int(f["packets"].GetNumberValue()),
		Bytes:     int64(f["bytes"].GetNumberValue()),
		Target:    f["target"].GetStringValue(),
	}
	if _, err := fmt.Sscanf(f["seed"].GetStringValue(), "%d", &summary.Seed); err != nil {
		return summary, fmt.Errorf("invalid seed in fixture message: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, f["created_at"].GetStringValue())
	if err != nil {
		return summary, fmt.Errorf("invalid created_at in fixture message: %w", err)
	}
	summary.CreatedAt = created
	return summary, nil
}

// Record publishes one summary to the configured subject.
func (p *Publisher) Record(_ context.Context, summary model.FixtureSummary) error {
	data, err := Encode(summary)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		return fmt.Errorf("failed to drain nats connection: %w", err)
	}
	log.Info("NATS connection drained and closed.")
	return nil
}
