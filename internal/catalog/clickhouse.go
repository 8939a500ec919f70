package catalog

import (
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/model"
	"context"
	"fmt"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	log "github.com/sirupsen/logrus"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS fixture_catalog (
    CreatedAt   DateTime,
    RunID       String,
    Archetype   String,
    Path        String,
    Target      String,
    Seed        UInt64,
    Packets     UInt64,
    Bytes       UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(CreatedAt)
ORDER BY (Archetype, CreatedAt);
`

// ClickHouseRecorder buffers fixture summaries and inserts them into the
// fixture_catalog table in one batch on Close. It implements the
// model.Recorder interface.
type ClickHouseRecorder struct {
	conn driver.Conn

	mu      sync.Mutex
	pending []model.FixtureSummary
}

// NewClickHouseRecorder connects to ClickHouse and ensures the table exists.
func NewClickHouseRecorder(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseRecorder, error) {
	conn, err := connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(ctx, createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Info("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseRecorder{conn: conn}, nil
}

func connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Row returns the column values inserted for one summary, in table order.
func Row(s model.FixtureSummary) []interface{} {
	return []interface{}{
		s.CreatedAt,
		s.RunID,
		s.Archetype,
		s.Path,
		s.Target,
		s.Seed,
		uint64(s.Packets),
		uint64(s.Bytes),
	}
}

// Record queues one summary for insertion.
func (r *ClickHouseRecorder) Record(_ context.Context, summary model.FixtureSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, summary)
	return nil
}

// Flush inserts all queued summaries.
func (r *ClickHouseRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil // Nothing to write
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO fixture_catalog")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, s := range r.pending {
		if err := batch.Append(Row(s)...); err != nil {
			return fmt.Errorf("failed to append fixture to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.WithField("rows", len(r.pending)).Info("Wrote fixtures to ClickHouse catalog")
	r.pending = nil
	return nil
}

// Close flushes pending rows and closes the connection.
func (r *ClickHouseRecorder) Close() error {
	flushErr := r.Flush(context.Background())
	if err := r.conn.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}
