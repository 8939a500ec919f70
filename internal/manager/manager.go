package manager

import (
	"Go2NetFixtures/internal/capture"
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/generator"
	"Go2NetFixtures/internal/metrics"
	"Go2NetFixtures/internal/model"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Result is the outcome of one archetype.
type Result struct {
	Archetype string
	Path      string
	Packets   int
	Bytes     int64
	Duration  time.Duration
	Err       error
}

// Manager runs the generate-then-write pipeline for a set of archetypes.
type Manager struct {
	archetypes []generator.Archetype
	target     net.IP
	count      int
	seed       uint64
	runID      string
	outputDir  string
	writer     *capture.Writer
	recorders  []model.Recorder
	numWorkers int
}

// NewManager creates a new Manager from the configuration. Recorders receive
// a summary of every file written and are closed by Close.
func NewManager(cfg *config.Config, recorders ...model.Recorder) (*Manager, error) {
	archetypes, err := generator.Select(cfg.Generator.Archetypes)
	if err != nil {
		return nil, err
	}

	target, err := generator.ParseTarget(cfg.Generator.Target)
	if err != nil {
		return nil, err
	}

	if cfg.Generator.Count < 0 {
		return nil, &generator.ConstructionError{Archetype: "*", Reason: fmt.Sprintf("negative count %d", cfg.Generator.Count)}
	}

	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	numWorkers := cfg.Generator.Parallel
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &Manager{
		archetypes: archetypes,
		target:     target,
		count:      cfg.Generator.Count,
		seed:       seed,
		runID:      uuid.NewString(),
		outputDir:  cfg.Output.Dir,
		writer: capture.NewWriter(
			capture.WithSnapLen(cfg.Output.SnapLen),
			capture.WithInterval(cfg.Output.Interval()),
		),
		recorders:  recorders,
		numWorkers: numWorkers,
	}, nil
}

// Seed returns the base seed of the run.
func (m *Manager) Seed() uint64 { return m.seed }

// RunID returns the identifier attached to every summary of the run.
func (m *Manager) RunID() string { return m.runID }

// Run builds every selected archetype and writes one capture file each.
// A failure aborts only the archetype it belongs to; the returned error joins
// all failures. Results are in the order the archetypes were selected.
func (m *Manager) Run(ctx context.Context) ([]Result, error) {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return nil, &capture.IOError{Path: m.outputDir, Op: "create directory", Err: err}
	}

	log.WithFields(log.Fields{
		"run_id":     m.runID,
		"target":     m.target.String(),
		"count":      m.count,
		"seed":       m.seed,
		"archetypes": len(m.archetypes),
		"workers":    m.numWorkers,
	}).Info("Starting fixture generation")

	results := make([]Result, len(m.archetypes))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(m.numWorkers)
	for i := 0; i < m.numWorkers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = m.build(ctx, m.archetypes[idx])
			}
		}()
	}

	// archetypes not yet handed to a worker when ctx ends are marked cancelled
	for idx := range m.archetypes {
		if ctx.Err() == nil {
			select {
			case jobs <- idx:
				continue
			case <-ctx.Done():
			}
		}
		for rest := idx; rest < len(m.archetypes); rest++ {
			results[rest] = Result{Archetype: m.archetypes[rest].Name, Err: ctx.Err()}
		}
		break
	}
	close(jobs)
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Archetype, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// build generates, writes and records a single archetype.
func (m *Manager) build(ctx context.Context, a generator.Archetype) Result {
	start := time.Now()
	path := filepath.Join(m.outputDir, a.FileName)
	res := Result{Archetype: a.Name, Path: path}
	logger := log.WithFields(log.Fields{"archetype": a.Name, "path": path})

	src := generator.NewSource(generator.DeriveSeed(m.seed, a.Name))
	descs, err := a.Generate(src, m.target, m.count)
	if err != nil {
		metrics.Errors.WithLabelValues(a.Name, "construction").Inc()
		logger.WithError(err).Error("Failed to generate packets")
		res.Err = err
		return res
	}
	metrics.PacketsGenerated.WithLabelValues(a.Name).Add(float64(len(descs)))

	size, err := m.writer.Write(path, descs)
	res.Duration = time.Since(start)
	if err != nil {
		kind := "io"
		if errors.Is(err, capture.ErrSerialization) {
			kind = "serialization"
		}
		metrics.Errors.WithLabelValues(a.Name, kind).Inc()
		logger.WithError(err).Error("Failed to write capture file")
		res.Err = err
		return res
	}
	res.Packets = len(descs)
	res.Bytes = size
	metrics.BytesWritten.WithLabelValues(a.Name).Add(float64(size))
	metrics.GenerateDuration.WithLabelValues(a.Name).Observe(res.Duration.Seconds())
	logger.WithFields(log.Fields{"packets": res.Packets, "bytes": res.Bytes}).Info("Capture file written")

	summary := model.FixtureSummary{
		RunID:     m.runID,
		Archetype: a.Name,
		Path:      path,
		Packets:   res.Packets,
		Bytes:     res.Bytes,
		Target:    m.target.String(),
		Seed:      m.seed,
		CreatedAt: time.Now(),
	}
	var recErrs []error
	for _, rec := range m.recorders {
		if err := rec.Record(ctx, summary); err != nil {
			logger.WithError(err).Warn("Failed to record fixture")
			recErrs = append(recErrs, err)
		}
	}
	res.Err = errors.Join(recErrs...)
	return res
}

// Close closes every recorder.
func (m *Manager) Close() error {
	var errs []error
	for _, rec := range m.recorders {
		if err := rec.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
