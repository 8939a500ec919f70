package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"Go2NetFixtures/internal/capture"
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/generator"
	"Go2NetFixtures/internal/model"
	"Go2NetFixtures/pkg/pcap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu        sync.Mutex
	summaries []model.FixtureSummary
	err       error
	closed    bool
}

func (f *fakeRecorder) Record(_ context.Context, s model.FixtureSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, s)
	return f.err
}

func (f *fakeRecorder) Close() error {
	f.closed = true
	return nil
}

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Output.Dir = dir
	cfg.Generator.Seed = 7
	return cfg
}

func countRecords(t *testing.T, path string) int {
	t.Helper()
	r, err := pcap.NewReader(path)
	require.NoError(t, err)
	defer r.Close()
	records, err := r.ReadAll()
	require.NoError(t, err)
	return len(records)
}

func TestRunWritesEveryArchetype(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	rec := &fakeRecorder{}
	m, err := NewManager(testConfig(dir), rec)
	require.NoError(t, err)

	results, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 10)

	want := map[string]int{
		generator.SYNFlood:   1000,
		generator.UDPFlood:   1000,
		generator.DNSAmp:     1000,
		generator.NTPAmp:     1000,
		generator.ICMPFlood:  1000,
		generator.ACKFlood:   1000,
		generator.Fragment:   2000,
		generator.SSDPAmp:    1000,
		generator.Legitimate: 600,
		generator.Mixed:      3000,
	}
	for i, a := range generator.All() {
		r := results[i]
		assert.Equal(t, a.Name, r.Archetype)
		assert.Equal(t, filepath.Join(dir, a.Name+".pcap"), r.Path)
		assert.Equal(t, want[a.Name], r.Packets, a.Name)
		assert.Equal(t, want[a.Name], countRecords(t, r.Path), a.Name)

		st, err := os.Stat(r.Path)
		require.NoError(t, err)
		assert.Equal(t, st.Size(), r.Bytes)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 10, "only the capture files are left behind")

	require.Len(t, rec.summaries, 10)
	for _, s := range rec.summaries {
		assert.Equal(t, m.RunID(), s.RunID)
		assert.Equal(t, uint64(7), s.Seed)
		assert.Equal(t, "192.168.1.100", s.Target)
	}

	require.NoError(t, m.Close())
	assert.True(t, rec.closed)
}

func TestRunIsReproducible(t *testing.T) {
	cfgA := testConfig(filepath.Join(t.TempDir(), "a"))
	cfgA.Generator.Count = 40
	cfgB := testConfig(filepath.Join(t.TempDir(), "b"))
	cfgB.Generator.Count = 40
	cfgB.Generator.Parallel = 4

	ma, err := NewManager(cfgA)
	require.NoError(t, err)
	mb, err := NewManager(cfgB)
	require.NoError(t, err)

	ra, err := ma.Run(context.Background())
	require.NoError(t, err)
	rb, err := mb.Run(context.Background())
	require.NoError(t, err)

	for i := range ra {
		da := readFrames(t, ra[i].Path)
		db := readFrames(t, rb[i].Path)
		assert.Equal(t, da, db, "%s differs between sequential and parallel runs", ra[i].Archetype)
	}
}

func readFrames(t *testing.T, path string) [][]byte {
	t.Helper()
	r, err := pcap.NewReader(path)
	require.NoError(t, err)
	defer r.Close()
	records, err := r.ReadAll()
	require.NoError(t, err)
	out := make([][]byte, len(records))
	for i, rec := range records {
		out[i] = rec.Data
	}
	return out
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	// a directory in place of the capture file makes the final rename fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "syn_flood.pcap"), 0755))

	cfg := testConfig(dir)
	cfg.Generator.Count = 10
	cfg.Generator.Archetypes = []string{generator.SYNFlood, generator.UDPFlood, generator.Fragment}
	rec := &fakeRecorder{}
	m, err := NewManager(cfg, rec)
	require.NoError(t, err)

	results, err := m.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, capture.ErrIO)
	assert.Contains(t, err.Error(), generator.SYNFlood)

	require.Len(t, results, 3)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 10, countRecords(t, results[1].Path))
	assert.Equal(t, 20, countRecords(t, results[2].Path))
	assert.Len(t, rec.summaries, 2)
}

func TestRunRecorderErrorKeepsFile(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Generator.Count = 5
	cfg.Generator.Archetypes = []string{generator.ICMPFlood}
	rec := &fakeRecorder{err: errors.New("broker down")}
	m, err := NewManager(cfg, rec)
	require.NoError(t, err)

	results, err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, 5, countRecords(t, results[0].Path))
}

func TestRunUnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	m, err := NewManager(testConfig(filepath.Join(file, "out")))
	require.NoError(t, err)
	_, err = m.Run(context.Background())

	var ioErr *capture.IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Generator.Count = 5
	m, err := NewManager(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := m.Run(ctx)
	require.Error(t, err)
	require.Len(t, results, 10)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	entries, err := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewManagerRejectsBadInput(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Generator.Archetypes = []string{"smurf"}
	_, err := NewManager(cfg)
	assert.Error(t, err)

	cfg = testConfig(t.TempDir())
	cfg.Generator.Target = "2001:db8::1"
	_, err = NewManager(cfg)
	assert.ErrorIs(t, err, generator.ErrConstruction)

	cfg = testConfig(t.TempDir())
	cfg.Generator.Count = -3
	_, err = NewManager(cfg)
	assert.ErrorIs(t, err, generator.ErrConstruction)
}

func TestNewManagerPicksSeed(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Generator.Seed = 0
	m, err := NewManager(cfg)
	require.NoError(t, err)
	assert.NotZero(t, m.Seed())
	assert.NotEmpty(t, m.RunID())
}
