package manifest

import (
	"Go2NetFixtures/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileName is the name of the manifest written into the output directory.
const FileName = "summary.json"

// SummaryData holds the metadata for a run.
type SummaryData struct {
	RunID        string                 `json:"run_id"`
	Target       string                 `json:"target"`
	Seed         uint64                 `json:"seed"`
	TotalFiles   int                    `json:"total_files"`
	TotalPackets int                    `json:"total_packets"`
	TotalBytes   int64                  `json:"total_bytes"`
	Timestamp    string                 `json:"timestamp"`
	Files        []model.FixtureSummary `json:"files"`
}

// Writer collects the summaries of a run and writes them as a single JSON
// manifest when closed. It implements the model.Recorder interface.
type Writer struct {
	rootPath string

	mu    sync.Mutex
	files []model.FixtureSummary
}

// NewWriter creates a new manifest writer for the output directory rootPath.
func NewWriter(rootPath string) *Writer {
	return &Writer{rootPath: rootPath}
}

// Record adds one capture file to the manifest.
func (w *Writer) Record(_ context.Context, summary model.FixtureSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = append(w.files, summary)
	return nil
}

// Close writes the manifest file. Files are listed by archetype name.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.files) == 0 {
		return nil
	}

	files := append([]model.FixtureSummary(nil), w.files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Archetype < files[j].Archetype })

	summary := SummaryData{
		RunID:      files[0].RunID,
		Target:     files[0].Target,
		Seed:       files[0].Seed,
		TotalFiles: len(files),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Files:      files,
	}
	for _, f := range files {
		summary.TotalPackets += f.Packets
		summary.TotalBytes += f.Bytes
	}

	if err := os.MkdirAll(w.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	summaryFilePath := filepath.Join(w.rootPath, FileName)
	summaryFile, err := os.Create(summaryFilePath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}

// Load reads a manifest written by Close.
func Load(path string) (*SummaryData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var summary SummaryData
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &summary, nil
}
