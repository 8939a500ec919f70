package capture

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"Go2NetFixtures/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSnapLen  = 65536
	DefaultInterval = time.Millisecond
)

// Writer serializes descriptor sequences into pcap capture files.
type Writer struct {
	snapLen  uint32
	start    time.Time
	interval time.Duration
}

// Option configures a Writer.
type Option func(*Writer)

// WithSnapLen sets the snapshot length recorded in the file header. Frames
// longer than it are rejected.
func WithSnapLen(n uint32) Option {
	return func(w *Writer) {
		if n > 0 {
			w.snapLen = n
		}
	}
}

// WithStart sets the timestamp of the first record.
func WithStart(t time.Time) Option {
	return func(w *Writer) { w.start = t }
}

// WithInterval sets the gap between consecutive record timestamps.
func WithInterval(d time.Duration) Option {
	return func(w *Writer) {
		if d >= 0 {
			w.interval = d
		}
	}
}

// NewWriter creates a new capture writer.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		snapLen:  DefaultSnapLen,
		start:    time.Now().Truncate(time.Second),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Encode writes the pcap file header followed by one record per descriptor,
// in order. It returns the number of records written.
func (w *Writer) Encode(out io.Writer, descs []*model.PacketDescriptor) (int, error) {
	pw := pcapgo.NewWriter(out)
	if err := pw.WriteFileHeader(w.snapLen, layers.LinkTypeEthernet); err != nil {
		return 0, err
	}

	for i, d := range descs {
		frame, err := Serialize(d)
		if err != nil {
			var serr *SerializationError
			if errors.As(err, &serr) {
				serr.Index = i
			}
			return i, err
		}
		if len(frame) > int(w.snapLen) {
			return i, &SerializationError{Index: i, Length: len(frame), Limit: int(w.snapLen)}
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     w.start.Add(time.Duration(i) * w.interval),
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		if err := pw.WritePacket(ci, frame); err != nil {
			return i, err
		}
	}
	return len(descs), nil
}

// Write serializes descs into the capture file at path, replacing any file
// already there. The data goes to a temporary file in the same directory
// that is renamed over path only once complete, so a failed write leaves
// neither a partial file nor a damaged previous one.
func (w *Writer) Write(path string, descs []*model.PacketDescriptor) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, &IOError{Path: path, Op: "create", Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.WithError(rmErr).WithField("path", tmpPath).Warn("Failed to remove incomplete capture file")
			}
		}
	}()

	if err := tmp.Chmod(0644); err != nil {
		return 0, &IOError{Path: path, Op: "chmod", Err: err}
	}

	bw := bufio.NewWriter(tmp)
	if _, err := w.Encode(bw, descs); err != nil {
		if errors.Is(err, ErrSerialization) {
			return 0, err
		}
		return 0, &IOError{Path: path, Op: "write", Err: err}
	}
	if err := bw.Flush(); err != nil {
		return 0, &IOError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return 0, &IOError{Path: path, Op: "sync", Err: err}
	}
	info, err := tmp.Stat()
	if err != nil {
		return 0, &IOError{Path: path, Op: "stat", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return 0, &IOError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, &IOError{Path: path, Op: "rename", Err: err}
	}
	committed = true

	log.WithFields(log.Fields{"path": path, "packets": len(descs), "bytes": info.Size()}).Debug("Capture file written")
	return info.Size(), nil
}
