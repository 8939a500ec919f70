package pcap

import (
	"Go2NetFixtures/internal/model"
	"Go2NetFixtures/internal/protocol"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	log "github.com/sirupsen/logrus"
)

// Record is one raw capture record.
type Record struct {
	CaptureInfo gopacket.CaptureInfo
	Data        []byte
}

// Reader reads packets from a pcap file.
type Reader struct {
	file *os.File
	r    *pcapgo.Reader
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	r, err := pcapgo.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read pcap header of '%s': %w", filePath, err)
	}
	if r.LinkType() != layers.LinkTypeEthernet {
		f.Close()
		return nil, fmt.Errorf("unsupported link type %s in '%s'", r.LinkType(), filePath)
	}
	return &Reader{file: f, r: r}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

// SnapLen returns the snapshot length from the file header.
func (r *Reader) SnapLen() uint32 {
	return r.r.Snaplen()
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	data, ci, err := r.r.ReadPacketData()
	if err != nil {
		return Record{}, err
	}
	return Record{CaptureInfo: ci, Data: data}, nil
}

// ReadAll returns every remaining record in file order.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// ReadPackets reads all packets from the pcap file and sends the parsed
// PacketInfo to the provided channel. It closes the channel when done.
func (r *Reader) ReadPackets(out chan<- *model.PacketInfo) {
	defer close(out)

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.WithError(err).Error("Error reading capture record")
			return
		}
		info, err := protocol.DecodeFrame(rec.Data, rec.CaptureInfo)
		if err != nil {
			// Frames we cannot decode are logged and skipped.
			log.WithError(err).Warn("Error parsing packet")
			continue
		}
		out <- info
	}
}
