package model

import (
	"net"
	"time"
)

// FiveTuple represents the 5-tuple of a network packet.
type FiveTuple struct {
	SrcIP    net.IP
	DstIP    net.IP
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// PacketInfo holds the fields decoded back from one capture record.
type PacketInfo struct {
	Timestamp  time.Time
	FiveTuple  FiveTuple
	Length     int
	TTL        uint8
	IPID       uint16
	IPFlags    IPFlags
	FragOffset uint16
	TCPFlags   TCPFlags
	Seq        uint32
	Ack        uint32
	ICMPType   uint8
	ICMPCode   uint8
	// DNS is set when the record carries a DNS message on port 53.
	DNS     *DNSRecord
	Payload []byte
}

// FixtureSummary describes one capture file produced by a run.
type FixtureSummary struct {
	RunID     string    `json:"run_id"`
	Archetype string    `json:"archetype"`
	Path      string    `json:"path"`
	Packets   int       `json:"packets"`
	Bytes     int64     `json:"bytes"`
	Target    string    `json:"target"`
	Seed      uint64    `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}
