package model

import (
	"net"
)

// Protocol is the IPv4 protocol number carried in the network header.
type Protocol uint8

const (
	ProtocolICMP Protocol = 1
	ProtocolTCP  Protocol = 6
	ProtocolUDP  Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case ProtocolICMP:
		return "ICMP"
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	default:
		return "UNKNOWN"
	}
}

// IPFlags are the three IPv4 flag bits.
type IPFlags uint8

const (
	IPFlagMoreFragments IPFlags = 1 << 0
	IPFlagDontFragment  IPFlags = 1 << 1
)

// TCPFlags is a bit set of TCP control flags.
type TCPFlags uint8

const (
	TCPFlagFIN TCPFlags = 1 << 0
	TCPFlagSYN TCPFlags = 1 << 1
	TCPFlagRST TCPFlags = 1 << 2
	TCPFlagPSH TCPFlags = 1 << 3
	TCPFlagACK TCPFlags = 1 << 4
	TCPFlagURG TCPFlags = 1 << 5
)

// Has reports whether all bits of f are set.
func (t TCPFlags) Has(f TCPFlags) bool { return t&f == f }

func (t TCPFlags) String() string {
	names := []struct {
		flag TCPFlags
		name string
	}{
		{TCPFlagFIN, "F"}, {TCPFlagSYN, "S"}, {TCPFlagRST, "R"},
		{TCPFlagPSH, "P"}, {TCPFlagACK, "A"}, {TCPFlagURG, "U"},
	}
	s := ""
	for _, n := range names {
		if t.Has(n.flag) {
			s += n.name
		}
	}
	return s
}

const (
	ipv4HeaderLen = 20
	tcpHeaderLen  = 20
	udpHeaderLen  = 8
	icmpHeaderLen = 8
	dnsHeaderLen  = 12
	// one question: type + class after the encoded name
	dnsQuestionTrailerLen = 4

	ICMPTypeEchoRequest uint8 = 8
)

// LinkHeader is the placeholder Ethernet header put in front of every frame.
type LinkHeader struct {
	SrcMAC net.HardwareAddr
	DstMAC net.HardwareAddr
}

// DefaultLinkHeader returns the constant synthetic frame header.
func DefaultLinkHeader() LinkHeader {
	return LinkHeader{
		SrcMAC: net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC: net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
	}
}

// NetworkHeader holds the IPv4 fields a generator decides. Length, IHL and
// checksum are left to the capture writer.
type NetworkHeader struct {
	SrcIP      net.IP
	DstIP      net.IP
	TTL        uint8
	ID         uint16
	Flags      IPFlags
	FragOffset uint16 // in 8-byte units
	Protocol   Protocol
}

// TCPHeader holds the TCP fields a generator decides.
type TCPHeader struct {
	SrcPort uint16
	DstPort uint16
	Seq     uint32
	Ack     uint32
	Flags   TCPFlags
	Window  uint16
}

// UDPHeader holds the UDP ports; the length is computed at write time.
type UDPHeader struct {
	SrcPort uint16
	DstPort uint16
}

// ICMPHeader holds the ICMPv4 type, code and echo identifiers.
type ICMPHeader struct {
	Type uint8
	Code uint8
	ID   uint16
	Seq  uint16
}

// DNSRecord is a minimal DNS message: a header and a single IN/A question.
type DNSRecord struct {
	ID       uint16
	Response bool
	Name     string
}

// WireLen is the encoded size of the record.
func (r *DNSRecord) WireLen() int {
	if r == nil {
		return 0
	}
	nameLen := 1
	if r.Name != "" {
		nameLen = len(r.Name) + 2
	}
	return dnsHeaderLen + nameLen + dnsQuestionTrailerLen
}

// PacketDescriptor is one synthetic packet prior to serialization. At most
// one of TCP, UDP and ICMP is set; none is set for a non-first fragment.
type PacketDescriptor struct {
	Link    LinkHeader
	Network NetworkHeader
	TCP     *TCPHeader
	UDP     *UDPHeader
	ICMP    *ICMPHeader
	DNS     *DNSRecord
	Payload []byte
}

// TransportLen is the size of the transport header, zero when absent.
func (d *PacketDescriptor) TransportLen() int {
	switch {
	case d.TCP != nil:
		return tcpHeaderLen
	case d.UDP != nil:
		return udpHeaderLen
	case d.ICMP != nil:
		return icmpHeaderLen
	default:
		return 0
	}
}

// ApplicationLen is the number of bytes after the transport header.
func (d *PacketDescriptor) ApplicationLen() int {
	return d.DNS.WireLen() + len(d.Payload)
}

// NetworkLen is the IPv4 total length the writer will put on the wire.
func (d *PacketDescriptor) NetworkLen() int {
	return ipv4HeaderLen + d.TransportLen() + d.ApplicationLen()
}

// SrcPort returns the transport source port, or zero for ICMP and fragments.
func (d *PacketDescriptor) SrcPort() uint16 {
	switch {
	case d.TCP != nil:
		return d.TCP.SrcPort
	case d.UDP != nil:
		return d.UDP.SrcPort
	default:
		return 0
	}
}

// DstPort returns the transport destination port, or zero for ICMP and fragments.
func (d *PacketDescriptor) DstPort() uint16 {
	switch {
	case d.TCP != nil:
		return d.TCP.DstPort
	case d.UDP != nil:
		return d.UDP.DstPort
	default:
		return 0
	}
}
