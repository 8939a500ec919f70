package generator

import (
	"net"

	"Go2NetFixtures/internal/model"
)

const (
	httpPort  = 80
	httpsPort = 443
	dnsPort   = 53
	ntpPort   = 123
	ssdpPort  = 1900

	defaultTTL    = 64
	defaultWindow = 8192

	// second fragment offset, in 8-byte units
	fragmentOffset = 8
	fragmentLen    = 32

	dnsQueryName = "example.com"
)

// legitimateSource is the benign client of the baseline traffic.
var legitimateSource = net.IPv4(10, 0, 0, 50).To4()

func ipv4(src, dst net.IP, ttl uint8, proto model.Protocol) model.NetworkHeader {
	return model.NetworkHeader{
		SrcIP:    src,
		DstIP:    dst,
		TTL:      ttl,
		Protocol: proto,
	}
}

func descriptor(nh model.NetworkHeader) *model.PacketDescriptor {
	return &model.PacketDescriptor{Link: model.DefaultLinkHeader(), Network: nh}
}

// SYNPacket is a spoofed connection opener towards the target's web port.
func SYNPacket(src *Source, target net.IP) *model.PacketDescriptor {
	nh := ipv4(src.IPv4(), target, src.TTL(30, 128), model.ProtocolTCP)
	nh.ID = src.Uint16()
	d := descriptor(nh)
	d.TCP = &model.TCPHeader{
		SrcPort: src.Port(),
		DstPort: httpPort,
		Seq:     src.Uint32(),
		Flags:   model.TCPFlagSYN,
		Window:  defaultWindow,
	}
	return d
}

// ACKPacket is a stateless spoofed ACK towards the target's web port.
func ACKPacket(src *Source, target net.IP) *model.PacketDescriptor {
	nh := ipv4(src.IPv4(), target, defaultTTL, model.ProtocolTCP)
	nh.ID = src.Uint16()
	d := descriptor(nh)
	d.TCP = &model.TCPHeader{
		SrcPort: src.Port(),
		DstPort: httpPort,
		Seq:     src.Uint32(),
		Ack:     src.Uint32(),
		Flags:   model.TCPFlagACK,
		Window:  defaultWindow,
	}
	return d
}

// UDPPacket sends payload to a random port of the target.
func UDPPacket(src *Source, target net.IP, payload []byte) *model.PacketDescriptor {
	return udpFrom(src, src.IPv4(), src.Port(), target, src.Port(), payload)
}

// ReflectionPacket is a UDP response from a reflector service port.
func ReflectionPacket(src *Source, target net.IP, servicePort uint16, payload []byte) *model.PacketDescriptor {
	return udpFrom(src, src.IPv4(), servicePort, target, src.Port(), payload)
}

// DNSAmpPacket is an oversized DNS response from port 53. The DNS record and
// padding together take appLen bytes.
func DNSAmpPacket(src *Source, target net.IP, appLen int, pad func(n int) []byte) *model.PacketDescriptor {
	rec := &model.DNSRecord{ID: src.Uint16(), Response: true, Name: dnsQueryName}
	d := udpFrom(src, src.IPv4(), dnsPort, target, src.Port(), nil)
	d.DNS = rec
	d.Payload = pad(max(appLen-rec.WireLen(), 0))
	return d
}

// ICMPEchoPacket is an Echo Request carrying payload.
func ICMPEchoPacket(src *Source, from, target net.IP, ttl uint8, payload []byte) *model.PacketDescriptor {
	nh := ipv4(from, target, ttl, model.ProtocolICMP)
	nh.ID = src.Uint16()
	d := descriptor(nh)
	d.ICMP = &model.ICMPHeader{
		Type: model.ICMPTypeEchoRequest,
		Code: 0,
		ID:   src.Uint16(),
		Seq:  src.Uint16(),
	}
	d.Payload = payload
	return d
}

// LegitimateTCPPacket is an established-session HTTPS segment with data.
func LegitimateTCPPacket(src *Source, target net.IP, payload []byte) *model.PacketDescriptor {
	nh := ipv4(legitimateSource, target, defaultTTL, model.ProtocolTCP)
	nh.ID = src.Uint16()
	d := descriptor(nh)
	d.TCP = &model.TCPHeader{
		SrcPort: src.EphemeralPort(),
		DstPort: httpsPort,
		Seq:     src.Uint32(),
		Ack:     src.Uint32(),
		Flags:   model.TCPFlagACK | model.TCPFlagPSH,
		Window:  65535,
	}
	d.Payload = payload
	return d
}

// LegitimateDNSQuery is a plain resolver query with no response flag.
func LegitimateDNSQuery(src *Source, target net.IP) *model.PacketDescriptor {
	d := udpFrom(src, legitimateSource, src.EphemeralPort(), target, dnsPort, nil)
	d.Network.TTL = defaultTTL
	d.DNS = &model.DNSRecord{ID: src.Uint16(), Name: dnsQueryName}
	return d
}

// FragmentPair returns the two fragments of one datagram. Both share source,
// destination and identification; the first carries a SYN with MF set, the
// second is a bare continuation at a non-zero offset.
func FragmentPair(src *Source, target net.IP) (*model.PacketDescriptor, *model.PacketDescriptor) {
	from := src.IPv4()
	id := src.Uint16()

	first := ipv4(from, target, defaultTTL, model.ProtocolTCP)
	first.ID = id
	first.Flags = model.IPFlagMoreFragments
	head := descriptor(first)
	head.TCP = &model.TCPHeader{
		SrcPort: src.Port(),
		DstPort: httpPort,
		Seq:     src.Uint32(),
		Flags:   model.TCPFlagSYN,
		Window:  defaultWindow,
	}

	second := ipv4(from, target, defaultTTL, model.ProtocolTCP)
	second.ID = id
	second.FragOffset = fragmentOffset
	tail := descriptor(second)
	tail.Payload = src.Bytes(fragmentLen)

	return head, tail
}

func udpFrom(src *Source, from net.IP, sport uint16, target net.IP, dport uint16, payload []byte) *model.PacketDescriptor {
	nh := ipv4(from, target, defaultTTL, model.ProtocolUDP)
	nh.ID = src.Uint16()
	d := descriptor(nh)
	d.UDP = &model.UDPHeader{SrcPort: sport, DstPort: dport}
	d.Payload = payload
	return d
}
