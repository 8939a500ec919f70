package generator

import (
	"net"

	"Go2NetFixtures/internal/model"
)

// Archetype names, also used as capture file base names.
const (
	SYNFlood   = "syn_flood"
	UDPFlood   = "udp_flood"
	DNSAmp     = "dns_amp"
	NTPAmp     = "ntp_amp"
	ICMPFlood  = "icmp_flood"
	ACKFlood   = "ack_flood"
	Fragment   = "fragment"
	SSDPAmp    = "ssdp_amp"
	Legitimate = "legitimate"
	Mixed      = "mixed_attack"
)

var icmpFloodSizes = []int{64, 128, 256, 1024, 2048}

func init() {
	for _, a := range []Archetype{
		{Name: SYNFlood, Description: "SYN flood from random sources to port 80", Factor: 1, Build: buildSYNFlood},
		{Name: UDPFlood, Description: "UDP flood to random ports with small payloads", Factor: 1, Build: buildUDPFlood},
		{Name: DNSAmp, Description: "DNS amplification: large responses from port 53", Factor: 1, Build: buildDNSAmp},
		{Name: NTPAmp, Description: "NTP monlist amplification from port 123", Factor: 1, Build: buildNTPAmp},
		{Name: ICMPFlood, Description: "ICMP Echo flood, some oversized", Factor: 1, Build: buildICMPFlood},
		{Name: ACKFlood, Description: "spoofed ACK segments without connection state", Factor: 1, Build: buildACKFlood},
		{Name: Fragment, Description: "IP fragment pairs with MF set on the first fragment", Factor: 2, Build: buildFragment},
		{Name: SSDPAmp, Description: "SSDP amplification from port 1900", Factor: 1, Build: buildSSDPAmp},
		{Name: Legitimate, Description: "baseline HTTPS, DNS queries and ping from one client", Factor: 0.6, Build: buildLegitimate},
		{Name: Mixed, Description: "interleaved attack vectors and legitimate traffic", Factor: 3, Build: buildMixed},
	} {
		a.FileName = a.Name + ".pcap"
		Register(a)
	}
}

func repeat(count int, fn func() *model.PacketDescriptor) []*model.PacketDescriptor {
	out := make([]*model.PacketDescriptor, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, fn())
	}
	return out
}

func buildSYNFlood(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	return repeat(count, func() *model.PacketDescriptor { return SYNPacket(src, target) })
}

func buildUDPFlood(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	return repeat(count, func() *model.PacketDescriptor {
		return UDPPacket(src, target, src.Bytes(src.IntRange(8, 64)))
	})
}

func buildDNSAmp(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	return repeat(count, func() *model.PacketDescriptor {
		return DNSAmpPacket(src, target, src.IntRange(512, 1400), src.Bytes)
	})
}

func buildNTPAmp(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	return repeat(count, func() *model.PacketDescriptor {
		return ReflectionPacket(src, target, ntpPort, src.Bytes(src.IntRange(468, 1400)))
	})
}

func buildSSDPAmp(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	return repeat(count, func() *model.PacketDescriptor {
		return ReflectionPacket(src, target, ssdpPort, src.Bytes(src.IntRange(256, 800)))
	})
}

func buildICMPFlood(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	return repeat(count, func() *model.PacketDescriptor {
		return ICMPEchoPacket(src, src.IPv4(), target, defaultTTL, src.Bytes(src.Pick(icmpFloodSizes)))
	})
}

func buildACKFlood(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	return repeat(count, func() *model.PacketDescriptor { return ACKPacket(src, target) })
}

func buildFragment(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	out := make([]*model.PacketDescriptor, 0, 2*count)
	for i := 0; i < count; i++ {
		head, tail := FragmentPair(src, target)
		out = append(out, head, tail)
	}
	return out
}

// legitimateMix splits count into TCP, DNS and ICMP shares in the 3:2:1
// proportion of the 300/200/100 per thousand baseline.
func legitimateMix(count int) (tcp, dns, icmp int) {
	return count * 3 / 10, count * 2 / 10, count / 10
}

func buildLegitimate(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	tcp, dns, icmp := legitimateMix(count)
	out := make([]*model.PacketDescriptor, 0, tcp+dns+icmp)
	for i := 0; i < tcp; i++ {
		out = append(out, LegitimateTCPPacket(src, target, src.Bytes(src.IntRange(64, 1400))))
	}
	for i := 0; i < dns; i++ {
		out = append(out, LegitimateDNSQuery(src, target))
	}
	for i := 0; i < icmp; i++ {
		out = append(out, ICMPEchoPacket(src, legitimateSource, target, defaultTTL, src.Bytes(56)))
	}
	src.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

const fillByte = 'x'

func fill(n int) []byte { return filler(fillByte, n) }

// mixedConstructors are the single-packet builders a mixed capture draws
// from, each with a fixed filler payload.
var mixedConstructors = []func(src *Source, target net.IP) *model.PacketDescriptor{
	func(src *Source, target net.IP) *model.PacketDescriptor { return SYNPacket(src, target) },
	func(src *Source, target net.IP) *model.PacketDescriptor { return UDPPacket(src, target, fill(32)) },
	func(src *Source, target net.IP) *model.PacketDescriptor { return DNSAmpPacket(src, target, 600, fill) },
	func(src *Source, target net.IP) *model.PacketDescriptor {
		return ICMPEchoPacket(src, src.IPv4(), target, defaultTTL, fill(64))
	},
	func(src *Source, target net.IP) *model.PacketDescriptor { return ACKPacket(src, target) },
	func(src *Source, target net.IP) *model.PacketDescriptor {
		return LegitimateTCPPacket(src, target, fill(200))
	},
}

func buildMixed(src *Source, target net.IP, count int) []*model.PacketDescriptor {
	n := 3 * count
	out := make([]*model.PacketDescriptor, 0, n)
	for i := 0; i < n; i++ {
		build := mixedConstructors[src.IntRange(0, len(mixedConstructors)-1)]
		out = append(out, build(src, target))
	}
	src.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
