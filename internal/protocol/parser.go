package protocol

import (
	"Go2NetFixtures/internal/model"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// DecodeFrame decodes raw Ethernet frame bytes and extracts key information.
func DecodeFrame(data []byte, ci gopacket.CaptureInfo) (*model.PacketInfo, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	md := packet.Metadata()
	md.CaptureInfo = ci
	return ParsePacket(packet)
}

// ParsePacket uses gopacket to decode a packet and extract key information.
func ParsePacket(packet gopacket.Packet) (*model.PacketInfo, error) {
	info := &model.PacketInfo{
		Timestamp: time.Now(), // Default to now, will be overwritten by packet metadata if available
		Length:    len(packet.Data()),
	}

	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		info.Timestamp = meta.Timestamp
	}

	var fiveTuple model.FiveTuple

	// Get IPv4 layer
	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)
	fiveTuple.SrcIP = ip.SrcIP
	fiveTuple.DstIP = ip.DstIP
	fiveTuple.Protocol = uint8(ip.Protocol)
	info.TTL = ip.TTL
	info.IPID = ip.Id
	info.FragOffset = ip.FragOffset
	if ip.Flags&layers.IPv4MoreFragments != 0 {
		info.IPFlags |= model.IPFlagMoreFragments
	}
	if ip.Flags&layers.IPv4DontFragment != 0 {
		info.IPFlags |= model.IPFlagDontFragment
	}

	switch {
	case packet.Layer(layers.LayerTypeTCP) != nil:
		tcp := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
		fiveTuple.SrcPort = uint16(tcp.SrcPort)
		fiveTuple.DstPort = uint16(tcp.DstPort)
		info.Seq = tcp.Seq
		info.Ack = tcp.Ack
		info.TCPFlags = tcpFlags(tcp)
		info.Payload = tcp.LayerPayload()
	case packet.Layer(layers.LayerTypeUDP) != nil:
		udp := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		fiveTuple.SrcPort = uint16(udp.SrcPort)
		fiveTuple.DstPort = uint16(udp.DstPort)
		info.Payload = udp.LayerPayload()
		if dl := packet.Layer(layers.LayerTypeDNS); dl != nil {
			dns := dl.(*layers.DNS)
			rec := &model.DNSRecord{ID: dns.ID, Response: dns.QR}
			if len(dns.Questions) > 0 {
				rec.Name = string(dns.Questions[0].Name)
			}
			info.DNS = rec
		}
	case packet.Layer(layers.LayerTypeICMPv4) != nil:
		icmp := packet.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
		info.ICMPType = icmp.TypeCode.Type()
		info.ICMPCode = icmp.TypeCode.Code()
		info.Payload = icmp.LayerPayload()
	default:
		// gopacket stops at the IP layer for any fragment. The first
		// fragment still starts with the TCP header, so decode it here.
		info.Payload = ip.LayerPayload()
		if ip.FragOffset == 0 && ip.Protocol == layers.IPProtocolTCP {
			tcp := &layers.TCP{}
			if err := tcp.DecodeFromBytes(ip.LayerPayload(), gopacket.NilDecodeFeedback); err == nil {
				fiveTuple.SrcPort = uint16(tcp.SrcPort)
				fiveTuple.DstPort = uint16(tcp.DstPort)
				info.Seq = tcp.Seq
				info.Ack = tcp.Ack
				info.TCPFlags = tcpFlags(tcp)
				info.Payload = tcp.LayerPayload()
			}
		}
	}

	info.FiveTuple = fiveTuple

	return info, nil
}

func tcpFlags(tcp *layers.TCP) model.TCPFlags {
	var f model.TCPFlags
	for _, b := range []struct {
		set  bool
		flag model.TCPFlags
	}{
		{tcp.FIN, model.TCPFlagFIN}, {tcp.SYN, model.TCPFlagSYN}, {tcp.RST, model.TCPFlagRST},
		{tcp.PSH, model.TCPFlagPSH}, {tcp.ACK, model.TCPFlagACK}, {tcp.URG, model.TCPFlagURG},
	} {
		if b.set {
			f |= b.flag
		}
	}
	return f
}
