package capture

import (
	"errors"
	"fmt"

	"Go2NetFixtures/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// maxIPv4Length is the largest value of the IPv4 total length field.
const maxIPv4Length = 65535

var serializeOptions = gopacket.SerializeOptions{
	ComputeChecksums: true,
	FixLengths:       true,
}

// Layers converts a descriptor into the gopacket layer stack the writer
// serializes, from the link layer to the payload.
func Layers(d *model.PacketDescriptor) ([]gopacket.SerializableLayer, error) {
	if d == nil {
		return nil, errors.New("nil descriptor")
	}
	if d.Network.SrcIP.To4() == nil || d.Network.DstIP.To4() == nil {
		return nil, fmt.Errorf("descriptor addresses %v -> %v are not IPv4", d.Network.SrcIP, d.Network.DstIP)
	}

	eth := &layers.Ethernet{
		SrcMAC:       d.Link.SrcMAC,
		DstMAC:       d.Link.DstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:    4,
		TTL:        d.Network.TTL,
		Id:         d.Network.ID,
		Flags:      ipFlags(d.Network.Flags),
		FragOffset: d.Network.FragOffset,
		Protocol:   layers.IPProtocol(d.Network.Protocol),
		SrcIP:      d.Network.SrcIP.To4(),
		DstIP:      d.Network.DstIP.To4(),
	}
	stack := []gopacket.SerializableLayer{eth, ip}

	switch {
	case d.TCP != nil:
		tcp := &layers.TCP{
			SrcPort: layers.TCPPort(d.TCP.SrcPort),
			DstPort: layers.TCPPort(d.TCP.DstPort),
			Seq:     d.TCP.Seq,
			Ack:     d.TCP.Ack,
			Window:  d.TCP.Window,
			FIN:     d.TCP.Flags.Has(model.TCPFlagFIN),
			SYN:     d.TCP.Flags.Has(model.TCPFlagSYN),
			RST:     d.TCP.Flags.Has(model.TCPFlagRST),
			PSH:     d.TCP.Flags.Has(model.TCPFlagPSH),
			ACK:     d.TCP.Flags.Has(model.TCPFlagACK),
			URG:     d.TCP.Flags.Has(model.TCPFlagURG),
		}
		if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
			return nil, err
		}
		stack = append(stack, tcp)
	case d.UDP != nil:
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(d.UDP.SrcPort),
			DstPort: layers.UDPPort(d.UDP.DstPort),
		}
		if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
			return nil, err
		}
		stack = append(stack, udp)
	case d.ICMP != nil:
		stack = append(stack, &layers.ICMPv4{
			TypeCode: layers.CreateICMPv4TypeCode(d.ICMP.Type, d.ICMP.Code),
			Id:       d.ICMP.ID,
			Seq:      d.ICMP.Seq,
		})
	}

	if d.DNS != nil {
		stack = append(stack, dnsLayer(d.DNS))
	}
	if len(d.Payload) > 0 {
		stack = append(stack, gopacket.Payload(d.Payload))
	}
	return stack, nil
}

func dnsLayer(r *model.DNSRecord) *layers.DNS {
	dns := &layers.DNS{
		ID:      r.ID,
		QR:      r.Response,
		OpCode:  layers.DNSOpCodeQuery,
		RD:      true,
		RA:      r.Response,
		QDCount: 1,
		Questions: []layers.DNSQuestion{{
			Name:  []byte(r.Name),
			Type:  layers.DNSTypeA,
			Class: layers.DNSClassIN,
		}},
	}
	return dns
}

func ipFlags(f model.IPFlags) layers.IPv4Flag {
	var out layers.IPv4Flag
	if f&model.IPFlagMoreFragments != 0 {
		out |= layers.IPv4MoreFragments
	}
	if f&model.IPFlagDontFragment != 0 {
		out |= layers.IPv4DontFragment
	}
	return out
}

// Serialize returns the frame bytes of one descriptor. Every length and
// checksum field is computed here.
func Serialize(d *model.PacketDescriptor) ([]byte, error) {
	if d == nil {
		return nil, &SerializationError{Err: errors.New("nil descriptor")}
	}
	if n := d.NetworkLen(); n > maxIPv4Length {
		return nil, &SerializationError{Length: n, Limit: maxIPv4Length}
	}
	stack, err := Layers(d)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, serializeOptions, stack...); err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("failed to serialize layers: %w", err)}
	}
	return buf.Bytes(), nil
}
