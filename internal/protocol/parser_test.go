package protocol

import (
	"net"
	"testing"
	"time"

	"Go2NetFixtures/internal/capture"
	"Go2NetFixtures/internal/generator"
	"Go2NetFixtures/internal/model"

	"github.com/google/gopacket"
)

var target = net.IPv4(192, 168, 1, 100).To4()

func frames(t *testing.T, name string, count int) ([]*model.PacketDescriptor, [][]byte) {
	t.Helper()
	a, _ := generator.Lookup(name)
	descs, err := a.Generate(generator.NewSource(3), target, count)
	if err != nil {
		t.Fatalf("Failed to generate %s: %v", name, err)
	}
	out := make([][]byte, len(descs))
	for i, d := range descs {
		out[i], err = capture.Serialize(d)
		if err != nil {
			t.Fatalf("Failed to serialize record %d: %v", i, err)
		}
	}
	return descs, out
}

func TestParsePacket(t *testing.T) {
	for _, a := range generator.All() {
		descs, raw := frames(t, a.Name, 20)
		for i, data := range raw {
			info, err := DecodeFrame(data, gopacket.CaptureInfo{Timestamp: time.Unix(10, 0)})
			if err != nil {
				t.Fatalf("%s record %d: %v", a.Name, i, err)
			}
			d := descs[i]

			if !info.FiveTuple.SrcIP.Equal(d.Network.SrcIP) {
				t.Errorf("%s record %d: source %v, want %v", a.Name, i, info.FiveTuple.SrcIP, d.Network.SrcIP)
			}
			if !info.FiveTuple.DstIP.Equal(target) {
				t.Errorf("%s record %d: destination %v", a.Name, i, info.FiveTuple.DstIP)
			}
			if info.FiveTuple.Protocol != uint8(d.Network.Protocol) {
				t.Errorf("%s record %d: protocol %d, want %d", a.Name, i, info.FiveTuple.Protocol, d.Network.Protocol)
			}
			if info.TTL != d.Network.TTL {
				t.Errorf("%s record %d: TTL %d, want %d", a.Name, i, info.TTL, d.Network.TTL)
			}
			if info.FiveTuple.SrcPort != d.SrcPort() || info.FiveTuple.DstPort != d.DstPort() {
				t.Errorf("%s record %d: ports %d->%d, want %d->%d", a.Name, i,
					info.FiveTuple.SrcPort, info.FiveTuple.DstPort, d.SrcPort(), d.DstPort())
			}
			if d.TCP != nil && info.TCPFlags != d.TCP.Flags {
				t.Errorf("%s record %d: flags %s, want %s", a.Name, i, info.TCPFlags, d.TCP.Flags)
			}
			if d.DNS == nil && d.TCP == nil && string(info.Payload) != string(d.Payload) {
				t.Errorf("%s record %d: payload differs", a.Name, i)
			}
			if !info.Timestamp.Equal(time.Unix(10, 0)) {
				t.Errorf("%s record %d: timestamp %v", a.Name, i, info.Timestamp)
			}
		}
	}
}

func TestParsePacketDNS(t *testing.T) {
	_, raw := frames(t, generator.DNSAmp, 5)
	for i, data := range raw {
		info, err := DecodeFrame(data, gopacket.CaptureInfo{})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if info.DNS == nil {
			t.Fatalf("record %d: DNS layer not decoded", i)
		}
		if !info.DNS.Response || info.DNS.Name != "example.com" {
			t.Errorf("record %d: unexpected DNS record %+v", i, info.DNS)
		}
	}
}

func TestParsePacketFragments(t *testing.T) {
	descs, raw := frames(t, generator.Fragment, 3)
	for i := 0; i < len(raw); i += 2 {
		head, err := DecodeFrame(raw[i], gopacket.CaptureInfo{})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		tail, err := DecodeFrame(raw[i+1], gopacket.CaptureInfo{})
		if err != nil {
			t.Fatalf("record %d: %v", i+1, err)
		}
		if head.IPFlags&model.IPFlagMoreFragments == 0 || !head.TCPFlags.Has(model.TCPFlagSYN) {
			t.Errorf("record %d: first fragment decoded as %+v", i, head)
		}
		if tail.FragOffset != 8 || tail.IPID != head.IPID {
			t.Errorf("record %d: second fragment offset=%d id=%d, head id=%d", i+1, tail.FragOffset, tail.IPID, head.IPID)
		}
		if string(tail.Payload) != string(descs[i+1].Payload) {
			t.Errorf("record %d: fragment payload differs", i+1)
		}
	}
}

func TestParsePacketRejectsNonIPv4(t *testing.T) {
	arp := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02, 0, 0, 0, 0, 1, 0x08, 0x06,
		0, 1, 8, 0, 6, 4, 0, 1, 2, 0, 0, 0, 0, 1, 10, 0, 0, 1, 0, 0, 0, 0, 0, 0, 10, 0, 0, 2,
	}
	if _, err := DecodeFrame(arp, gopacket.CaptureInfo{}); err == nil {
		t.Fatal("Expected an error for an ARP frame")
	}
}
