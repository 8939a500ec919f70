package main

import (
	"Go2NetFixtures/internal/model"
	"Go2NetFixtures/pkg/pcap"
	"fmt"

	"github.com/spf13/cobra"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect <path_to_pcap_file>",
	Short: "Print the records of a capture file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := pcap.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		out := make(chan *model.PacketInfo)
		go reader.ReadPackets(out)

		i := 0
		for info := range out {
			i++
			if inspectLimit <= 0 || i <= inspectLimit {
				fmt.Println(formatPacket(info))
			}
		}
		fmt.Printf("%d records\n", i)
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 10, "records to print, 0 for all")
}

func formatPacket(p *model.PacketInfo) string {
	line := fmt.Sprintf("%s - %s:%d -> %s:%d, Proto: %s, TTL: %d, Len: %d",
		p.Timestamp.Format("2006-01-02 15:04:05.000"),
		p.FiveTuple.SrcIP, p.FiveTuple.SrcPort,
		p.FiveTuple.DstIP, p.FiveTuple.DstPort,
		model.Protocol(p.FiveTuple.Protocol), p.TTL, p.Length,
	)
	if p.TCPFlags != 0 {
		line += fmt.Sprintf(", Flags: %s", p.TCPFlags)
	}
	if p.FiveTuple.Protocol == uint8(model.ProtocolICMP) {
		line += fmt.Sprintf(", ICMP: %d/%d", p.ICMPType, p.ICMPCode)
	}
	if p.IPFlags&model.IPFlagMoreFragments != 0 || p.FragOffset != 0 {
		line += fmt.Sprintf(", Frag: id=%d off=%d mf=%t", p.IPID, p.FragOffset, p.IPFlags&model.IPFlagMoreFragments != 0)
	}
	if p.DNS != nil {
		line += fmt.Sprintf(", DNS: %s qr=%t", p.DNS.Name, p.DNS.Response)
	}
	return line
}
