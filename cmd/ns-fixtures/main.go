package main

import (
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/logger"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ns-fixtures",
	Short: "Synthesize labeled DDoS and baseline traffic capture files",
	Long: `ns-fixtures builds pcap fixtures for testing traffic classifiers and
mitigation pipelines: SYN/UDP/ICMP/ACK floods, DNS/NTP/SSDP amplification,
IP fragment attacks, a legitimate baseline and a mixed capture.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		return logger.Setup(cfg.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(generateCmd, serveCmd, inspectCmd, watchCmd, archetypesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
