package main

import (
	"Go2NetFixtures/internal/generator"
	"Go2NetFixtures/internal/model"
	"Go2NetFixtures/internal/notification"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print fixture events published on NATS",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := notification.NewSubscriber(cfg.NATS)
		if err != nil {
			return err
		}
		defer sub.Close()

		handler := func(s model.FixtureSummary) {
			log.WithFields(log.Fields{
				"run_id":    s.RunID,
				"archetype": s.Archetype,
				"path":      s.Path,
				"packets":   s.Packets,
				"bytes":     s.Bytes,
			}).Info("Fixture written")
		}
		if err := sub.Start(handler); err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("Shutdown signal received, cleaning up...")
		return nil
	},
}

var archetypesCmd = &cobra.Command{
	Use:   "archetypes",
	Short: "List the traffic archetypes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, a := range generator.All() {
			fmt.Printf("%-14s %-20s %s\n", a.Name, a.FileName, a.Description)
		}
	},
}
