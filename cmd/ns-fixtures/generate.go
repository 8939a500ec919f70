package main

import (
	"Go2NetFixtures/internal/catalog"
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/manager"
	"Go2NetFixtures/internal/manifest"
	"Go2NetFixtures/internal/model"
	"Go2NetFixtures/internal/notification"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	output   string
	target   string
	count    int
	seed     uint64
	only     []string
	parallel int
}

var generateCmd = &cobra.Command{
	Use:   "generate [output_dir]",
	Short: "Write one capture file per archetype",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyGenerateFlags(cmd, args, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		recorders, err := buildRecorders(ctx, cfg)
		if err != nil {
			return err
		}

		m, err := manager.NewManager(cfg, recorders...)
		if err != nil {
			return errors.Join(err, closeAll(recorders))
		}

		fmt.Printf("=== Generating test packet fixtures in %s/ (seed %d) ===\n\n", cfg.Output.Dir, m.Seed())
		results, runErr := m.Run(ctx)
		written := 0
		for _, r := range results {
			if r.Err != nil && r.Packets == 0 {
				fmt.Printf("  %s: FAILED (%v)\n", r.Archetype, r.Err)
				continue
			}
			written++
			fmt.Printf("  %s: %d packets\n", filepath.Base(r.Path), r.Packets)
		}
		closeErr := m.Close()
		fmt.Printf("\nDone. Generated %d pcap files.\n", written)

		return errors.Join(runErr, closeErr)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateFlags.output, "output", "o", "", "output directory (overrides output.dir)")
	f.StringVarP(&generateFlags.target, "target", "t", "", "victim IPv4 address (overrides generator.target)")
	f.IntVarP(&generateFlags.count, "count", "n", config.DefaultCount, "packets per archetype")
	f.Uint64Var(&generateFlags.seed, "seed", 0, "base random seed, 0 for time based")
	f.StringSliceVar(&generateFlags.only, "only", nil, "comma separated archetypes to build (default all)")
	f.IntVarP(&generateFlags.parallel, "parallel", "p", 1, "archetypes generated concurrently")
}

func applyGenerateFlags(cmd *cobra.Command, args []string, cfg *config.Config) {
	flags := cmd.Flags()
	if len(args) == 1 {
		cfg.Output.Dir = args[0]
	}
	if flags.Changed("output") {
		cfg.Output.Dir = generateFlags.output
	}
	if flags.Changed("target") {
		cfg.Generator.Target = generateFlags.target
	}
	if flags.Changed("count") {
		cfg.Generator.Count = generateFlags.count
	}
	if flags.Changed("seed") {
		cfg.Generator.Seed = generateFlags.seed
	}
	if flags.Changed("only") {
		cfg.Generator.Archetypes = generateFlags.only
	}
	if flags.Changed("parallel") {
		cfg.Generator.Parallel = generateFlags.parallel
	}
}

// buildRecorders opens every recorder enabled in cfg.
func buildRecorders(ctx context.Context, cfg *config.Config) ([]model.Recorder, error) {
	var recorders []model.Recorder
	if cfg.Output.Manifest {
		recorders = append(recorders, manifest.NewWriter(cfg.Output.Dir))
	}
	if cfg.NATS.Enabled {
		pub, err := notification.NewPublisher(cfg.NATS)
		if err != nil {
			return nil, errors.Join(err, closeAll(recorders))
		}
		recorders = append(recorders, pub)
	}
	if cfg.ClickHouse.Enabled {
		ch, err := catalog.NewClickHouseRecorder(ctx, cfg.ClickHouse)
		if err != nil {
			return nil, errors.Join(err, closeAll(recorders))
		}
		recorders = append(recorders, ch)
	}
	log.WithField("recorders", len(recorders)).Debug("Recorders ready")
	return recorders, nil
}

func closeAll(recorders []model.Recorder) error {
	var errs []error
	for _, r := range recorders {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
