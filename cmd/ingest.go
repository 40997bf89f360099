package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/quantum-builds/VinAudit/config"
	"github.com/quantum-builds/VinAudit/ingest"
	"github.com/quantum-builds/VinAudit/storage"
)

func ingestCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [feed.txt]",
		Short: "Load a pipe-delimited listing feed",
		Long: `Load a pipe-delimited listing feed into the database.
Malformed records are counted and skipped; only file errors abort the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIngest(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.Int("workers", a.v.GetInt(config.KeyWorkers), "Parallel workers over disjoint line ranges")
	flags.Int("chunk-size", a.v.GetInt(config.KeyChunkSize), "Lines per work chunk")
	flags.Int("progress-interval", a.v.GetInt(config.KeyProgressInterval), "Lines between progress reports")
	flags.String("rejects", a.v.GetString(config.KeyRejectsPath), "Append rejected lines to this CSV file")

	bindFlags(a.v, flags.Lookup, map[string]string{
		config.KeyWorkers:          "workers",
		config.KeyChunkSize:        "chunk-size",
		config.KeyProgressInterval: "progress-interval",
		config.KeyRejectsPath:      "rejects",
	})

	return cmd
}

func (a *app) runIngest(cmd *cobra.Command, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input file: %s is a directory", path)
	}

	a.logger.Info("Processing file: %s", path)
	a.logger.Info("File size: %d bytes (%.2f MB, %s)", info.Size(), float64(info.Size())/(1024*1024), humanize.IBytes(uint64(info.Size())))

	ctx := cmd.Context()
	db, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var rejects storage.RejectWriter
	if a.cfg.RejectsPath != "" {
		w, err := storage.NewCSVRejectWriter(a.cfg.RejectsPath)
		if err != nil {
			return err
		}
		defer w.Close()
		rejects = w
		a.logger.Info("Writing rejected lines to %s", a.cfg.RejectsPath)
	}

	stop := a.startMetrics()
	defer stop()

	orch := ingest.NewOrchestrator(ingest.Config{
		DB:               db,
		Logger:           a.logger,
		Metrics:          a.metrics,
		Rejects:          rejects,
		Workers:          a.cfg.Workers,
		ChunkSize:        a.cfg.ChunkSize,
		ProgressInterval: a.cfg.ProgressInterval,
		ErrorDetailLimit: a.cfg.ErrorDetailLimit,
	})

	summary, err := orch.Run(ctx, path)
	ingest.PrintSummary(cmd.OutOrStdout(), summary)
	return err
}
