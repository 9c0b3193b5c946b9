package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"phenocore/internal/infra/blob"
	"phenocore/internal/infra/persistence/postgres"
	"phenocore/internal/infra/persistence/sqlite"
	"phenocore/internal/observability"
	"phenocore/internal/scenario"
	"phenocore/internal/simulation"
)

type runFlags struct {
	configPath  string
	dbPath      string
	postgresDSN string
	reportPath  string
	tracePath   string
	archive     bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation described by a scenario file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScenario(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "scenario YAML file (required)")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "record the step series to this SQLite file")
	cmd.Flags().StringVar(&flags.postgresDSN, "postgres", "", "record the step series to this Postgres DSN")
	cmd.Flags().StringVar(&flags.reportPath, "report", "", "write the run report JSON to this file instead of stdout")
	cmd.Flags().StringVar(&flags.tracePath, "trace", "", "append JSON-line step traces to this file")
	cmd.Flags().BoolVar(&flags.archive, "archive", false, "archive the report to the configured blob store")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runScenario(cmd *cobra.Command, flags *runFlags) error {
	if flags.dbPath != "" && flags.postgresDSN != "" {
		return fmt.Errorf("--db and --postgres are mutually exclusive")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := scenario.Load(flags.configPath)
	if err != nil {
		return err
	}
	template, err := cfg.Template()
	if err != nil {
		return err
	}

	var recorder simulation.Recorder
	switch {
	case flags.dbPath != "":
		store, err := sqlite.Open(flags.dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		recorder = store
	case flags.postgresDSN != "":
		store, err := postgres.Open(ctx, flags.postgresDSN)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		recorder = store
	}

	var tracer *observability.JSONStepTracer
	if flags.tracePath != "" {
		file, err := os.OpenFile(flags.tracePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = file.Close() }()
		tracer = observability.NewJSONStepTracer(file)
	}

	engine, err := simulation.NewEngine(simulation.Config{
		RunID:        cfg.RunID,
		Template:     template,
		InitialCells: cfg.InitialCells,
		Steps:        cfg.Steps,
		MaxCells:     cfg.MaxCells,
		Recorder:     recorder,
		Tracer:       tracer,
	})
	if err != nil {
		return err
	}

	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	return emitReport(ctx, cmd, flags, report)
}

func emitReport(ctx context.Context, cmd *cobra.Command, flags *runFlags, report simulation.Report) error {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	encoded = append(encoded, '\n')

	if flags.reportPath != "" {
		if err := os.WriteFile(flags.reportPath, encoded, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else {
		cmd.Print(string(encoded))
	}

	if flags.archive {
		store, err := blob.Open(ctx)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("runs/%s/report.json", report.RunID)
		info, err := store.Put(ctx, key, bytes.NewReader(encoded), blob.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"phenotype": report.Phenotype},
		})
		if err != nil {
			return fmt.Errorf("archive report: %w", err)
		}
		cmd.PrintErrf("archived report to %s (%d bytes)\n", info.Key, info.Size)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
