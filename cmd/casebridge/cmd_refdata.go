package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"casebridge/internal/platform/config"
	"casebridge/internal/platform/httpserver"
	"casebridge/internal/platform/logger"
	"casebridge/internal/refdata/httpapi"
	"casebridge/internal/refdata/store/memory"
	"casebridge/internal/refdata/store/postgres"
	audit "casebridge/pkg/platform/audit"
)

func newRefdataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refdata",
		Short: "Inspect, load and serve reference data",
	}
	cmd.AddCommand(newRefdataValidateCmd())
	cmd.AddCommand(newRefdataImportCmd())
	cmd.AddCommand(newRefdataServeCmd())
	return cmd
}

func newRefdataValidateCmd() *cobra.Command {
	var seedPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a YAML seed for unknown keys and duplicate rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := memory.LoadSeedFile(seedPath)
			if err != nil {
				return err
			}
			printCounts(cmd.OutOrStdout(), seed.Counts())
			if err := seed.Validate(); err != nil {
				return fmt.Errorf("seed %s is invalid:\n%w", seedPath, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "path to the YAML seed (required)")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func newRefdataImportCmd() *cobra.Command {
	var seedPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the Postgres reference data with a YAML seed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.RefData.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to import reference data")
			}
			seed, err := loadSeed(seedPath)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			pool, err := pgxpool.New(ctx, cfg.RefData.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open reference data database: %w", err)
			}
			defer pool.Close()

			store := postgres.New(pool)
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			if err := store.Import(ctx, seed); err != nil {
				return err
			}

			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			log.InfoContext(ctx, string(audit.EventReferenceDataLoaded),
				"event", audit.EventReferenceDataLoaded,
				"log_type", "audit",
				"path", seedPath,
			)
			printCounts(cmd.OutOrStdout(), seed.Counts())
			return nil
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "path to the YAML seed (required)")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func newRefdataServeCmd() *cobra.Command {
	var seedPath, addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a YAML seed over the reference-data REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			seed, err := loadSeed(seedPath)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			router := httpapi.NewHandler(memory.New(seed), log).Router()

			log.InfoContext(ctx, "serving reference data", "addr", addr, "path", seedPath)
			return listenAndServe(ctx, httpserver.New(addr, router))
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "path to the YAML seed (required)")
	cmd.Flags().StringVar(&addr, "addr", ":8081", "listen address")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func printCounts(w io.Writer, counts map[string]int) {
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Fprintf(w, "%-22s %d\n", table, counts[table])
	}
}
