package main

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"casebridge/internal/casesource"
	"casebridge/pkg/requestcontext"
)

type buildOptions struct {
	casePath string
	format   string
	pretty   bool
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the mapping context for one case document",
		Long: `Decodes a case document in the named upstream format, resolves it against
the configured reference data and prints the mapping context as JSON.

A required reference-data failure exits non-zero with the failure message.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.casePath, "case", "", "path to the case document (required)")
	cmd.Flags().StringVar(&opts.format, "format", string(casesource.FormatEBS), "case document format: ebs or soa")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	_ = cmd.MarkFlagRequired("case")
	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions) error {
	format, err := casesource.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	f, err := os.Open(opts.casePath)
	if err != nil {
		return fmt.Errorf("open case document: %w", err)
	}
	defer f.Close()
	record, err := casesource.Decode(format, f)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
	ctx = requestcontext.WithTime(ctx, time.Now())
	mc, err := a.service.BuildMappingContext(ctx, record)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(mc)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
