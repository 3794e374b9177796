// casebridge builds mapping contexts for legal-aid cases.
//
// Usage:
//
//	casebridge build --case case.json --format ebs [--pretty]
//	casebridge serve --addr :8080
//	casebridge refdata validate --seed seed.yaml
//	casebridge refdata import --seed seed.yaml
//	casebridge refdata serve --seed seed.yaml --addr :8081
//
// Reference data, cache, audit and logging are configured from the
// environment; see internal/platform/config.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "casebridge",
		Short:         "Aggregate legal-aid case data into mapping contexts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.AddCommand(newBuildCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newRefdataCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
