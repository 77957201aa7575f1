package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	noCache    bool
)

var rootCmd = &cobra.Command{
	Use:   "europarl-cli",
	Short: "europarl-cli reads roll-call votes, members and documents of the European Parliament.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The config file to read, missing files fall back to defaults.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug output.")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Do not read or write cached api responses.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
