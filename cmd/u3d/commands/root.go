package commands

import (
	"context"
	"fmt"
	"os"
	"u3d/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool

	cfg     Config
	otelTel telemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "u3d.json5", "The configuration file to read.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug output.")
}

var rootCmd = &cobra.Command{
	Use:           "u3d",
	Short:         "u3d lists the Unity editor versions that can be downloaded.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		loaded, err := loadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		cfg = loaded

		otelTel, err = telemetry.Setup(cmd.Context(), "u3d", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return otelTel.Shutdown(cmd.Context())
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
