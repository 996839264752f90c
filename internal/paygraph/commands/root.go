package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chenzhangda16/paygraph/internal/paygraph/config"
	"github.com/chenzhangda16/paygraph/internal/paygraph/logging"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "paygraph",
	Short: "Rolling median degree of a windowed payment graph",
	Long: `paygraph reads payment records (one JSON object per line), keeps the graph
of who paid whom within a trailing time window and emits the median number of
counterparties per participant after every payment.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file, flags override its values")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewConsumeCommand())
	rootCmd.AddCommand(NewGenCommand())
	rootCmd.AddCommand(NewDumpCommand())
	rootCmd.AddCommand(NewProduceCommand())
}

func newLogger() *zap.SugaredLogger {
	if debug {
		return logging.NewDebugLogger()
	}
	return logging.NewLogger()
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// signalContext is canceled on SIGINT or SIGTERM and carries the logger.
func signalContext(cmd *cobra.Command, log *zap.SugaredLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return logging.WithLogger(ctx, log), cancel
}
