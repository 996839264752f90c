package commands

import (
	"github.com/spf13/cobra"

	"github.com/chenzhangda16/paygraph/internal/paygraph/config"
	"github.com/chenzhangda16/paygraph/internal/paygraph/processor"
)

// streamFlags are shared by every command that processes payments.
type streamFlags struct {
	windowSec       int64
	medianStrategy  string
	checkInvariants bool
	logEvery        int64
	metricsAddr     string
	sqlDriver       string
	sqlDSN          string
	archivePath     string
}

func (f *streamFlags) bind(cmd *cobra.Command) {
	d := config.Default()
	fs := cmd.Flags()
	fs.Int64Var(&f.windowSec, "window-sec", d.WindowSec, "window width in seconds")
	fs.StringVar(&f.medianStrategy, "median", d.Median, "median strategy: incremental or recompute")
	fs.BoolVar(&f.checkInvariants, "check-invariants", false, "verify graph invariants after every payment")
	fs.Int64Var(&f.logEvery, "log-every", d.LogEvery, "log progress every N payments, 0 disables")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	fs.StringVar(&f.sqlDriver, "sql-driver", "", "also write medians to SQL: pgx or sqlite")
	fs.StringVar(&f.sqlDSN, "sql-dsn", "", "SQL data source, Postgres URL or SQLite file")
	fs.StringVar(&f.archivePath, "archive", "", "also archive medians in a RocksDB directory")
}

// apply overrides cfg with the flags the user set explicitly.
func (f *streamFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("window-sec") {
		cfg.WindowSec = f.windowSec
	}
	if fs.Changed("median") {
		cfg.Median = f.medianStrategy
	}
	if fs.Changed("check-invariants") {
		cfg.CheckInvariants = f.checkInvariants
	}
	if fs.Changed("log-every") {
		cfg.LogEvery = f.logEvery
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if fs.Changed("sql-driver") {
		cfg.SQL.Driver = f.sqlDriver
	}
	if fs.Changed("sql-dsn") {
		cfg.SQL.DSN = f.sqlDSN
	}
	if fs.Changed("archive") {
		cfg.ArchivePath = f.archivePath
	}
}

func processorConfig(cfg config.Config, stream string) processor.Config {
	return processor.Config{
		Stream:          stream,
		WindowSec:       cfg.WindowSec,
		Recompute:       cfg.Median == config.MedianRecompute,
		CheckInvariants: cfg.CheckInvariants,
		LogEvery:        cfg.LogEvery,
		Retry:           cfg.RetryPolicy(),
	}
}
