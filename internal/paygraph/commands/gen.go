package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/chenzhangda16/paygraph/internal/paygraph/gen"
	"github.com/chenzhangda16/paygraph/pkg/rng"
)

func NewGenCommand() *cobra.Command {
	var (
		count  int
		seed   int64
		clock  bool
		output string
		cfg    = gen.DefaultConfig()
	)

	command := &cobra.Command{
		Use:   "gen",
		Short: "Generate synthetic payment lines",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			mode := rng.Deterministic
			if clock {
				mode = rng.Real
			}
			rf := rng.New(mode, seed)
			g, err := gen.NewPaymentGen(cfg, rf)
			if err != nil {
				return err
			}
			if clock {
				fmt.Fprintf(cmd.ErrOrStderr(), "gen: seed %d, replay with --seed\n", rf.Seed())
			}

			w := cmd.OutOrStdout()
			if output != stdio {
				var f *os.File
				if f, err = os.Create(output); err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() { err = multierr.Append(err, f.Close()) }()
				w = f
			}
			bw := bufio.NewWriterSize(w, 64<<10)
			if err := g.WriteLines(cmd.Context(), bw, count); err != nil {
				return err
			}
			return bw.Flush()
		},
	}
	fs := command.Flags()
	fs.IntVarP(&count, "count", "n", 1000, "number of payments")
	fs.Int64Var(&seed, "seed", 1, "seed of the deterministic random streams")
	fs.BoolVar(&clock, "real", false, "seed from the clock instead of --seed")
	fs.StringVarP(&output, "output", "o", stdio, `output file, "-" for stdout`)
	fs.IntVar(&cfg.Users, "users", cfg.Users, "number of distinct participants")
	fs.Int64Var(&cfg.Start, "start", cfg.Start, "unix time of the first payment")
	fs.Int64Var(&cfg.MaxStep, "max-step", cfg.MaxStep, "max seconds between in-order payments")
	fs.Int64Var(&cfg.WindowSec, "window-sec", cfg.WindowSec, "window the late and gap shifts are sized to")
	fs.Float64Var(&cfg.LateRatio, "late-ratio", cfg.LateRatio, "share of out-of-order payments, about half of them stale")
	fs.Float64Var(&cfg.GapRatio, "gap-ratio", cfg.GapRatio, "share of payments jumping past the window")
	return command
}
