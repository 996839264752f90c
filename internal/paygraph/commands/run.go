package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chenzhangda16/paygraph/internal/paygraph/config"
	"github.com/chenzhangda16/paygraph/internal/paygraph/metrics"
	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
	"github.com/chenzhangda16/paygraph/internal/paygraph/processor"
)

// "-" stands for stdin or stdout
const stdio = "-"

func NewRunCommand() *cobra.Command {
	var (
		sf        streamFlags
		inputs    []string
		output    string
		outputDir string
	)

	command := &cobra.Command{
		Use:   "run",
		Short: "Process payment files and write one median per payment",
		Long: `Process payment files. Every input file is an independent stream with its own
graph, processed concurrently. With a single input the medians go to --output;
with several, each input gets <output-dir>/<name>.out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sf.apply(cmd, &cfg)
			if cmd.Flags().Changed("input") {
				cfg.Inputs = inputs
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runFiles(cmd, cfg)
		},
	}
	sf.bind(command)
	d := config.Default()
	command.Flags().StringSliceVarP(&inputs, "input", "i", d.Inputs, `payment files, "-" for stdin`)
	command.Flags().StringVarP(&output, "output", "o", d.Output, `median file for a single input, "-" for stdout`)
	command.Flags().StringVar(&outputDir, "output-dir", "", "directory for per-input median files")
	return command
}

type fileStream struct {
	input  string
	output string
}

func planStreams(cfg config.Config) ([]fileStream, error) {
	if len(cfg.Inputs) == 0 {
		return nil, errors.New("no input given")
	}
	if len(cfg.Inputs) == 1 && cfg.OutputDir == "" {
		return []fileStream{{input: cfg.Inputs[0], output: cfg.Output}}, nil
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("several inputs need --output-dir")
	}
	plan := make([]fileStream, 0, len(cfg.Inputs))
	seen := map[string]string{}
	for _, in := range cfg.Inputs {
		if in == stdio {
			return nil, errors.New("stdin can only be used as the single input")
		}
		name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".out"
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("inputs %s and %s map to the same output %s", prev, in, name)
		}
		seen[name] = in
		plan = append(plan, fileStream{input: in, output: filepath.Join(cfg.OutputDir, name)})
	}
	return plan, nil
}

func runFiles(cmd *cobra.Command, cfg config.Config) (err error) {
	log := newLogger()
	defer func() { _ = log.Sync() }()
	ctx, cancel := signalContext(cmd, log)
	defer cancel()

	plan, err := planStreams(cfg)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		mctx, mcancel := context.WithCancel(ctx)
		defer mcancel()
		go func() {
			if err := metrics.Serve(mctx, cfg.MetricsAddr, log); err != nil {
				log.Errorw("metrics server failed", "err", err)
			}
		}()
	}

	shared, err := sharedSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, shared.Close()) }()

	log.Infow("run start", "streams", len(plan), "window_sec", cfg.WindowSec, "median", cfg.Median)
	g, gctx := errgroup.WithContext(ctx)
	for _, fs := range plan {
		fs := fs
		g.Go(func() error {
			return runFile(gctx, cmd, cfg, fs, shared, log)
		})
	}
	return g.Wait()
}

func runFile(ctx context.Context, cmd *cobra.Command, cfg config.Config, fs fileStream, shared out.Fanout, log *zap.SugaredLogger) (err error) {
	var r io.Reader = cmd.InOrStdin()
	if fs.input != stdio {
		f, err := os.Open(fs.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var fileSink *out.WriterSink
	if fs.output == stdio {
		fileSink = out.NewWriterSink(cmd.OutOrStdout())
	} else {
		fileSink, err = out.NewFileSink(fs.output)
		if err != nil {
			return err
		}
	}
	defer func() { err = multierr.Append(err, fileSink.Close()) }()

	sink := out.Fanout{fileSink}
	for _, s := range shared {
		sink = append(sink, out.NopCloser(s))
	}

	p := processor.New(processorConfig(cfg, fs.input), sink, log)
	if err := p.Run(ctx, r); err != nil {
		return fmt.Errorf("stream %s: %w", fs.input, err)
	}
	return nil
}
