package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/chenzhangda16/paygraph/internal/paygraph/metrics"
	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
	"github.com/chenzhangda16/paygraph/internal/paygraph/processor"
)

func NewConsumeCommand() *cobra.Command {
	var (
		sf       streamFlags
		brokers  string
		group    string
		topic    string
		outTopic string
		output   string
	)

	command := &cobra.Command{
		Use:   "consume",
		Short: "Process payments from a Kafka topic, one stream per partition",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sf.apply(cmd, &cfg)
			fs := cmd.Flags()
			if fs.Changed("brokers") {
				cfg.Kafka.Brokers = brokers
			}
			if fs.Changed("group") {
				cfg.Kafka.Group = group
			}
			if fs.Changed("topic") {
				cfg.Kafka.Topic = topic
			}
			if fs.Changed("out-topic") {
				cfg.Kafka.OutTopic = outTopic
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Kafka.Brokers == "" || cfg.Kafka.Group == "" || cfg.Kafka.Topic == "" {
				return errors.New("brokers/group/topic required")
			}

			log := newLogger()
			defer func() { _ = log.Sync() }()
			ctx, cancel := signalContext(cmd, log)
			defer cancel()

			if cfg.MetricsAddr != "" {
				go func() {
					if err := metrics.Serve(ctx, cfg.MetricsAddr, log); err != nil {
						log.Errorw("metrics server failed", "err", err)
					}
				}()
			}

			sinks, err := sharedSinks(ctx, cfg, log)
			if err != nil {
				return err
			}
			if cfg.Kafka.OutTopic != "" {
				ks, err := out.NewKafkaSink(processor.SplitCSV(cfg.Kafka.Brokers), cfg.Kafka.OutTopic, nil)
				if err != nil {
					return multierr.Append(fmt.Errorf("open kafka sink: %w", err), sinks.Close())
				}
				log.Infow("publishing medians", "topic", cfg.Kafka.OutTopic, "run_id", ks.RunID())
				sinks = append(sinks, ks)
			}
			// the file sink is opt-in here, partitions interleave in it
			if fs.Changed("output") {
				f, err := out.NewFileSink(output)
				if err != nil {
					return multierr.Append(err, sinks.Close())
				}
				sinks = append(sinks, out.Synchronized(f))
			}
			if len(sinks) == 0 {
				return errors.New("no sink configured: set --out-topic, --output, --sql-driver or --archive")
			}
			// every member is safe for concurrent use, so the Fanout is too
			defer func() { err = multierr.Append(err, sinks.Close()) }()

			c, err := processor.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Group, cfg.Kafka.Topic, log)
			if err != nil {
				return fmt.Errorf("open consumer group: %w", err)
			}
			defer func() { err = multierr.Append(err, c.Close()) }()

			log.Infow("consuming", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group)
			if err := c.Run(ctx, processorConfig(cfg, ""), sinks); err != nil && !errors.Is(err, ctx.Err()) {
				return err
			}
			return nil
		},
	}
	sf.bind(command)
	fs := command.Flags()
	fs.StringVar(&brokers, "brokers", "127.0.0.1:9092", "comma separated Kafka brokers")
	fs.StringVar(&group, "group", "paygraph", "consumer group id")
	fs.StringVar(&topic, "topic", "venmo.payments", "payment topic")
	fs.StringVar(&outTopic, "out-topic", "paygraph.medians", `median topic, "" disables`)
	fs.StringVarP(&output, "output", "o", "", "also write medians to this file")
	return command
}
