package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chenzhangda16/paygraph/internal/paygraph/ingest"
	"github.com/chenzhangda16/paygraph/internal/paygraph/processor"
)

const produceBatch = 500

// NewProduceCommand publishes a payment file to the topic "consume" reads.
func NewProduceCommand() *cobra.Command {
	var (
		brokers string
		topic   string
		input   string
	)

	command := &cobra.Command{
		Use:   "produce",
		Short: "Publish payment lines to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer func() { _ = log.Sync() }()
			ctx, cancel := signalContext(cmd, log)
			defer cancel()

			var r io.Reader = cmd.InOrStdin()
			if input != stdio {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				r = f
			}

			cfg := sarama.NewConfig()
			cfg.Producer.Return.Successes = true
			cfg.Producer.RequiredAcks = sarama.WaitForAll
			// a single partition keeps the feed in file order
			cfg.Producer.Partitioner = sarama.NewManualPartitioner
			p, err := sarama.NewSyncProducer(processor.SplitCSV(brokers), cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			n, err := publishLines(ctx, p, topic, r, log)
			log.Infow("produce done", "topic", topic, "sent", n)
			return err
		},
	}
	fs := command.Flags()
	fs.StringVar(&brokers, "brokers", "127.0.0.1:9092", "comma separated Kafka brokers")
	fs.StringVar(&topic, "topic", "venmo.payments", "payment topic")
	fs.StringVarP(&input, "input", "i", stdio, `payment file, "-" for stdin`)
	return command
}

// publishLines sends every non-blank line of r in batches. Lines are not
// validated here; the consumer skips what it cannot parse.
func publishLines(ctx context.Context, p sarama.SyncProducer, topic string, r io.Reader, log *zap.SugaredLogger) (int, error) {
	sent := 0
	batch := make([]*sarama.ProducerMessage, 0, produceBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.SendMessages(batch); err != nil {
			return fmt.Errorf("send batch after %d lines: %w", sent, err)
		}
		sent += len(batch)
		log.Debugw("batch sent", "sent", sent)
		batch = batch[:0]
		return nil
	}

	err := ingest.ScanLines(ctx, r, func(line []byte) error {
		if len(line) == 0 {
			return nil
		}
		batch = append(batch, &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.ByteEncoder(append([]byte(nil), line...)),
		})
		if len(batch) == produceBatch {
			return flush()
		}
		return nil
	})
	if err != nil {
		return sent, err
	}
	return sent, flush()
}
