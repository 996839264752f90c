package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
)

// Consumer reads payment lines from a Kafka topic. Every claimed partition is
// an independent stream with its own graph state, rebuilt from scratch after a
// rebalance.
type Consumer struct {
	group sarama.ConsumerGroup
	topic string
	log   *zap.SugaredLogger
}

func NewConsumer(brokersCSV, groupID, topic string, log *zap.SugaredLogger) (*Consumer, error) {
	brokers := SplitCSV(brokersCSV)

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	cg, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return NewConsumerFromGroup(cg, topic, log), nil
}

func NewConsumerFromGroup(cg sarama.ConsumerGroup, topic string, log *zap.SugaredLogger) *Consumer {
	return &Consumer{group: cg, topic: topic, log: log.Named("consumer")}
}

func (c *Consumer) Close() error { return c.group.Close() }

// Run consumes until ctx is done. cfg is the template for every partition's
// processor; its Stream is replaced with "<topic>/<partition>". sink must be
// safe for concurrent use.
func (c *Consumer) Run(ctx context.Context, cfg Config, sink out.Sink) error {
	h := &claimHandler{cfg: cfg, sink: sink, log: c.log}

	go func() {
		for err := range c.group.Errors() {
			c.log.Warnw("consumer group error", "err", err)
		}
	}()

	// sarama requires Consume to be re-run after every rebalance
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warnw("consume failed", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(300 * time.Millisecond):
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type claimHandler struct {
	cfg  Config
	sink out.Sink
	log  *zap.SugaredLogger
}

func (h *claimHandler) Setup(s sarama.ConsumerGroupSession) error {
	h.log.Infow("session start", "member", s.MemberID(), "generation", s.GenerationID(), "claims", s.Claims())
	return nil
}

func (h *claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	cfg := h.cfg
	cfg.Stream = StreamName(claim.Topic(), claim.Partition())
	p := New(cfg, h.sink, h.log)

	ctx := sess.Context()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := p.HandleLine(ctx, msg.Value); err != nil {
				return err
			}
			sess.MarkMessage(msg, "")
		case <-ctx.Done():
			return nil
		}
	}
}

func StreamName(topic string, partition int32) string {
	return fmt.Sprintf("%s/%d", topic, partition)
}

func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, x := range parts {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
