package out

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type KafkaSink struct {
	topic string
	runID string
	p     sarama.SyncProducer
}

func NewKafkaSink(brokers []string, topic string, cfg *sarama.Config) (*KafkaSink, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewKafkaSinkWithProducer(p, topic), nil
}

// NewKafkaSinkWithProducer takes ownership of p.
func NewKafkaSinkWithProducer(p sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{topic: topic, runID: uuid.NewString(), p: p}
}

func (s *KafkaSink) RunID() string { return s.runID }

func (s *KafkaSink) Close() error {
	if s.p != nil {
		return s.p.Close()
	}
	return nil
}

func (s *KafkaSink) Emit(ctx context.Context, typ string, v any) error {
	_ = ctx // SyncProducer 不吃 ctx

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	env := Envelope{
		Type:  typ,
		TS:    time.Now().UnixMilli(),
		RunID: s.runID,
		Data:  data,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Value: sarama.ByteEncoder(b),
	}
	// keep one stream's medians ordered on one partition
	if rec, ok := v.(MedianRecord); ok {
		msg.Key = sarama.StringEncoder(rec.Stream)
	}
	if _, _, err = s.p.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka emit failed: %w", err)
	}
	return nil
}
