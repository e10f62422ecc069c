package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
)

// Producer publishes outbox events synchronously. Delivery is tuned for the
// relay: idempotent, acked by all in-sync replicas, so a claimed event is
// either durably published or reported back for the worker's own backoff.
type Producer struct {
	sync sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
		cfg.Producer.Retry.Max = 5
		cfg.Producer.Compression = sarama.CompressionSnappy
	}
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	// the idempotent producer requires a single in-flight request
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Return.Successes = true
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

// Publish sends one event. The key is the aggregate identifier, so events for
// the same aggregate land on one partition in order; headers carry the
// CloudEvents metadata alongside the envelope.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	}
	if len(headers) > 0 {
		msg.Headers = make([]sarama.RecordHeader, 0, len(headers))
		for k, v := range headers {
			msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
		}
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
