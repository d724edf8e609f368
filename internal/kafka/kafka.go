package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/moneylinearb/internal/logging"
)

const (
	DefaultBroker        = "kafka-broker:9092"
	DefaultSnapshotTopic = "odds.snapshots"
	DefaultResultsTopic  = "arb.results"
)

// Brokers reads KAFKA_BROKERS.
func Brokers() []string {
	return ParseBrokers(os.Getenv("KAFKA_BROKERS"))
}

// ParseBrokers splits a comma separated broker list, falling back to DefaultBroker.
func ParseBrokers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultBroker
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TopicOr returns topic, or fallback when it is empty.
func TopicOr(topic, fallback string) string {
	if topic != "" {
		return topic
	}
	return fallback
}

// WaitForBroker polls the brokers once a second until any of them accepts a
// connection.
func WaitForBroker(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; ; attempt++ {
		for _, addr := range brokers {
			conn, err := kafka.DialContext(ctx, "tcp", addr)
			if err == nil {
				conn.Close()
				if attempt > 1 {
					logging.Infof("[kafka] broker %s reachable after %d attempts", addr, attempt)
				}
				return nil
			}
			lastErr = err
		}
		if attempt%10 == 0 {
			logging.Warnf("[kafka] still waiting for %s: %v", strings.Join(brokers, ","), lastErr)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for broker: %w (last error: %v)", ctx.Err(), lastErr)
		case <-ticker.C:
		}
	}
}

// EnsureTopics creates any missing topics through the cluster controller.
func EnsureTopics(ctx context.Context, brokers []string, partitions int, topics ...string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}
	if len(topics) == 0 {
		return nil
	}
	if partitions <= 0 {
		partitions = 3
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer ctrlConn.Close()

	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafka.TopicConfig{Topic: topic, NumPartitions: partitions, ReplicationFactor: 1})
	}
	if err := ctrlConn.CreateTopics(configs...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topics %s: %w", strings.Join(topics, ","), err)
	}
	return nil
}

// maxSnapshotBytes bounds one fetch; a full-slate snapshot is a few hundred KB.
const maxSnapshotBytes = 20 << 20

// NewWriter keys by message key, so every snapshot for one sport (or result for
// one pair) lands on the same partition and stays ordered.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewReader joins group on topic, starting from the newest offset when the group
// has no commit; stale snapshots are not worth replaying.
func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		Topic:             topic,
		GroupID:           group,
		MinBytes:          1,
		MaxBytes:          maxSnapshotBytes,
		MaxWait:           time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		CommitInterval:    time.Second,
		StartOffset:       kafka.LastOffset,
	})
}
