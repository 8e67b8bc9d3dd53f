// Package mq 提供基于 Kafka 的领域事件发布器
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/pkg/logging"
)

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers      []string
	TopicPrefix  string
	MaxRetries   int
	RetryBackoff int
}

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer Kafka 生产者，实现各上下文的 EventPublisher
type KafkaProducer struct {
	writer messageWriter
	prefix string
}

// NewProducer 创建 Kafka 生产者
func NewProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        time.Duration(cfg.RetryBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.RetryBackoff*10) * time.Millisecond,
	}

	logging.Info(context.Background(), "Kafka producer created successfully", "brokers", cfg.Brokers)
	return &KafkaProducer{writer: writer, prefix: cfg.TopicPrefix}, nil
}

// Topic 返回带前缀的完整 topic 名称
func (kp *KafkaProducer) Topic(topic string) string {
	if kp.prefix == "" {
		return topic
	}
	return kp.prefix + "." + topic
}

// Publish 以 JSON 发布单条事件，key 决定分区
func (kp *KafkaProducer) Publish(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	full := kp.Topic(topic)
	msg := kafka.Message{
		Topic: full,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logging.Error(ctx, "Failed to send Kafka message", "topic", full, "key", key, "error", err)
		return err
	}

	logging.Debug(ctx, "Kafka message sent", "topic", full, "key", key)
	return nil
}

// Close 关闭生产者
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}

// NoopPublisher Kafka 未启用时使用，丢弃所有事件
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(ctx context.Context, topic, key string, _ any) error {
	logging.Debug(ctx, "event dropped, kafka disabled", "topic", topic, "key", key)
	return nil
}

// Close 无操作
func (NoopPublisher) Close() error { return nil }
