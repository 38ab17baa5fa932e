package mq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"buddies_chat_server/internal/config"
	"buddies_chat_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaQueue Kafka 实现，eventMode 为 "kafka" 时启用
// 信封经 Kafka 中转后仍由本进程的消费循环投递到注册表
type KafkaQueue struct {
	writer *kafka.Writer
	reader *kafka.Reader

	done    chan struct{}
	closeMu sync.Once
}

// NewKafkaQueue 按配置创建 Kafka 事件队列
func NewKafkaQueue() *KafkaQueue {
	kafkaConfig := config.GetConfig().KafkaConfig

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(kafkaConfig.HostPort),
		Topic:                  kafkaConfig.EventTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkaConfig.Timeout * time.Second,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{kafkaConfig.HostPort},
		Topic:          kafkaConfig.EventTopic,
		CommitInterval: kafkaConfig.Timeout * time.Second,
		GroupID:        "broadcast",
		StartOffset:    kafka.LastOffset,
	})

	return &KafkaQueue{
		writer: writer,
		reader: reader,
		done:   make(chan struct{}),
	}
}

// CreateTopic 创建广播主题，已存在时 Kafka 返回成功
func (q *KafkaQueue) CreateTopic() error {
	kafkaConfig := config.GetConfig().KafkaConfig

	conn, err := kafka.Dial("tcp", kafkaConfig.HostPort)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "dial kafka")
	}
	defer conn.Close()

	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             kafkaConfig.EventTopic,
			NumPartitions:     kafkaConfig.Partition,
			ReplicationFactor: 1,
		},
	}
	if err := conn.CreateTopics(topicConfigs...); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "create kafka topic")
	}
	return nil
}

// Publish 把信封序列化后写入 Kafka，按频道做 key 保证同频道有序
func (q *KafkaQueue) Publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "marshal broadcast envelope")
	}
	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.Channel),
		Value: value,
	})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "write broadcast envelope to kafka")
	}
	return nil
}

// Start 启动消费循环，把 Kafka 消息还原为信封后投递
func (q *KafkaQueue) Start(sink Sink) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("kafka queue consumer panic", zap.Any("recover", r))
			}
		}()
		for {
			select {
			case <-q.done:
				return
			default:
			}

			msg, err := q.reader.ReadMessage(context.Background())
			if err != nil {
				select {
				case <-q.done:
					return
				default:
				}
				zap.L().Error("read broadcast envelope from kafka", zap.Error(err))
				continue
			}

			var env Envelope
			if err := json.Unmarshal(msg.Value, &env); err != nil {
				zap.L().Error("unmarshal broadcast envelope",
					zap.Error(err), zap.ByteString("value", msg.Value))
				continue
			}
			sink.Deliver(env)
		}
	}()
}

// Close 停止消费并关闭读写端
func (q *KafkaQueue) Close() error {
	q.closeMu.Do(func() { close(q.done) })
	if err := q.writer.Close(); err != nil {
		zap.L().Error("close kafka writer", zap.Error(err))
	}
	if err := q.reader.Close(); err != nil {
		zap.L().Error("close kafka reader", zap.Error(err))
		return err
	}
	return nil
}

var _ EventQueue = (*KafkaQueue)(nil)
