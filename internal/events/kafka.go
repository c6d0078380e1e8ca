package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

const (
	defaultMaxAttempts    = 3
	defaultWriteTimeout   = 10 * time.Second
	defaultInitialBackoff = 100 * time.Millisecond
	maxBackoff            = 2 * time.Second
)

// MessageWriter is the subset of *kafka.Writer used for producing
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader is the subset of *kafka.Reader used for consuming
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWriterConfig configures a topic writer
type KafkaWriterConfig struct {
	Brokers []string
	Topic   string

	// Writer replaces the kafka-go writer built from Brokers and Topic
	Writer MessageWriter

	// MaxAttempts defaults to 3
	MaxAttempts int

	// WriteTimeout bounds each attempt and defaults to 10s
	WriteTimeout time.Duration

	// Backoff is the first retry delay, doubled per attempt up to 2s
	Backoff time.Duration
}

// Validate validates the KafkaWriterConfig
func (c *KafkaWriterConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Writer != nil {
		return nil
	}

	vb := errors.NewValidationBuilder()
	if len(c.Brokers) == 0 {
		vb.Field("Brokers", "at least one broker is required")
	}
	errors.ValidateRequired("Topic", c.Topic, vb)
	return vb.Build()
}

// producer writes keyed JSON messages with retries
type producer struct {
	writer       MessageWriter
	maxAttempts  int
	writeTimeout time.Duration
	backoff      time.Duration
}

func newProducer(cfg *KafkaWriterConfig) (*producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	p := &producer{
		writer:       cfg.Writer,
		maxAttempts:  cfg.MaxAttempts,
		writeTimeout: cfg.WriteTimeout,
		backoff:      cfg.Backoff,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = defaultMaxAttempts
	}
	if p.writeTimeout == 0 {
		p.writeTimeout = defaultWriteTimeout
	}
	if p.backoff == 0 {
		p.backoff = defaultInitialBackoff
	}
	if p.writer == nil {
		// Hash balancing keeps one character's messages on one partition
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: p.writeTimeout,
		}
	}
	return p, nil
}

func (p *producer) produceJSON(ctx context.Context, key string, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	var lastErr error
	backoff := p.backoff
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		msg := kafka.Message{
			Key:   []byte(key),
			Value: value,
			Time:  time.Now().UTC(),
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
		err := p.writer.WriteMessages(attemptCtx, msg)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.maxAttempts {
			break
		}
		slog.WarnContext(ctx, "kafka write failed, retrying",
			"attempt", attempt,
			"key", key,
			"error", err)

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "kafka write cancelled")
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}

	return errors.WrapWithCode(lastErr, errors.CodeUnavailable, "kafka write failed after retries")
}

func (p *producer) close() error {
	return p.writer.Close()
}

// KafkaNotifier publishes notifications to a topic keyed by character
type KafkaNotifier struct {
	producer *producer
}

// NewKafkaNotifier creates a notifier writing to cfg.Topic
func NewKafkaNotifier(cfg *KafkaWriterConfig) (*KafkaNotifier, error) {
	p, err := newProducer(cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaNotifier{producer: p}, nil
}

// Notify writes n as JSON
func (k *KafkaNotifier) Notify(ctx context.Context, n *Notification) error {
	if n == nil {
		return errors.InvalidArgument("notification is required")
	}
	return k.producer.produceJSON(ctx, n.CharacterID, n)
}

// Close flushes and closes the writer
func (k *KafkaNotifier) Close() error {
	return k.producer.close()
}

// KafkaPublisher writes level-up messages to a topic. Game services use it
// to feed the engine; the levelup command uses it for manual replays.
type KafkaPublisher struct {
	producer *producer
}

// NewKafkaPublisher creates a level-up publisher writing to cfg.Topic
func NewKafkaPublisher(cfg *KafkaWriterConfig) (*KafkaPublisher, error) {
	p, err := newProducer(cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{producer: p}, nil
}

// PublishLevelUp writes event as JSON keyed by character
func (k *KafkaPublisher) PublishLevelUp(ctx context.Context, event LevelUp) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return k.producer.produceJSON(ctx, event.CharacterID, event)
}

// Close flushes and closes the writer
func (k *KafkaPublisher) Close() error {
	return k.producer.close()
}

// KafkaSourceConfig configures the level-up consumer
type KafkaSourceConfig struct {
	Brokers []string
	Topic   string
	GroupID string

	// Reader replaces the kafka-go reader built from the fields above
	Reader MessageReader

	// Publisher receives every decoded message, usually the Queue
	Publisher Publisher
}

// Validate validates the KafkaSourceConfig
func (c *KafkaSourceConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Publisher == nil {
		vb.RequiredField("Publisher")
	}
	if c.Reader == nil {
		if len(c.Brokers) == 0 {
			vb.Field("Brokers", "at least one broker is required")
		}
		errors.ValidateRequired("Topic", c.Topic, vb)
		errors.ValidateRequired("GroupID", c.GroupID, vb)
	}
	return vb.Build()
}

// KafkaSource consumes level-up messages from a topic and hands them to a
// Publisher. Offsets are committed only after the hand-off succeeds.
type KafkaSource struct {
	reader    MessageReader
	publisher Publisher
}

// NewKafkaSource creates a consumer group reader
func NewKafkaSource(cfg *KafkaSourceConfig) (*KafkaSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	reader := cfg.Reader
	if reader == nil {
		reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}

	return &KafkaSource{reader: reader, publisher: cfg.Publisher}, nil
}

// Run consumes until ctx is done. Malformed messages are logged and
// committed so they do not block the partition.
func (k *KafkaSource) Run(ctx context.Context) error {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to fetch level-up message")
		}

		var event LevelUp
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.WarnContext(ctx, "skipping malformed level-up message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err)
		} else if err := k.publisher.PublishLevelUp(ctx, event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrapf(err, "failed to enqueue level-up for %s", event.CharacterID)
		}

		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to commit level-up offset")
		}
	}
}

// Close closes the reader
func (k *KafkaSource) Close() error {
	return k.reader.Close()
}
