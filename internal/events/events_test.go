package events_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	toolkit "github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/events"
)

type recordingBus struct {
	mu        sync.Mutex
	published []toolkit.Event
	err       error
}

func (b *recordingBus) Publish(_ context.Context, e toolkit.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
	return b.err
}
func (b *recordingBus) Subscribe(_ string, _ toolkit.Handler) string { return "sub-id" }
func (b *recordingBus) SubscribeFunc(_ string, _ int, _ toolkit.HandlerFunc) string {
	return "sub-id"
}
func (b *recordingBus) Unsubscribe(_ string) error { return nil }
func (b *recordingBus) Clear(_ string)             {}
func (b *recordingBus) ClearAll()                  {}

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	messages []kafka.Message
	attempts int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts++
	if w.failures > 0 {
		w.failures--
		return errors.Unavailable("broker not available")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, *events.Notification) error {
	f.calls++
	return errors.Unavailable("sink down")
}

type EventsTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestEventsSuite(t *testing.T) {
	suite.Run(t, new(EventsTestSuite))
}

func (s *EventsTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *EventsTestSuite) TestLevelUpValidate() {
	s.NoError(events.LevelUp{CharacterID: "c1", OldLevel: 9, NewLevel: 10}.Validate())
	s.True(errors.IsInvalidArgument(events.LevelUp{OldLevel: 9, NewLevel: 10}.Validate()))
	s.True(errors.IsInvalidArgument(events.LevelUp{CharacterID: "c1", OldLevel: 10, NewLevel: 10}.Validate()))
}

func (s *EventsTestSuite) TestQueueClosed() {
	q := events.NewQueue(1)
	q.Close()
	q.Close()

	err := q.PublishLevelUp(s.ctx, events.LevelUp{CharacterID: "c1", OldLevel: 1, NewLevel: 2})
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
}

func (s *EventsTestSuite) TestQueuePublishRespectsContext() {
	q := events.NewQueue(1)
	s.Require().NoError(q.PublishLevelUp(s.ctx, events.LevelUp{CharacterID: "c1", OldLevel: 1, NewLevel: 2}))

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()
	s.Error(q.PublishLevelUp(ctx, events.LevelUp{CharacterID: "c2", OldLevel: 1, NewLevel: 2}))
}

func (s *EventsTestSuite) TestSubscriberIsolatesFailures() {
	q := events.NewQueue(16)
	var handled atomic.Int32

	sub, err := events.NewSubscriber(&events.SubscriberConfig{
		Queue:   q,
		Workers: 3,
		Handler: events.HandlerFunc(func(_ context.Context, e events.LevelUp) error {
			handled.Add(1)
			switch e.CharacterID {
			case "boom":
				panic("handler exploded")
			case "fail":
				return errors.Internal("evaluation failed")
			}
			return nil
		}),
	})
	s.Require().NoError(err)

	for _, id := range []string{"ok-1", "boom", "fail", "ok-2"} {
		s.Require().NoError(q.PublishLevelUp(s.ctx, events.LevelUp{CharacterID: id, OldLevel: 9, NewLevel: 10}))
	}
	// invalid messages are dropped before the handler
	s.Require().NoError(q.PublishLevelUp(s.ctx, events.LevelUp{CharacterID: "bad", OldLevel: 10, NewLevel: 10}))
	q.Close()

	s.Require().NoError(sub.Run(s.ctx))
	s.Equal(int32(4), handled.Load())
}

func (s *EventsTestSuite) TestSubscriberValidation() {
	_, err := events.NewSubscriber(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = events.NewSubscriber(&events.SubscriberConfig{Queue: events.NewQueue(1)})
	s.True(errors.IsInvalidArgument(err))
}

func (s *EventsTestSuite) TestBusNotifier() {
	bus := &recordingBus{}
	notifier, err := events.NewBusNotifier(bus)
	s.Require().NoError(err)

	err = notifier.Notify(s.ctx, &events.Notification{
		Type:        events.TypeClassAdvanced,
		CharacterID: "c1",
		NewClassID:  "knight",
		Reason:      "awakening",
	})
	s.Require().NoError(err)
	s.Require().Len(bus.published, 1)
	s.Equal(events.TypeClassAdvanced, bus.published[0].Type())

	bus.err = errors.Internal("bus closed")
	err = notifier.Notify(s.ctx, &events.Notification{Type: events.TypePendingCreated, CharacterID: "c1"})
	s.Error(err)

	_, err = events.NewBusNotifier(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *EventsTestSuite) TestMultiNotifier() {
	failing := &failingNotifier{}
	bus := &recordingBus{}
	busNotifier, err := events.NewBusNotifier(bus)
	s.Require().NoError(err)

	multi := events.MultiNotifier{failing, events.NopNotifier{}, busNotifier}
	err = multi.Notify(s.ctx, &events.Notification{Type: events.TypeClassAdvanced, CharacterID: "c1"})
	s.Error(err)
	s.Equal(1, failing.calls)
	s.Len(bus.published, 1, "a failing notifier does not stop the others")

	s.NoError(events.MultiNotifier{events.NopNotifier{}}.Notify(s.ctx, &events.Notification{}))

	// logs, never panics or returns
	events.NotifyAndLog(s.ctx, failing, &events.Notification{Type: events.TypeClassAdvanced})
	s.Equal(2, failing.calls)
}

func (s *EventsTestSuite) TestKafkaNotifierRetries() {
	writer := &fakeWriter{failures: 2}
	notifier, err := events.NewKafkaNotifier(&events.KafkaWriterConfig{
		Writer:  writer,
		Backoff: time.Millisecond,
	})
	s.Require().NoError(err)

	err = notifier.Notify(s.ctx, &events.Notification{Type: events.TypeClassAdvanced, CharacterID: "c1", NewClassID: "knight"})
	s.Require().NoError(err)
	s.Equal(3, writer.attempts)
	s.Require().Len(writer.messages, 1)
	s.Equal([]byte("c1"), writer.messages[0].Key)

	var got events.Notification
	s.Require().NoError(json.Unmarshal(writer.messages[0].Value, &got))
	s.Equal("knight", got.NewClassID)
}

func (s *EventsTestSuite) TestKafkaNotifierGivesUp() {
	writer := &fakeWriter{failures: 10}
	notifier, err := events.NewKafkaNotifier(&events.KafkaWriterConfig{
		Writer:      writer,
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
	})
	s.Require().NoError(err)

	err = notifier.Notify(s.ctx, &events.Notification{Type: events.TypeClassAdvanced, CharacterID: "c1"})
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
	s.Equal(2, writer.attempts)
}

func (s *EventsTestSuite) TestKafkaWriterConfigValidation() {
	_, err := events.NewKafkaNotifier(&events.KafkaWriterConfig{Topic: "t"})
	s.True(errors.IsInvalidArgument(err))

	_, err = events.NewKafkaPublisher(&events.KafkaWriterConfig{Brokers: []string{"localhost:9092"}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *EventsTestSuite) TestKafkaPublisher() {
	writer := &fakeWriter{}
	publisher, err := events.NewKafkaPublisher(&events.KafkaWriterConfig{Writer: writer})
	s.Require().NoError(err)

	s.True(errors.IsInvalidArgument(publisher.PublishLevelUp(s.ctx, events.LevelUp{CharacterID: "c1"})))
	s.Empty(writer.messages)

	s.Require().NoError(publisher.PublishLevelUp(s.ctx, events.LevelUp{CharacterID: "c1", OldLevel: 9, NewLevel: 10}))
	s.Require().Len(writer.messages, 1)
	s.JSONEq(`{"character_id":"c1","old_level":9,"new_level":10}`, string(writer.messages[0].Value))
}

func (s *EventsTestSuite) TestKafkaSourceFeedsQueue() {
	good, err := json.Marshal(events.LevelUp{CharacterID: "c1", OldLevel: 9, NewLevel: 10})
	s.Require().NoError(err)

	reader := &fakeReader{pending: []kafka.Message{
		{Offset: 1, Value: good},
		{Offset: 2, Value: []byte("not json")},
	}}
	q := events.NewQueue(4)
	source, err := events.NewKafkaSource(&events.KafkaSourceConfig{Reader: reader, Publisher: q})
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- source.Run(ctx) }()

	select {
	case got := <-q.Messages():
		s.Equal("c1", got.CharacterID)
		s.Equal(int32(10), got.NewLevel)
	case <-time.After(time.Second):
		s.Fail("level-up never reached the queue")
	}

	s.Eventually(func() bool { return len(reader.committedOffsets()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	s.NoError(<-done)
	s.Equal([]int64{1, 2}, reader.committedOffsets())
}

func (s *EventsTestSuite) TestKafkaSourceValidation() {
	_, err := events.NewKafkaSource(&events.KafkaSourceConfig{Publisher: events.NewQueue(1)})
	s.True(errors.IsInvalidArgument(err))

	_, err = events.NewKafkaSource(&events.KafkaSourceConfig{Reader: &fakeReader{}})
	s.True(errors.IsInvalidArgument(err))
}
