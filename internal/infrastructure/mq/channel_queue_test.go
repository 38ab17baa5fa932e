package mq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSink 记录投递到的信封
type recordSink struct {
	mu   sync.Mutex
	envs []Envelope
}

func (s *recordSink) Deliver(env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envs = append(s.envs, env)
}

func (s *recordSink) snapshot() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Envelope(nil), s.envs...)
}

func TestChannelQueuePublishAndConsume(t *testing.T) {
	q := NewChannelQueue()
	defer q.Close()
	sink := &recordSink{}
	q.Start(sink)

	env := Envelope{Channel: "user:U1", Event: "new private chat message", Payload: []byte(`{"content":"hi"}`)}
	require.NoError(t, q.Publish(context.Background(), env))

	assert.Eventually(t, func() bool {
		got := sink.snapshot()
		return len(got) == 1 && got[0].Channel == "user:U1" && got[0].Event == env.Event
	}, time.Second, 10*time.Millisecond)
}

func TestChannelQueueOrderPreserved(t *testing.T) {
	q := NewChannelQueue()
	defer q.Close()
	sink := &recordSink{}
	q.Start(sink)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Publish(context.Background(), Envelope{
			Channel: "private:C1",
			Event:   "new private chat message",
			Payload: []byte{byte('0' + i)},
		}))
	}

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 10 }, time.Second, 10*time.Millisecond)
	got := sink.snapshot()
	for i := 0; i < 10; i++ {
		assert.Equal(t, []byte{byte('0' + i)}, []byte(got[i].Payload))
	}
}

func TestChannelQueueFullDropsInsteadOfBlocking(t *testing.T) {
	// 不启动消费端，灌满缓冲后继续发布不应阻塞
	q := NewChannelQueue()
	defer q.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cap(q.ch)+10; i++ {
			_ = q.Publish(context.Background(), Envelope{Channel: "user:U1", Event: "new group"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on full queue")
	}
	assert.Len(t, q.ch, cap(q.ch))
}

func TestChannelQueueCloseIdempotent(t *testing.T) {
	q := NewChannelQueue()
	q.Start(&recordSink{})
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
}
