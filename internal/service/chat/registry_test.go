package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"buddies_chat_server/internal/infrastructure/mq"
	"buddies_chat_server/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConn(userId string) *UserConn {
	return &UserConn{
		UserId:   userId,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

func TestRegistryJoinLeave(t *testing.T) {
	r := NewRegistry()
	c1 := testConn("U1")
	c2 := testConn("U2")

	r.Join("user:U1", c1)
	r.Join("user:U1", c1) // 重复加入幂等
	r.Join("private:C1", c1)
	r.Join("private:C1", c2)

	assert.Equal(t, 1, r.ChannelSize("user:U1"))
	assert.Equal(t, 2, r.ChannelSize("private:C1"))

	r.Leave("private:C1", c2)
	assert.Equal(t, 1, r.ChannelSize("private:C1"))

	// 断开清理：c1 从它加入的全部频道消失
	r.LeaveAll(c1)
	assert.Equal(t, 0, r.ChannelSize("user:U1"))
	assert.Equal(t, 0, r.ChannelSize("private:C1"))
}

func TestRegistryDeliverEmptyChannel(t *testing.T) {
	r := NewRegistry()
	// 没人在线的频道投递是正常情况，不应 panic 也不应阻塞
	r.Deliver(mq.Envelope{Channel: "user:nobody", Event: "new private chat message", Payload: []byte(`{}`)})
}

func TestRegistryDeliverFanout(t *testing.T) {
	r := NewRegistry()
	c1 := testConn("U1")
	c2 := testConn("U2")
	c3 := testConn("U3")
	r.Join("private:C1", c1)
	r.Join("private:C1", c2)
	r.Join("private:C2", c3)

	payload := []byte(`{"content":"hello"}`)
	r.Deliver(mq.Envelope{Channel: "private:C1", Event: "new private chat message", Payload: payload})

	for _, c := range []*UserConn{c1, c2} {
		select {
		case frame := <-c.SendBack:
			var got serverFrame
			require.NoError(t, json.Unmarshal(frame, &got))
			assert.Equal(t, "new private chat message", got.Event)
			assert.JSONEq(t, string(payload), string(got.Data))
		default:
			t.Fatalf("connection %s did not receive the frame", c.UserId)
		}
	}
	// 其他频道的连接不受影响
	assert.Empty(t, c3.SendBack)
}

func TestRegistryDeliverDropsWhenBufferFull(t *testing.T) {
	r := NewRegistry()
	c := &UserConn{UserId: "U1", SendBack: make(chan []byte, 1), done: make(chan struct{})}
	r.Join("user:U1", c)

	env := mq.Envelope{Channel: "user:U1", Event: "new group", Payload: []byte(`{}`)}
	r.Deliver(env)
	// 缓冲已满，第二帧被丢弃而不是阻塞投递端
	r.Deliver(env)

	assert.Len(t, c.SendBack, 1)
}

func TestRegistryJoinUserChannels(t *testing.T) {
	r := NewRegistry()
	c1 := testConn("U1")
	c1b := testConn("U1") // 同一用户的第二条连接
	c2 := testConn("U2")
	r.Join(constants.UserChannelPrefix+"U1", c1)
	r.Join(constants.UserChannelPrefix+"U1", c1b)
	r.Join(constants.UserChannelPrefix+"U2", c2)

	// U3 不在线，没有连接可加
	r.JoinUserChannels("group:G1", []string{"U1", "U2", "U3"})

	assert.Equal(t, 3, r.ChannelSize("group:G1"))

	// 群频道的成员关系随连接断开一并清理
	r.LeaveAll(c1)
	assert.Equal(t, 2, r.ChannelSize("group:G1"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := testConn(fmt.Sprintf("U%d", n))
			channel := fmt.Sprintf("private:C%d", n%4)
			for j := 0; j < 100; j++ {
				r.Join(channel, c)
				r.Deliver(mq.Envelope{Channel: channel, Event: "new private chat message", Payload: []byte(`{}`)})
				r.Leave(channel, c)
			}
			r.LeaveAll(c)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, r.ChannelSize(fmt.Sprintf("private:C%d", i)))
	}
}
