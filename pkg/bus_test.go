package chain

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSubscriber struct {
	ch chan Message
}

func (s testSubscriber) GetChan() chan Message {
	return s.ch
}

func TestMessageBusDelivers(t *testing.T) {
	bus := NewMessageBus()
	chainSub := testSubscriber{make(chan Message, 10)}
	allSub := testSubscriber{make(chan Message, 10)}
	bus.Register(chainSub, EVENT_CHAIN("CHAIN"))
	bus.Register(allSub, EVENT_ALL("ALL"))

	started, stopped, stop := make(chan bool, 1), make(chan bool, 1), make(chan context.Context, 1)
	require.NoError(t, bus.Run(started, stopped, stop))
	<-started

	require.NoError(t, bus.Send(POOL_TX_ADDED, TxEvent{Hash: fakeHash(1)}))
	require.NoError(t, bus.Send(CHAIN_TIP_CHANGED, TipEvent{Hash: fakeHash(2), Height: 7}, "tip-7"))

	receive := func(s testSubscriber) Message {
		select {
		case m := <-s.ch:
			return m
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for message")
		}
		return Message{}
	}

	m := receive(chainSub)
	assert.Equal(t, CHAIN_TIP_CHANGED, m.EventType)
	assert.Equal(t, "tip-7", m.ID)
	var tip TipEvent
	require.NoError(t, json.Unmarshal(m.Message, &tip))
	assert.Equal(t, 7, tip.Height)

	assert.Equal(t, POOL_TX_ADDED, receive(allSub).EventType)
	assert.Equal(t, CHAIN_TIP_CHANGED, receive(allSub).EventType)

	stop <- context.Background()
	<-stopped
}

func TestMessageBusSendNeverBlocks(t *testing.T) {
	bus := NewMessageBus()
	for i := 0; i < busInboundSize; i++ {
		require.NoError(t, bus.Send(SYS_MSG, "hello"))
	}
	assert.Error(t, bus.Send(SYS_MSG, "one too many"))
}

func TestMessageBusUnregister(t *testing.T) {
	bus := NewMessageBus()
	sub := bus.Register(testSubscriber{make(chan Message, 1)}, EVENT_ALL("ALL"))
	bus.Unregister(sub)
	bus.Unregister(sub) // second call is a no-op
	_, open := <-sub.dest.GetChan()
	assert.False(t, open)
}

func TestMessageJSON(t *testing.T) {
	m := Message{EventType: CHAIN_PRUNED, Message: []byte(`{"height":3}`), ID: "x"}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"CHAIN","event":"PRUNED","id":"x","payload":{"height":3}}`, string(data))
}
