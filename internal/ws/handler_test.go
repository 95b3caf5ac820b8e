package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solmarket/pkg/core"
)

func TestParseInbound_SubscribeResponse(t *testing.T) {
	msg, err := parseInbound([]byte(`{"jsonrpc":"2.0","id":1,"result":23784}`))
	require.NoError(t, err)

	assert.False(t, msg.isNotification())
	require.NotNil(t, msg.ID)
	assert.Equal(t, uint64(1), *msg.ID)

	var subID uint64
	require.NoError(t, json.Unmarshal(msg.Result, &subID))
	assert.Equal(t, uint64(23784), subID)
}

func TestParseInbound_Notification(t *testing.T) {
	raw := `{"jsonrpc":"2.0","method":"programNotification","params":{"subscription":23784,"result":{"context":{"slot":5},"value":{}}}}`
	msg, err := parseInbound([]byte(raw))
	require.NoError(t, err)

	assert.True(t, msg.isNotification())
	assert.Nil(t, msg.ID)
	assert.Equal(t, "programNotification", msg.Method)
	assert.Equal(t, uint64(23784), msg.Params.Subscription)
	assert.NotEmpty(t, msg.Params.Result)
}

func TestParseInbound_ErrorResponse(t *testing.T) {
	msg, err := parseInbound([]byte(`{"jsonrpc":"2.0","id":2,"error":{"code":-32602,"message":"Invalid params"}}`))
	require.NoError(t, err)

	assert.False(t, msg.isNotification())
	require.NotNil(t, msg.Error)
	assert.Equal(t, -32602, msg.Error.Code)
	assert.Equal(t, "Invalid params", msg.Error.Message)
}

func TestParseInbound_Malformed(t *testing.T) {
	_, err := parseInbound([]byte(`{not json`))
	assert.Error(t, err)
}

func TestDispatch_RoutesBySubscriptionID(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())

	sub := &Subscription{
		id:     7,
		dataCh: make(chan json.RawMessage, 1),
		errCh:  make(chan error, 1),
	}
	sub.Notifications = sub.dataCh
	client.subs[7] = sub

	client.dispatch(7, json.RawMessage(`{"value":1}`))
	select {
	case payload := <-sub.Notifications:
		assert.JSONEq(t, `{"value":1}`, string(payload))
	default:
		t.Fatal("notification was not delivered")
	}

	// Unknown subscription ids are ignored.
	client.dispatch(99, json.RawMessage(`{}`))
}

func TestDispatch_DropsWhenBufferFull(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())

	sub := &Subscription{
		id:     7,
		dataCh: make(chan json.RawMessage, 1),
		errCh:  make(chan error, 1),
	}
	sub.Notifications = sub.dataCh
	client.subs[7] = sub

	client.dispatch(7, json.RawMessage(`1`))
	client.dispatch(7, json.RawMessage(`2`)) // buffer full, dropped

	assert.Equal(t, `1`, string(<-sub.dataCh))
	select {
	case payload := <-sub.dataCh:
		t.Fatalf("unexpected payload %s", payload)
	default:
	}
}

func TestUnsubscribe_ConcurrentWithDispatch(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())

	subs := make([]*Subscription, 0, 64)
	for i := uint64(1); i <= 64; i++ {
		sub := &Subscription{
			id:     i,
			dataCh: make(chan json.RawMessage, 1),
			errCh:  make(chan error, 1),
		}
		sub.Notifications = sub.dataCh
		client.subs[i] = sub
		subs = append(subs, sub)
	}

	// Notification bursts keep arriving while subscriptions tear down;
	// dispatch must never send on a channel teardown already closed.
	done := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				for i := uint64(1); i <= 64; i++ {
					client.dispatch(i, json.RawMessage(`{}`))
				}
			}
		}()
	}

	for _, sub := range subs {
		require.NoError(t, client.Unsubscribe(sub))
	}
	close(done)
	wg.Wait()

	client.mu.Lock()
	remaining := len(client.subs)
	client.mu.Unlock()
	assert.Zero(t, remaining)

	// Teardown closed the notification channel, so draining terminates.
	for range subs[0].Notifications {
	}
}

func TestResubscribe_WriteFailureClearsPending(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())

	sub := &Subscription{
		id:     7,
		Method: "programSubscribe",
		dataCh: make(chan json.RawMessage, 1),
		errCh:  make(chan error, 1),
	}
	sub.Errs = sub.errCh
	client.subs[7] = sub

	// No connection: the replay write fails for every subscription.
	client.resubscribe()

	client.mu.Lock()
	pending := len(client.pending)
	client.mu.Unlock()
	assert.Zero(t, pending)

	select {
	case err := <-sub.Errs:
		assert.ErrorIs(t, err, core.ErrNotConnected)
	default:
		t.Fatal("expected a subscription error")
	}
}

func TestResubscribe_FullErrorBufferDoesNotBlock(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())

	sub := &Subscription{
		id:     7,
		Method: "programSubscribe",
		dataCh: make(chan json.RawMessage, 1),
		errCh:  make(chan error, 1),
	}
	sub.Errs = sub.errCh
	sub.errCh <- core.ErrNotConnected // unread failure fills the buffer
	client.subs[7] = sub

	doneCh := make(chan struct{})
	go func() {
		client.resubscribe()
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("resubscribe blocked on a full error buffer")
	}
}

func TestOnClose_ResetsConnectionGate(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())
	client.state.Store(StateConnected)

	// Connect snapshots connCh under the lock; racing readers against
	// OnClose replacing it must stay clean.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			client.mu.Lock()
			gate := client.connCh
			client.mu.Unlock()
			select {
			case <-gate:
			default:
			}
		}
	}()

	handler := &eventHandler{client: client}
	handler.OnClose(nil, errors.New("connection reset"))
	close(done)
	wg.Wait()

	assert.Equal(t, StateDisconnected, client.State())
	client.mu.Lock()
	gate := client.connCh
	client.mu.Unlock()
	select {
	case <-gate:
		t.Fatal("connection gate should be open again after close")
	default:
	}
}

func TestResolve_CompletesPendingCall(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())

	call := &pendingCall{result: make(chan subResult, 1)}
	client.pending[3] = call

	msg, err := parseInbound([]byte(`{"jsonrpc":"2.0","id":3,"result":42}`))
	require.NoError(t, err)
	client.resolve(3, msg)

	res := <-call.result
	require.NoError(t, res.err)
	assert.Equal(t, uint64(42), res.id)
}

func TestResolve_ErrorResponse(t *testing.T) {
	client := New(Config{URL: "ws://localhost"}, zerolog.Nop())

	call := &pendingCall{result: make(chan subResult, 1)}
	client.pending[4] = call

	msg, err := parseInbound([]byte(`{"jsonrpc":"2.0","id":4,"error":{"code":-32000,"message":"boom"}}`))
	require.NoError(t, err)
	client.resolve(4, msg)

	res := <-call.result
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "boom")
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "closed", StateClosed.String())
}

func TestState_CompareAndSwap(t *testing.T) {
	var s State
	s.Store(StateDisconnected)

	assert.True(t, s.CompareAndSwap(StateDisconnected, StateConnecting))
	assert.False(t, s.CompareAndSwap(StateDisconnected, StateConnected))
	assert.Equal(t, StateConnecting, s.Load())
}
