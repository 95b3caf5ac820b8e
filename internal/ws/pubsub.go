// Package ws implements the ledger's JSON-RPC pubsub protocol over a
// websocket: subscriptions are requested by method, acknowledged with a
// server-assigned id, and notifications are routed by that id.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"

	"solmarket/pkg/core"
)

// Config holds configuration for the pubsub client.
type Config struct {
	// URL is the pubsub endpoint.
	URL string
	// ReconnectEnabled turns automatic reconnection on.
	ReconnectEnabled bool
	// ReconnectBaseWait is the first reconnect delay; it doubles per attempt.
	ReconnectBaseWait time.Duration
	// ReconnectMaxWait caps the reconnect delay.
	ReconnectMaxWait time.Duration
	// PingInterval is the keepalive ping cadence.
	PingInterval time.Duration
	// PongWait is how long to wait for a pong before declaring the
	// connection dead.
	PongWait time.Duration
	// BufferSize is the notification channel capacity per subscription.
	BufferSize int
}

// Subscription is one live pubsub subscription. Notifications carries the
// raw result payload of each notification; Errs carries delivery failures.
type Subscription struct {
	// Method is the subscribe method this subscription was opened with.
	Method string
	// Notifications delivers raw notification payloads.
	Notifications <-chan json.RawMessage
	// Errs delivers subscription-level failures.
	Errs <-chan error

	id          uint64
	unsubMethod string
	params      []any
	dataCh      chan json.RawMessage
	errCh       chan error
}

type pendingCall struct {
	result chan subResult
}

type subResult struct {
	id  uint64
	err error
}

// Client manages the pubsub connection, its subscriptions, and
// resubscription after reconnects. It is safe for concurrent use.
type Client struct {
	config  Config
	state   *State
	logger  zerolog.Logger
	handler *eventHandler

	mu       sync.Mutex
	conn     *gws.Conn
	subs     map[uint64]*Subscription
	pending  map[uint64]*pendingCall
	nextID   atomic.Uint64
	stopChan chan struct{}
	connCh   chan struct{}
	wg       sync.WaitGroup
	attempts int
}

// New creates a pubsub client. Zero-valued config fields get defaults.
func New(config Config, logger zerolog.Logger) *Client {
	if config.ReconnectBaseWait == 0 {
		config.ReconnectBaseWait = 1 * time.Second
	}
	if config.ReconnectMaxWait == 0 {
		config.ReconnectMaxWait = 30 * time.Second
	}
	if config.PingInterval == 0 {
		config.PingInterval = 10 * time.Second
	}
	if config.PongWait == 0 {
		config.PongWait = 20 * time.Second
	}
	if config.BufferSize == 0 {
		config.BufferSize = 100
	}

	c := &Client{
		config:   config,
		state:    &State{},
		logger:   logger,
		subs:     make(map[uint64]*Subscription),
		pending:  make(map[uint64]*pendingCall),
		stopChan: make(chan struct{}),
		connCh:   make(chan struct{}),
	}
	c.state.Store(StateDisconnected)
	c.handler = &eventHandler{client: c}
	return c
}

// Connect establishes the pubsub connection.
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(StateDisconnected, StateConnecting) {
		if c.state.Load() == StateConnected {
			return nil
		}
		return fmt.Errorf("invalid state for connect: %s", c.state.Load())
	}

	socket, _, err := gws.NewClient(c.handler, &gws.ClientOption{
		Addr: c.config.URL,
	})
	if err != nil {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("connect pubsub: %w", err)
	}

	c.mu.Lock()
	c.conn = socket
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		socket.ReadLoop()
	}()

	// OnClose replaces connCh under the lock; snapshot it before waiting.
	c.mu.Lock()
	connCh := c.connCh
	c.mu.Unlock()

	select {
	case <-connCh:
		return nil
	case <-ctx.Done():
		_ = socket.NetConn().Close()
		c.state.Store(StateDisconnected)
		return ctx.Err()
	case <-c.stopChan:
		_ = socket.NetConn().Close()
		return fmt.Errorf("client closed")
	}
}

// Subscribe opens a subscription. unsubMethod is the paired method used to
// tear it down (e.g. programSubscribe / programUnsubscribe).
func (c *Client) Subscribe(ctx context.Context, method, unsubMethod string, params []any) (*Subscription, error) {
	if c.state.Load() != StateConnected {
		return nil, core.ErrNotConnected
	}

	reqID := c.nextID.Add(1)
	call := &pendingCall{result: make(chan subResult, 1)}

	c.mu.Lock()
	c.pending[reqID] = call
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, reqID)
		c.mu.Unlock()
	}()

	if err := c.write(rpcEnvelope{JSONRPC: "2.0", ID: reqID, Method: method, Params: params}); err != nil {
		return nil, err
	}

	select {
	case res := <-call.result:
		if res.err != nil {
			return nil, res.err
		}
		sub := &Subscription{
			Method:      method,
			id:          res.id,
			unsubMethod: unsubMethod,
			params:      params,
			dataCh:      make(chan json.RawMessage, c.config.BufferSize),
			errCh:       make(chan error, 1),
		}
		sub.Notifications = sub.dataCh
		sub.Errs = sub.errCh
		c.mu.Lock()
		c.subs[res.id] = sub
		c.mu.Unlock()
		c.logger.Info().Str("method", method).Uint64("subscription", res.id).Msg("subscribed")
		return sub, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.stopChan:
		return nil, core.ErrClientClosed
	}
}

// Unsubscribe tears down a subscription and closes its channels. The
// channels close under the same lock that removes the subscription from
// the map, so dispatch never sends after teardown.
func (c *Client) Unsubscribe(sub *Subscription) error {
	c.mu.Lock()
	if _, ok := c.subs[sub.id]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.subs, sub.id)
	close(sub.dataCh)
	close(sub.errCh)
	c.mu.Unlock()

	if c.state.Load() != StateConnected {
		return nil
	}
	reqID := c.nextID.Add(1)
	return c.write(rpcEnvelope{JSONRPC: "2.0", ID: reqID, Method: sub.unsubMethod, Params: []any{sub.id}})
}

// Close shuts the client down and closes every subscription.
func (c *Client) Close() error {
	if c.state.Load() == StateClosed {
		return nil
	}
	c.state.Store(StateClosed)
	close(c.stopChan)

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.NetConn().Close()
	}
	for id, sub := range c.subs {
		close(sub.dataCh)
		close(sub.errCh)
		delete(c.subs, id)
	}
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	return c.state.Load()
}

func (c *Client) write(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode pubsub request: %w", err)
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return core.ErrNotConnected
	}
	return conn.WriteMessage(gws.OpcodeText, data)
}

func (c *Client) reconnect() {
	if !c.state.CompareAndSwap(StateDisconnected, StateReconnecting) {
		return
	}

	for {
		c.mu.Lock()
		c.attempts++
		attempts := c.attempts
		c.mu.Unlock()

		wait := c.config.ReconnectBaseWait << (attempts - 1)
		if wait > c.config.ReconnectMaxWait || wait <= 0 {
			wait = c.config.ReconnectMaxWait
		}
		// Jitter spreads thundering herds across reconnecting clients.
		wait += time.Duration(rand.Int63n(int64(wait) / 4))

		select {
		case <-c.stopChan:
			return
		case <-time.After(wait):
		}

		c.state.Store(StateDisconnected)
		ctx, cancel := context.WithTimeout(context.Background(), c.config.PongWait)
		err := c.Connect(ctx)
		cancel()
		if err == nil {
			c.resubscribe()
			return
		}
		c.logger.Warn().Err(err).Int("attempt", attempts).Msg("pubsub reconnect failed")
		if c.state.Load() == StateClosed {
			return
		}
		c.state.Store(StateReconnecting)
	}
}

// resubscribe replays every live subscription after a reconnect, rebinding
// it to the new server-assigned id.
func (c *Client) resubscribe() {
	c.mu.Lock()
	old := make([]*Subscription, 0, len(c.subs))
	for id, sub := range c.subs {
		old = append(old, sub)
		delete(c.subs, id)
	}
	c.mu.Unlock()

	for _, sub := range old {
		reqID := c.nextID.Add(1)
		call := &pendingCall{result: make(chan subResult, 1)}
		c.mu.Lock()
		c.pending[reqID] = call
		c.mu.Unlock()

		env := rpcEnvelope{JSONRPC: "2.0", ID: reqID, Method: sub.Method, Params: sub.params}
		if err := c.write(env); err != nil {
			c.dropPending(reqID)
			c.failSub(sub, err)
			continue
		}
		select {
		case res := <-call.result:
			c.dropPending(reqID)
			if res.err != nil {
				c.failSub(sub, res.err)
				continue
			}
			sub.id = res.id
			c.mu.Lock()
			c.subs[res.id] = sub
			c.mu.Unlock()
		case <-time.After(c.config.PongWait):
			c.dropPending(reqID)
			c.failSub(sub, core.ErrNotConnected)
		case <-c.stopChan:
			c.dropPending(reqID)
			return
		}
	}
}

func (c *Client) dropPending(reqID uint64) {
	c.mu.Lock()
	delete(c.pending, reqID)
	c.mu.Unlock()
}

// failSub reports a resubscription failure without blocking: a
// subscription whose error buffer is already full has an unread
// failure pending, and one is enough to make the watcher rebuild.
func (c *Client) failSub(sub *Subscription, err error) {
	select {
	case sub.errCh <- err:
	default:
		c.logger.Warn().Err(err).Str("method", sub.Method).Msg("subscription error dropped, buffer full")
	}
}
