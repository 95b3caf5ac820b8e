package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
)

type rpcEnvelope struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method,omitempty"`
	Params  []any  `json:"params,omitempty"`
}

// inboundMessage covers both shapes the pubsub endpoint sends: request
// responses (id + result/error) and notifications (method + params).
type inboundMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *inboundError   `json:"error,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  *inboundParams  `json:"params,omitempty"`
}

type inboundError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type inboundParams struct {
	Subscription uint64          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

func parseInbound(data []byte) (*inboundMessage, error) {
	var msg inboundMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("parse pubsub message: %w", err)
	}
	return &msg, nil
}

// isNotification reports whether the message routes to a subscription
// rather than a pending request.
func (m *inboundMessage) isNotification() bool {
	return m.Method != "" && m.Params != nil
}

type eventHandler struct {
	client *Client
}

func (h *eventHandler) OnOpen(socket *gws.Conn) {
	c := h.client
	c.state.Store(StateConnected)

	c.mu.Lock()
	c.attempts = 0
	select {
	case <-c.connCh:
	default:
		close(c.connCh)
	}
	c.mu.Unlock()

	c.logger.Info().Str("url", c.config.URL).Msg("pubsub connected")
	_ = socket.SetDeadline(time.Now().Add(c.config.PingInterval + c.config.PongWait))
}

func (h *eventHandler) OnClose(socket *gws.Conn, err error) {
	c := h.client
	if c.state.Load() == StateClosed {
		return
	}
	c.state.Store(StateDisconnected)

	c.mu.Lock()
	c.connCh = make(chan struct{})
	c.mu.Unlock()

	c.logger.Warn().Err(err).Str("url", c.config.URL).Msg("pubsub disconnected")

	if c.config.ReconnectEnabled {
		select {
		case <-c.stopChan:
		default:
			go c.reconnect()
		}
	}
}

func (h *eventHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
	_ = socket.WritePong(nil)
}

func (h *eventHandler) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
}

func (h *eventHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	data := message.Bytes()
	if len(data) == 0 {
		return
	}

	c := h.client
	msg, err := parseInbound(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("unparseable pubsub message")
		return
	}

	if msg.isNotification() {
		c.dispatch(msg.Params.Subscription, msg.Params.Result)
		return
	}
	if msg.ID != nil {
		c.resolve(*msg.ID, msg)
	}
}

// dispatch routes a notification payload to its subscription. A full
// buffer drops the payload; watchers rescan, so a dropped wakeup only
// delays, never corrupts. The lock spans lookup and send: teardown
// closes dataCh under the same lock after removing the subscription
// from the map, so a send can never hit a closed channel.
func (c *Client) dispatch(subID uint64, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.subs[subID]
	if !ok {
		return
	}

	select {
	case sub.dataCh <- payload:
	default:
		c.logger.Warn().Uint64("subscription", subID).Msg("notification buffer full, dropping")
	}
}

// resolve completes a pending subscribe/unsubscribe request.
func (c *Client) resolve(reqID uint64, msg *inboundMessage) {
	c.mu.Lock()
	call, ok := c.pending[reqID]
	c.mu.Unlock()
	if !ok {
		return
	}

	if msg.Error != nil {
		call.result <- subResult{err: fmt.Errorf("pubsub request %d: %s (code %d)", reqID, msg.Error.Message, msg.Error.Code)}
		return
	}

	// Subscribe responses carry the server-assigned subscription id;
	// unsubscribe responses carry a boolean and decode to id 0.
	var subID uint64
	if err := sonic.Unmarshal(msg.Result, &subID); err != nil {
		call.result <- subResult{}
		return
	}
	call.result <- subResult{id: subID}
}
