package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by Emit once the session is gone.
var ErrClosed = errors.New("socketio: connection closed")

// Handler receives the single argument of a server-pushed event.
type Handler func(data json.RawMessage)

// Client is a minimal Socket.IO v5 client over the websocket transport.
// It covers exactly the surface the upstream session needs: emit with
// ack, receive pushed events, answer pings. Default namespace only.
type Client struct {
	log *zerolog.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu       sync.Mutex
	handlers map[string]Handler
	acks     map[int64]chan json.RawMessage
	nextAck  int64
	closed   bool

	onDisconnect func(error)
	done         chan struct{}
}

// Dial connects to the server's Engine.IO websocket endpoint and joins
// the default namespace. The returned client is ready to Emit.
func Dial(ctx context.Context, rawURL string, log *zerolog.Logger) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	u.RawQuery = "EIO=4&transport=websocket"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	c := &Client{
		log:      log,
		conn:     conn,
		handlers: make(map[string]Handler),
		acks:     make(map[int64]chan json.RawMessage),
		done:     make(chan struct{}),
	}

	if err := c.joinNamespace(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

// joinNamespace consumes the Engine.IO open frame and performs the
// Socket.IO connect on the default namespace.
func (c *Client) joinNamespace(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(10 * time.Second)
	}
	_ = c.conn.SetReadDeadline(deadline)
	defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()

	_, frame, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read open frame: %w", err)
	}
	if len(frame) == 0 || frame[0] != eioOpen {
		return fmt.Errorf("expected engine.io open frame, got %q", frame)
	}
	var hs handshake
	if err := json.Unmarshal(frame[1:], &hs); err != nil {
		return fmt.Errorf("decode handshake: %w", err)
	}
	c.log.Debug().Str("sid", hs.SID).Msg("engine.io session opened")

	if err := c.writeFrame([]byte{eioMessage, sioConnect}); err != nil {
		return err
	}

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read namespace ack: %w", err)
		}
		if len(frame) == 0 {
			continue
		}
		switch frame[0] {
		case eioPing:
			if err := c.writeFrame([]byte{eioPong}); err != nil {
				return err
			}
		case eioMessage:
			p, err := decodePacket(frame[1:])
			if err != nil {
				return err
			}
			switch p.Type {
			case sioConnect:
				return nil
			case sioConnectError:
				return fmt.Errorf("namespace refused: %s", string(p.Data))
			}
		}
	}
}

// On registers the handler for a server-pushed event. Handlers run on
// the read loop goroutine and must not block.
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	c.handlers[event] = h
	c.mu.Unlock()
}

// OnDisconnect registers a callback fired once when the session dies.
func (c *Client) OnDisconnect(fn func(error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Emit sends one event and waits for its ack. The returned payload is
// the first callback argument, nil when the server acks with nothing.
func (c *Client) Emit(ctx context.Context, event string, args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	id := c.nextAck
	c.nextAck++
	ch := make(chan json.RawMessage, 1)
	c.acks[id] = ch
	c.mu.Unlock()

	frame, err := encodeEvent(event, id, args)
	if err != nil {
		c.dropAck(id)
		return nil, err
	}
	if err := c.writeFrame(frame); err != nil {
		c.dropAck(id)
		return nil, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		c.dropAck(id)
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// Close tells the server we are leaving and tears the session down.
func (c *Client) Close() error {
	_ = c.writeFrame([]byte{eioMessage, sioDisconnect})
	c.shutdown(ErrClosed)
	return nil
}

func (c *Client) readLoop() {
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}
		if len(frame) == 0 {
			continue
		}
		switch frame[0] {
		case eioPing:
			if err := c.writeFrame([]byte{eioPong}); err != nil {
				c.shutdown(err)
				return
			}
		case eioClose:
			c.shutdown(errors.New("server closed the session"))
			return
		case eioMessage:
			c.handleMessage(frame[1:])
		}
	}
}

func (c *Client) handleMessage(frame []byte) {
	p, err := decodePacket(frame)
	if err != nil {
		c.log.Warn().Err(err).Msg("dropping undecodable socket.io packet")
		return
	}

	switch p.Type {
	case sioEvent:
		name, arg, err := splitEvent(p.Data)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed event packet")
			return
		}
		c.mu.Lock()
		h := c.handlers[name]
		c.mu.Unlock()
		if h == nil {
			c.log.Debug().Str("event", name).Msg("unhandled upstream event")
			return
		}
		h(arg)

	case sioAck:
		arg, err := firstAckArg(p.Data)
		if err != nil {
			c.log.Warn().Err(err).Int64("ack_id", p.AckID).Msg("dropping malformed ack packet")
			return
		}
		c.mu.Lock()
		ch := c.acks[p.AckID]
		delete(c.acks, p.AckID)
		c.mu.Unlock()
		if ch != nil {
			ch <- arg
		}

	case sioDisconnect:
		c.shutdown(errors.New("server disconnected the namespace"))
	}
}

func (c *Client) writeFrame(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) dropAck(id int64) {
	c.mu.Lock()
	delete(c.acks, id)
	c.mu.Unlock()
}

func (c *Client) shutdown(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cb := c.onDisconnect
	c.mu.Unlock()

	close(c.done)
	_ = c.conn.Close()
	if cb != nil {
		cb(err)
	}
}
