package kuma

import (
	"context"
	"encoding/json"
	"errors"
	"kuma-gateway/config"
	"kuma-gateway/pkg/apperror"
	"kuma-gateway/pkg/socketio"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event names of the upstream session protocol.
const (
	evLogin              = "login"
	evLoginByToken       = "loginByToken"
	evAdd                = "add"
	evEditMonitor        = "editMonitor"
	evPauseMonitor       = "pauseMonitor"
	evResumeMonitor      = "resumeMonitor"
	evDeleteMonitor      = "deleteMonitor"
	evAddNotification    = "addNotification"
	evDeleteNotification = "deleteNotification"
	evTestNotification   = "testNotification"
	evGetSettings        = "getSettings"

	evMonitorList      = "monitorList"
	evNotificationList = "notificationList"
)

// Client holds the one persistent session to the upstream server that
// every HTTP request is relayed over. The server pushes full monitor and
// notification snapshots over the same session; the latest of each is
// kept in memory and nowhere else.
type Client struct {
	cfg *config.KumaConfig
	log *zerolog.Logger

	mu            sync.RWMutex
	sio           *socketio.Client
	authenticated bool
	token         string

	monitors      map[string]Monitor
	monitorsAt    time.Time
	refreshed     chan struct{}
	notifications []Notification
}

func NewClient(cfg *config.KumaConfig, log *zerolog.Logger) *Client {
	return &Client{
		cfg:       cfg,
		log:       log,
		refreshed: make(chan struct{}),
	}
}

// Connect establishes (or replaces) the upstream session and logs in.
func (c *Client) Connect(ctx context.Context) error {
	const op = "kuma.client.connect"

	c.mu.Lock()
	if c.sio != nil {
		c.sio.Close()
		c.sio = nil
		c.authenticated = false
	}
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	sio, err := socketio.Dial(dialCtx, c.cfg.URL, c.log)
	if err != nil {
		return apperror.New(apperror.Dependency, op, err).
			WithMessage("failed to connect to upstream server")
	}
	c.log.Info().Str("url", c.cfg.URL).Msg("connected to upstream server")

	sio.On(evMonitorList, c.onMonitorList)
	sio.On(evNotificationList, c.onNotificationList)
	sio.OnDisconnect(func(err error) {
		c.mu.Lock()
		if c.sio == sio {
			c.authenticated = false
		}
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("upstream session dropped")
	})

	c.mu.Lock()
	c.sio = sio
	c.mu.Unlock()

	return c.login(ctx, sio)
}

func (c *Client) login(ctx context.Context, sio *socketio.Client) error {
	const op = "kuma.client.login"

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	// A still-valid session token skips the password round trip.
	if sessionTokenValid(token, time.Now()) {
		if ack, err := c.emitAck(callCtx, sio, evLoginByToken, token); err == nil && ack.OK {
			c.markAuthenticated(ack)
			c.log.Info().Msg("re-authenticated with session token")
			return nil
		}
		c.log.Debug().Msg("session token rejected, falling back to credentials")
	}

	ack, err := c.emitAck(callCtx, sio, evLogin, map[string]any{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
		"token":    "",
	})
	if err != nil {
		return apperror.New(apperror.Dependency, op, err).
			WithMessage("upstream login call failed")
	}
	if !ack.OK {
		return &apperror.Error{
			Kind:    apperror.Unauthorised,
			Op:      op,
			Message: "upstream rejected the credentials",
		}
	}

	c.markAuthenticated(ack)
	c.log.Info().Msg("authenticated with upstream server")
	return nil
}

func (c *Client) markAuthenticated(ack Ack) {
	c.mu.Lock()
	c.authenticated = true
	if ack.Token != "" {
		c.token = ack.Token
	}
	c.mu.Unlock()
}

func (c *Client) emitAck(ctx context.Context, sio *socketio.Client, event string, args ...any) (Ack, error) {
	raw, err := sio.Emit(ctx, event, args...)
	if err != nil {
		return Ack{}, err
	}
	var ack Ack
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ack); err != nil {
			return Ack{}, err
		}
	}
	return ack, nil
}

func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sio != nil && c.sio.Connected()
}

func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// Call relays one event over the session and waits for its ack. A call
// that fails because the session dropped gets exactly one
// reconnect-login-retry before the failure surfaces.
func (c *Client) Call(ctx context.Context, event string, args ...any) (Ack, error) {
	raw, err := c.CallRaw(ctx, event, args...)
	if err != nil {
		return Ack{}, err
	}
	var ack Ack
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ack); err != nil {
			return Ack{}, apperror.New(apperror.Dependency, "kuma.client.call", err).
				WithMessage("undecodable upstream response")
		}
	}
	return ack, nil
}

// CallRaw is Call without the ack decoding, for passthrough payloads
// like getSettings.
func (c *Client) CallRaw(ctx context.Context, event string, args ...any) (json.RawMessage, error) {
	const op = "kuma.client.call"

	c.mu.RLock()
	sio, authed := c.sio, c.authenticated
	c.mu.RUnlock()

	if sio == nil || !authed {
		return nil, &apperror.Error{
			Kind:    apperror.Unauthorised,
			Op:      op,
			Message: "not connected or authenticated",
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	raw, err := sio.Emit(callCtx, event, args...)
	cancel()
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return nil, apperror.New(apperror.RequestTimeout, op, err).
			WithMessage("request cancelled or timed out")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// the session is still up, upstream just never acked in time.
		// Tearing it down would abort every other in-flight call.
		return nil, apperror.New(apperror.Dependency, op, err).
			WithMessage("upstream did not answer in time")
	}

	// session died mid-call, reconnect once and retry
	c.log.Warn().Err(err).Str("event", event).Msg("upstream call failed, reconnecting")
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	sio = c.sio
	c.mu.RUnlock()

	callCtx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	raw, err = sio.Emit(callCtx, event, args...)
	if err != nil {
		return nil, apperror.New(apperror.Dependency, op, err).
			WithMessage("upstream call failed after reconnect")
	}
	return raw, nil
}

// Monitors returns the latest pushed snapshot, keyed by stringified
// monitor id. A snapshot older than SnapshotMaxAge makes the caller wait
// up to a second for a refresh before serving what is there.
func (c *Client) Monitors(ctx context.Context) map[string]Monitor {
	c.mu.RLock()
	age := time.Since(c.monitorsAt)
	refreshed := c.refreshed
	c.mu.RUnlock()

	if age > c.cfg.SnapshotMaxAge {
		select {
		case <-refreshed:
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]Monitor, len(c.monitors))
	for id, m := range c.monitors {
		snapshot[id] = m
	}
	return snapshot
}

func (c *Client) Notifications() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

func (c *Client) NotificationByID(id int64) (Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, n := range c.notifications {
		if n.ID() == id {
			return n, true
		}
	}
	return nil, false
}

func (c *Client) onMonitorList(data json.RawMessage) {
	var monitors map[string]Monitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		c.log.Warn().Err(err).Msg("undecodable monitorList push")
		return
	}

	c.mu.Lock()
	c.monitors = monitors
	c.monitorsAt = time.Now()
	close(c.refreshed)
	c.refreshed = make(chan struct{})
	c.mu.Unlock()

	c.log.Debug().Int("count", len(monitors)).Msg("monitor snapshot refreshed")
}

func (c *Client) onNotificationList(data json.RawMessage) {
	var list []Notification
	if err := json.Unmarshal(data, &list); err != nil {
		c.log.Warn().Err(err).Msg("undecodable notificationList push")
		return
	}

	c.mu.Lock()
	c.notifications = list
	c.mu.Unlock()

	c.log.Debug().Int("count", len(list)).Msg("notification snapshot refreshed")
}

// Typed relays used by the HTTP modules.

func (c *Client) AddMonitor(ctx context.Context, m Monitor) (Ack, error) {
	return c.Call(ctx, evAdd, m)
}

func (c *Client) EditMonitor(ctx context.Context, m Monitor) (Ack, error) {
	return c.Call(ctx, evEditMonitor, m)
}

func (c *Client) PauseMonitor(ctx context.Context, id int64) (Ack, error) {
	return c.Call(ctx, evPauseMonitor, id)
}

func (c *Client) ResumeMonitor(ctx context.Context, id int64) (Ack, error) {
	return c.Call(ctx, evResumeMonitor, id)
}

func (c *Client) DeleteMonitor(ctx context.Context, id int64) (Ack, error) {
	return c.Call(ctx, evDeleteMonitor, id)
}

func (c *Client) AddNotification(ctx context.Context, n Notification) (Ack, error) {
	return c.Call(ctx, evAddNotification, map[string]any{
		"notification":   n,
		"notificationID": nil,
	})
}

func (c *Client) DeleteNotification(ctx context.Context, id int64) (Ack, error) {
	return c.Call(ctx, evDeleteNotification, id)
}

func (c *Client) TestNotification(ctx context.Context, n Notification) (Ack, error) {
	return c.Call(ctx, evTestNotification, n)
}

func (c *Client) Settings(ctx context.Context) (json.RawMessage, error) {
	return c.CallRaw(ctx, evGetSettings)
}

func (c *Client) Close() {
	c.mu.Lock()
	sio := c.sio
	c.sio = nil
	c.authenticated = false
	c.mu.Unlock()

	if sio != nil {
		sio.Close()
	}
}
