package monitor

import (
	"context"
	"kuma-gateway/internals/kuma"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway fails any operation whose monitor name (or id, for
// control calls) is listed in fail, and records everything relayed.
type stubGateway struct {
	monitors map[string]kuma.Monitor
	failName map[string]bool
	failID   map[int64]bool

	added   []kuma.Monitor
	edited  []kuma.Monitor
	paused  []int64
	resumed []int64
	deleted []int64

	nextID int64
}

func (s *stubGateway) Monitors(context.Context) map[string]kuma.Monitor {
	return s.monitors
}

func (s *stubGateway) AddMonitor(_ context.Context, m kuma.Monitor) (kuma.Ack, error) {
	s.added = append(s.added, m)
	if s.failName[m.Name()] {
		return kuma.Ack{Msg: "add rejected"}, nil
	}
	s.nextID++
	id := s.nextID
	return kuma.Ack{OK: true, MonitorID: &id}, nil
}

func (s *stubGateway) EditMonitor(_ context.Context, m kuma.Monitor) (kuma.Ack, error) {
	s.edited = append(s.edited, m)
	if s.failName[m.Name()] {
		return kuma.Ack{Msg: "edit rejected"}, nil
	}
	return kuma.Ack{OK: true}, nil
}

func (s *stubGateway) PauseMonitor(_ context.Context, id int64) (kuma.Ack, error) {
	s.paused = append(s.paused, id)
	return s.controlAck(id)
}

func (s *stubGateway) ResumeMonitor(_ context.Context, id int64) (kuma.Ack, error) {
	s.resumed = append(s.resumed, id)
	return s.controlAck(id)
}

func (s *stubGateway) DeleteMonitor(_ context.Context, id int64) (kuma.Ack, error) {
	s.deleted = append(s.deleted, id)
	return s.controlAck(id)
}

func (s *stubGateway) controlAck(id int64) (kuma.Ack, error) {
	if s.failID[id] {
		return kuma.Ack{Msg: "control rejected"}, nil
	}
	return kuma.Ack{OK: true}, nil
}

func newTestService(gw *stubGateway) *Service {
	log := zerolog.Nop()
	return NewService(gw, 0, &log) // no pacing in tests
}

func TestCreateAppliesDefaults(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)

	id, err := svc.Create(context.Background(), kuma.Monitor{
		"name": "api",
		"url":  "https://example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, gw.added, 1)
	sent := gw.added[0]
	assert.Equal(t, "http", sent["type"])
	assert.Equal(t, "GET", sent["method"])
	assert.Equal(t, 300, sent["interval"])
	assert.Equal(t, 3, sent["maxretries"])
	assert.Equal(t, 60, sent["retryInterval"])
	assert.Equal(t, 30, sent["timeout"])
	assert.Equal(t, true, sent["active"])
	assert.Equal(t, []string{"200-299"}, sent["accepted_statuscodes"])
}

func TestCreateKeepsExplicitValues(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)

	_, err := svc.Create(context.Background(), kuma.Monitor{
		"name":     "fast",
		"type":     "ping",
		"interval": 60,
	})
	require.NoError(t, err)

	sent := gw.added[0]
	assert.Equal(t, "ping", sent["type"])
	assert.Equal(t, 60, sent["interval"])
}

func TestCreateUpstreamRejection(t *testing.T) {
	gw := &stubGateway{failName: map[string]bool{"dup": true}}
	svc := newTestService(gw)

	_, err := svc.Create(context.Background(), kuma.Monitor{"name": "dup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.monitor.create")
}

func TestCreateBulkAggregation(t *testing.T) {
	gw := &stubGateway{failName: map[string]bool{"bad": true}}
	svc := newTestService(gw)

	resp, err := svc.CreateBulk(context.Background(), []kuma.Monitor{
		{"name": "one"},
		{"name": "bad"},
		{"name": "two"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Successful)
	assert.Equal(t, 1, resp.Failed)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, 0, resp.Results[0].Index)
	assert.True(t, resp.Results[0].Success)
	require.NotNil(t, resp.Results[0].MonitorID)

	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "add rejected", resp.Results[1].Error)
	assert.Nil(t, resp.Results[1].MonitorID)
}

func TestBulkUpdateMergesAndAggregates(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	svc := newTestService(gw)

	resp, err := svc.BulkUpdate(context.Background(), Filters{Group: "Production"},
		map[string]any{"interval": 180})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Successful)
	assert.Equal(t, 0, resp.Failed)

	require.Len(t, gw.edited, 2)
	for _, m := range gw.edited {
		assert.Equal(t, 180, m["interval"])
		// untouched fields round-trip as stored
		assert.NotEmpty(t, m.Name())
	}

	// the cached snapshot must stay pristine
	for _, m := range snapshot() {
		assert.NotEqual(t, 180, m["interval"])
	}
}

func TestBulkUpdateNoMatch(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	svc := newTestService(gw)

	resp, err := svc.BulkUpdate(context.Background(), Filters{Group: "Nowhere"},
		map[string]any{"interval": 180})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, gw.edited)
}

func TestBulkNotificationsAdd(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	svc := newTestService(gw)

	resp, err := svc.BulkNotifications(context.Background(), Filters{Tag: "db"},
		[]int64{7, 8}, "add")
	require.NoError(t, err)
	assert.Equal(t, "add", resp.Action)
	assert.Equal(t, 1, resp.Successful)

	require.Len(t, gw.edited, 1)
	list := gw.edited[0]["notificationIDList"].(map[string]any)
	assert.Equal(t, map[string]any{"7": true, "8": true}, list)
}

func TestBulkNotificationsRemove(t *testing.T) {
	monitors := snapshot()
	monitors["4"]["notificationIDList"] = map[string]any{"7": true, "9": true}
	gw := &stubGateway{monitors: monitors}
	svc := newTestService(gw)

	_, err := svc.BulkNotifications(context.Background(), Filters{Tag: "db"},
		[]int64{7}, "remove")
	require.NoError(t, err)

	require.Len(t, gw.edited, 1)
	list := gw.edited[0]["notificationIDList"].(map[string]any)
	assert.Equal(t, map[string]any{"9": true}, list)
}

func TestSetNotificationsReplaces(t *testing.T) {
	monitors := snapshot()
	monitors["4"]["notificationIDList"] = map[string]any{"1": true, "2": true}
	gw := &stubGateway{monitors: monitors}
	svc := newTestService(gw)

	resp, err := svc.SetNotifications(context.Background(), Filters{Tag: "db"}, []int64{5})
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, resp.NotificationsSet)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []int64{5}, resp.Results[0].NotificationsSet)

	list := gw.edited[0]["notificationIDList"].(map[string]any)
	assert.Equal(t, map[string]any{"5": true}, list)
}

func TestSetNotificationsEmptyClears(t *testing.T) {
	monitors := snapshot()
	monitors["4"]["notificationIDList"] = map[string]any{"1": true}
	gw := &stubGateway{monitors: monitors}
	svc := newTestService(gw)

	resp, err := svc.SetNotifications(context.Background(), Filters{Tag: "db"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{}, resp.NotificationsSet)

	list := gw.edited[0]["notificationIDList"].(map[string]any)
	assert.Empty(t, list)
}

func TestBulkControlDispatch(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	svc := newTestService(gw)

	resp, err := svc.BulkControl(context.Background(), Filters{Type: "http"}, "pause")
	require.NoError(t, err)
	assert.Equal(t, "pause", resp.Action)
	assert.Equal(t, []int64{2, 3}, gw.paused)
	assert.Empty(t, gw.resumed)
	assert.Empty(t, gw.deleted)

	_, err = svc.BulkControl(context.Background(), Filters{Type: "ping"}, "delete")
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, gw.deleted)
}

func TestBulkControlPartialFailure(t *testing.T) {
	gw := &stubGateway{monitors: snapshot(), failID: map[int64]bool{3: true}}
	svc := newTestService(gw)

	resp, err := svc.BulkControl(context.Background(), Filters{Type: "http"}, "resume")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, "control rejected", resp.Results[1].Error)
}

func TestSingleControls(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)
	ctx := context.Background()

	require.NoError(t, svc.Pause(ctx, 9))
	require.NoError(t, svc.Resume(ctx, 9))
	require.NoError(t, svc.Delete(ctx, 9))

	assert.Equal(t, []int64{9}, gw.paused)
	assert.Equal(t, []int64{9}, gw.resumed)
	assert.Equal(t, []int64{9}, gw.deleted)
}

func TestSingleControlRejection(t *testing.T) {
	gw := &stubGateway{failID: map[int64]bool{4: true}}
	svc := newTestService(gw)

	err := svc.Pause(context.Background(), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.monitor.pause")
}

func TestListFilteredAndUnfiltered(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	svc := newTestService(gw)
	ctx := context.Background()

	all := svc.List(ctx, Filters{})
	assert.Equal(t, 4, all.Count) // unfiltered list is the raw keyed snapshot

	filtered := svc.List(ctx, Filters{Type: "http"})
	assert.Equal(t, 2, filtered.Count)
}
