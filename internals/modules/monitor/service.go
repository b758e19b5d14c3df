package monitor

import (
	"context"
	"kuma-gateway/internals/kuma"
	"kuma-gateway/pkg/apperror"
	"time"

	"github.com/rs/zerolog"
)

// Gateway is the slice of the upstream session client the monitor
// module relays through.
type Gateway interface {
	Monitors(ctx context.Context) map[string]kuma.Monitor
	AddMonitor(ctx context.Context, m kuma.Monitor) (kuma.Ack, error)
	EditMonitor(ctx context.Context, m kuma.Monitor) (kuma.Ack, error)
	PauseMonitor(ctx context.Context, id int64) (kuma.Ack, error)
	ResumeMonitor(ctx context.Context, id int64) (kuma.Ack, error)
	DeleteMonitor(ctx context.Context, id int64) (kuma.Ack, error)
}

type Service struct {
	gw    Gateway
	delay time.Duration
	log   *zerolog.Logger
}

func NewService(gw Gateway, delay time.Duration, log *zerolog.Logger) *Service {
	return &Service{
		gw:    gw,
		delay: delay,
		log:   log,
	}
}

// List returns the raw keyed snapshot when no filter is set, a flat
// filtered array otherwise.
func (s *Service) List(ctx context.Context, f Filters) ListResponse {
	monitors := s.gw.Monitors(ctx)
	if f.Empty() {
		return ListResponse{Monitors: monitors, Count: len(monitors)}
	}
	selected := Select(monitors, f)
	return ListResponse{Monitors: selected, Count: len(selected)}
}

func (s *Service) Create(ctx context.Context, m kuma.Monitor) (int64, error) {
	const op = "service.monitor.create"

	applyCreateDefaults(m)

	ack, err := s.gw.AddMonitor(ctx, m)
	if err != nil {
		return 0, err
	}
	if !ack.OK {
		return 0, rejection(op, ack)
	}

	var id int64
	if ack.MonitorID != nil {
		id = *ack.MonitorID
	}
	return id, nil
}

func (s *Service) CreateBulk(ctx context.Context, items []kuma.Monitor) (BulkCreateResponse, error) {
	resp := BulkCreateResponse{Results: make([]CreateRow, 0, len(items))}

	for i, m := range items {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return resp, err
			}
		}
		applyCreateDefaults(m)

		row := CreateRow{Index: i, Name: m.Name()}
		if row.Name == "" {
			row.Name = "Unknown"
		}

		ack, err := s.gw.AddMonitor(ctx, m)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return resp, err
			}
			row.Error = err.Error()
		case ack.OK:
			row.Success = true
			row.MonitorID = ack.MonitorID
		default:
			row.Error = ackMsg(ack)
		}
		resp.Results = append(resp.Results, row)
	}

	resp.Total = len(resp.Results)
	for _, r := range resp.Results {
		if r.Success {
			resp.Successful++
		}
	}
	resp.Failed = resp.Total - resp.Successful
	return resp, nil
}

// BulkUpdate merges the update map over every selected monitor and
// relays each edit. The stored object is cloned first so the cached
// snapshot stays pristine if upstream rejects the edit.
func (s *Service) BulkUpdate(ctx context.Context, f Filters, updates map[string]any) (BulkResponse, error) {
	selected := Select(s.gw.Monitors(ctx), f)

	resp := BulkResponse{Results: make([]Row, 0, len(selected))}
	for i, m := range selected {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return resp, err
			}
		}

		edited := m.Clone()
		for k, v := range updates {
			edited[k] = v
		}
		resp.Results = append(resp.Results, s.edit(ctx, edited))
	}

	resp.summarize()
	return resp, nil
}

func (s *Service) BulkNotifications(ctx context.Context, f Filters, ids []int64, action string) (BulkResponse, error) {
	selected := Select(s.gw.Monitors(ctx), f)

	resp := BulkResponse{Action: action, Results: make([]Row, 0, len(selected))}
	for i, m := range selected {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return resp, err
			}
		}

		edited := m.Clone()
		switch action {
		case "add":
			edited.AddNotifications(ids)
		case "remove":
			edited.RemoveNotifications(ids)
		}
		resp.Results = append(resp.Results, s.edit(ctx, edited))
	}

	resp.summarize()
	return resp, nil
}

// SetNotifications replaces the whole notification list of every
// selected monitor. An empty id list clears them.
func (s *Service) SetNotifications(ctx context.Context, f Filters, ids []int64) (BulkResponse, error) {
	selected := Select(s.gw.Monitors(ctx), f)

	if ids == nil {
		ids = []int64{}
	}

	resp := BulkResponse{NotificationsSet: ids, Results: make([]Row, 0, len(selected))}
	for i, m := range selected {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return resp, err
			}
		}

		edited := m.Clone()
		edited.SetNotifications(ids)

		row := s.edit(ctx, edited)
		row.NotificationsSet = ids
		resp.Results = append(resp.Results, row)
	}

	resp.summarize()
	return resp, nil
}

func (s *Service) BulkControl(ctx context.Context, f Filters, action string) (BulkResponse, error) {
	selected := Select(s.gw.Monitors(ctx), f)

	resp := BulkResponse{Action: action, Results: make([]Row, 0, len(selected))}
	for i, m := range selected {
		if i > 0 {
			if err := s.pace(ctx); err != nil {
				return resp, err
			}
		}

		row := Row{ID: m.ID(), Name: m.Name()}
		ack, err := s.control(ctx, action, m.ID())
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return resp, err
			}
			row.Error = err.Error()
		case ack.OK:
			row.Success = true
		default:
			row.Error = ackMsg(ack)
		}
		resp.Results = append(resp.Results, row)
	}

	resp.summarize()
	return resp, nil
}

func (s *Service) Pause(ctx context.Context, id int64) error {
	return s.single(ctx, "service.monitor.pause", id, s.gw.PauseMonitor)
}

func (s *Service) Resume(ctx context.Context, id int64) error {
	return s.single(ctx, "service.monitor.resume", id, s.gw.ResumeMonitor)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.single(ctx, "service.monitor.delete", id, s.gw.DeleteMonitor)
}

func (s *Service) single(ctx context.Context, op string, id int64,
	call func(context.Context, int64) (kuma.Ack, error)) error {

	ack, err := call(ctx, id)
	if err != nil {
		return err
	}
	if !ack.OK {
		return rejection(op, ack)
	}
	return nil
}

func (s *Service) edit(ctx context.Context, m kuma.Monitor) Row {
	row := Row{ID: m.ID(), Name: m.Name()}

	ack, err := s.gw.EditMonitor(ctx, m)
	switch {
	case err != nil:
		row.Error = err.Error()
	case ack.OK:
		row.Success = true
	default:
		row.Error = ackMsg(ack)
	}
	return row
}

func (s *Service) control(ctx context.Context, action string, id int64) (kuma.Ack, error) {
	switch action {
	case "pause":
		return s.gw.PauseMonitor(ctx, id)
	case "resume":
		return s.gw.ResumeMonitor(ctx, id)
	default:
		return s.gw.DeleteMonitor(ctx, id)
	}
}

// pace keeps consecutive bulk writes from flooding the shared session.
func (s *Service) pace(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return apperror.New(apperror.RequestTimeout, "service.monitor.bulk", ctx.Err()).
			WithMessage("request cancelled or timed out")
	case <-time.After(s.delay):
		return nil
	}
}

func rejection(op string, ack kuma.Ack) error {
	return &apperror.Error{
		Kind:    apperror.InvalidInput,
		Op:      op,
		Message: ackMsg(ack),
	}
}

func ackMsg(ack kuma.Ack) string {
	if ack.Msg != "" {
		return ack.Msg
	}
	return "Unknown error"
}
