package notification

import (
	"context"
	"kuma-gateway/internals/kuma"
	"kuma-gateway/pkg/apperror"
)

// Gateway is the slice of the upstream session client the notification
// module relays through.
type Gateway interface {
	Notifications() []kuma.Notification
	NotificationByID(id int64) (kuma.Notification, bool)
	AddNotification(ctx context.Context, n kuma.Notification) (kuma.Ack, error)
	DeleteNotification(ctx context.Context, id int64) (kuma.Ack, error)
	TestNotification(ctx context.Context, n kuma.Notification) (kuma.Ack, error)
}

type Service struct {
	gw Gateway
}

func NewService(gw Gateway) *Service {
	return &Service{gw: gw}
}

func (s *Service) List() ListResponse {
	list := s.gw.Notifications()
	return ListResponse{Notifications: list, Count: len(list)}
}

func (s *Service) ListSimple() SimpleListResponse {
	list := s.gw.Notifications()

	rows := make([]SimpleRow, 0, len(list))
	for _, n := range list {
		rows = append(rows, SimpleRow{
			ID:     n.ID(),
			Name:   n.Name(),
			Type:   n.Type(),
			Active: n.Active(),
		})
	}

	return SimpleListResponse{
		Notifications: rows,
		Count:         len(rows),
		UsageTip:      "Use the ID numbers in notification_ids for bulk operations",
	}
}

func (s *Service) Create(ctx context.Context, n kuma.Notification) (int64, error) {
	const op = "service.notification.create"

	ack, err := s.gw.AddNotification(ctx, n)
	if err != nil {
		return 0, err
	}
	if !ack.OK {
		return 0, rejection(op, ack)
	}

	var id int64
	if ack.ID != nil {
		id = *ack.ID
	}
	return id, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "service.notification.delete"

	ack, err := s.gw.DeleteNotification(ctx, id)
	if err != nil {
		return err
	}
	if !ack.OK {
		return rejection(op, ack)
	}
	return nil
}

// Test sends the stored notification object back to upstream, which
// fires the channel with a test message.
func (s *Service) Test(ctx context.Context, id int64) error {
	const op = "service.notification.test"

	n, ok := s.gw.NotificationByID(id)
	if !ok {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "Notification not found",
		}
	}

	ack, err := s.gw.TestNotification(ctx, n)
	if err != nil {
		return err
	}
	if !ack.OK {
		return rejection(op, ack)
	}
	return nil
}

func rejection(op string, ack kuma.Ack) error {
	msg := ack.Msg
	if msg == "" {
		msg = "Unknown error"
	}
	return &apperror.Error{
		Kind:    apperror.InvalidInput,
		Op:      op,
		Message: msg,
	}
}
