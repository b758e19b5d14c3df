package notification

import "kuma-gateway/internals/kuma"

type ListResponse struct {
	Notifications []kuma.Notification `json:"notifications"`
	Count         int                 `json:"count"`
}

// SimpleRow is the trimmed listing used to look up ids for bulk
// operations on monitors.
type SimpleRow struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

type SimpleListResponse struct {
	Notifications []SimpleRow `json:"notifications"`
	Count         int         `json:"count"`
	UsageTip      string      `json:"usage_tip"`
}

type CreateResponse struct {
	ID int64 `json:"id"`
}
