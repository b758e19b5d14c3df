package kuma

import (
	"encoding/json"
	"strconv"
)

// Monitor is the raw upstream monitor object. The gateway edits a few
// well-known keys and must round-trip everything else untouched, so the
// object stays a map with typed accessors on top.
type Monitor map[string]any

func (m Monitor) ID() int64    { return asInt64(m["id"]) }
func (m Monitor) Name() string { s, _ := m["name"].(string); return s }
func (m Monitor) Type() string { s, _ := m["type"].(string); return s }

// Parent returns the id of the group the monitor sits under.
func (m Monitor) Parent() (int64, bool) {
	v, ok := m["parent"]
	if !ok || v == nil {
		return 0, false
	}
	return asInt64(v), true
}

func (m Monitor) TagNames() []string {
	raw, _ := m["tags"].([]any)
	names := make([]string, 0, len(raw))
	for _, t := range raw {
		tag, _ := t.(map[string]any)
		if name, _ := tag["name"].(string); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Clone deep-copies the monitor so edits never leak into the cached
// snapshot.
func (m Monitor) Clone() Monitor {
	data, err := json.Marshal(m)
	if err != nil {
		return Monitor{}
	}
	var cp Monitor
	if err := json.Unmarshal(data, &cp); err != nil {
		return Monitor{}
	}
	return cp
}

// AddNotifications turns the given notification ids on. The upstream
// object keys notificationIDList by stringified id.
func (m Monitor) AddNotifications(ids []int64) {
	list, _ := m["notificationIDList"].(map[string]any)
	if list == nil {
		list = make(map[string]any, len(ids))
	}
	for _, id := range ids {
		list[strconv.FormatInt(id, 10)] = true
	}
	m["notificationIDList"] = list
}

func (m Monitor) RemoveNotifications(ids []int64) {
	list, _ := m["notificationIDList"].(map[string]any)
	if list == nil {
		return
	}
	for _, id := range ids {
		delete(list, strconv.FormatInt(id, 10))
	}
	m["notificationIDList"] = list
}

// SetNotifications replaces the whole list. An empty id set clears it.
func (m Monitor) SetNotifications(ids []int64) {
	list := make(map[string]any, len(ids))
	for _, id := range ids {
		list[strconv.FormatInt(id, 10)] = true
	}
	m["notificationIDList"] = list
}

// Notification is the raw upstream notification object.
type Notification map[string]any

func (n Notification) ID() int64 { return asInt64(n["id"]) }

func (n Notification) Name() string {
	if s, _ := n["name"].(string); s != "" {
		return s
	}
	return "Unnamed"
}

func (n Notification) Type() string {
	if s, _ := n["type"].(string); s != "" {
		return s
	}
	return "unknown"
}

func (n Notification) Active() bool {
	if b, ok := n["active"].(bool); ok {
		return b
	}
	return true
}

// Ack is the single callback argument every upstream call answers with.
type Ack struct {
	OK        bool   `json:"ok"`
	Msg       string `json:"msg"`
	MonitorID *int64 `json:"monitorID"`
	ID        *int64 `json:"id"`
	Token     string `json:"token"`
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
