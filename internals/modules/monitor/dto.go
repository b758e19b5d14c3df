package monitor

// Filters narrows a bulk operation or listing to a slice of the monitor
// snapshot. All criteria are ANDed.
type Filters struct {
	Group         string `json:"group,omitempty"`
	Tag           string `json:"tag,omitempty"`
	NamePattern   string `json:"name_pattern,omitempty"`
	Type          string `json:"type,omitempty"`
	IncludeGroups bool   `json:"include_groups,omitempty"`
}

type ListResponse struct {
	Monitors any `json:"monitors"`
	Count    int `json:"count"`
}

type CreateResponse struct {
	MonitorID int64 `json:"monitorID"`
}

// CreateRow is the per-item outcome of a bulk create.
type CreateRow struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	MonitorID *int64 `json:"monitorID"`
	Error     string `json:"error,omitempty"`
}

type BulkCreateResponse struct {
	Results    []CreateRow `json:"results"`
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
}

// Row is the per-monitor outcome of a bulk update/control loop.
type Row struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Success          bool    `json:"success"`
	Error            string  `json:"error,omitempty"`
	NotificationsSet []int64 `json:"notifications_set,omitempty"`
}

type BulkResponse struct {
	Results          []Row   `json:"results"`
	Total            int     `json:"total"`
	Successful       int     `json:"successful"`
	Failed           int     `json:"failed"`
	Action           string  `json:"action,omitempty"`
	NotificationsSet []int64 `json:"notifications_set,omitempty"`
}

func (r *BulkResponse) summarize() {
	r.Total = len(r.Results)
	for _, row := range r.Results {
		if row.Success {
			r.Successful++
		}
	}
	r.Failed = r.Total - r.Successful
}

type NoMatchUpdated struct {
	Updated int `json:"updated"`
}

type NoMatchProcessed struct {
	Processed int `json:"processed"`
}

type BulkNotificationsRequest struct {
	Filters         *Filters `json:"filters"`
	NotificationIDs []int64  `json:"notification_ids"`
	Action          string   `json:"action" validate:"required,oneof=add remove"`
}

type SetNotificationsRequest struct {
	Filters         *Filters `json:"filters"`
	NotificationIDs []int64  `json:"notification_ids"`
}

type BulkControlRequest struct {
	Filters *Filters `json:"filters"`
	Action  string   `json:"action" validate:"required,oneof=pause resume delete"`
}
