package monitor

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/bulk", h.CreateBulk)
	r.Put("/bulk-update", h.BulkUpdate)
	r.Put("/bulk-notifications", h.BulkNotifications)
	r.Put("/set-notifications", h.SetNotifications)
	r.Post("/bulk-control", h.BulkControl)
	r.Post("/{monitorID}/pause", h.Pause)
	r.Post("/{monitorID}/resume", h.Resume)
	r.Delete("/{monitorID}", h.Delete)

	return r
}

/*
- GET: /monitors?group=&tag=&name_pattern=&type=&include_groups=true
	snapshot when unfiltered, flat array when filtered

- POST: /monitors
	body : monitor object, gaps filled from the defaults table
	resp : monitorID

- POST: /monitors/bulk
	body : array of monitor objects
	resp : per-item rows + total/successful/failed

- PUT: /monitors/bulk-update
	body : { filters?, updates? } or bare update map
	resp : per-monitor rows + aggregation

- PUT: /monitors/bulk-notifications?action=add|remove
	body : { filters?, notification_ids, action? }

- PUT: /monitors/set-notifications
	body : { filters?, notification_ids }  (empty array clears)

- POST: /monitors/bulk-control
	body : { filters?, action: pause|resume|delete }

- POST: /monitors/{monitorID}/pause | /resume
- DELETE: /monitors/{monitorID}
*/
