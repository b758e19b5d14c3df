package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"kuma-gateway/internals/kuma"
	middle "kuma-gateway/internals/middleware"
	"kuma-gateway/pkg/apperror"
	"kuma-gateway/pkg/utils"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service, validator *validator.Validate) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
	}
}

// GET /monitors?group=&tag=&name_pattern=&type=&include_groups=true
// Filters may also arrive in a JSON body under "filters"; query wins.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var body struct {
		Filters Filters `json:"filters"`
	}
	// body filters are optional, even on GET, but malformed JSON is not
	if err := decodeBody(r, &body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid JSON body")
		return
	}
	f := body.Filters.MergeQuery(r)

	utils.WriteJSON(w, http.StatusOK, reqID, "", h.service.List(ctx, f))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var m kuma.Monitor
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil || len(m) == 0 {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "No monitor data provided")
		return
	}

	id, err := h.service.Create(ctx, m)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, utils.MonitorCreated, CreateResponse{MonitorID: id})
}

func (h *Handler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var items []kuma.Monitor
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "Expected array of monitor objects")
		return
	}

	resp, err := h.service.CreateBulk(ctx, items)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", resp)
}

// PUT /monitors/bulk-update
// Updates come either under an "updates" key or as the whole body minus
// "filters".
func (h *Handler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var body map[string]json.RawMessage
	if err := decodeBody(r, &body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid JSON body")
		return
	}

	var f Filters
	if raw, ok := body["filters"]; ok {
		if err := json.Unmarshal(raw, &f); err != nil {
			utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid filters")
			return
		}
	}
	f = f.MergeQuery(r)

	updates := map[string]any{}
	if raw, ok := body["updates"]; ok {
		if err := json.Unmarshal(raw, &updates); err != nil {
			utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid updates")
			return
		}
	} else {
		for k, raw := range body {
			if k == "filters" {
				continue
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				continue
			}
			updates[k] = v
		}
	}

	if len(updates) == 0 {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "No updates provided")
		return
	}

	resp, err := h.service.BulkUpdate(ctx, f, updates)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	if resp.Total == 0 {
		utils.WriteJSON(w, http.StatusOK, reqID, "No monitors found matching criteria", NoMatchUpdated{})
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", resp)
}

// PUT /monitors/bulk-notifications?action=add|remove&notification_ids=1,2
func (h *Handler) BulkNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var req BulkNotificationsRequest
	if err := decodeBody(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid JSON body")
		return
	}

	f := filtersOf(req.Filters).MergeQuery(r)

	if req.Action == "" {
		req.Action = r.URL.Query().Get("action")
	}
	if req.Action == "" {
		req.Action = "add"
	}

	ids, ok := h.notificationIDs(w, r, reqID, req.NotificationIDs)
	if !ok {
		return
	}
	req.NotificationIDs = ids

	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "action must be add or remove")
		return
	}
	if len(ids) == 0 {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "No notification IDs provided")
		return
	}

	resp, err := h.service.BulkNotifications(ctx, f, ids, req.Action)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	if resp.Total == 0 {
		utils.WriteJSON(w, http.StatusOK, reqID, "No monitors found matching criteria", NoMatchUpdated{})
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", resp)
}

// PUT /monitors/set-notifications
// Replaces the whole notification list; an empty array clears it.
func (h *Handler) SetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var req SetNotificationsRequest
	if err := decodeBody(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid JSON body")
		return
	}

	f := filtersOf(req.Filters).MergeQuery(r)

	ids, ok := h.notificationIDs(w, r, reqID, req.NotificationIDs)
	if !ok {
		return
	}

	resp, err := h.service.SetNotifications(ctx, f, ids)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	if resp.Total == 0 {
		utils.WriteJSON(w, http.StatusOK, reqID, "No monitors found matching criteria", NoMatchUpdated{})
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", resp)
}

// POST /monitors/bulk-control?action=pause|resume|delete
func (h *Handler) BulkControl(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var req BulkControlRequest
	if err := decodeBody(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid JSON body")
		return
	}

	f := filtersOf(req.Filters).MergeQuery(r)

	if req.Action == "" {
		req.Action = r.URL.Query().Get("action")
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput,
			"Invalid action. Must be pause, resume, or delete")
		return
	}

	resp, err := h.service.BulkControl(ctx, f, req.Action)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	if resp.Total == 0 {
		utils.WriteJSON(w, http.StatusOK, reqID, "No monitors found matching criteria", NoMatchProcessed{})
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", resp)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.singleControl(w, r, h.service.Pause, utils.MonitorPaused)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.singleControl(w, r, h.service.Resume, utils.MonitorResumed)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.singleControl(w, r, h.service.Delete, utils.MonitorDeleted)
}

func (h *Handler) singleControl(w http.ResponseWriter, r *http.Request,
	call func(ctx context.Context, id int64) error, message string) {

	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "monitorID"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid monitor id")
		return
	}

	if err := call(ctx, id); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON[any](w, http.StatusOK, reqID, message, nil)
}

// notificationIDs resolves the id list, letting a comma-separated query
// param override the body.
func (h *Handler) notificationIDs(w http.ResponseWriter, r *http.Request, reqID string, body []int64) ([]int64, bool) {
	ids := body
	if raw := r.URL.Query().Get("notification_ids"); raw != "" {
		parsed, err := parseIDList(raw)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid notification_ids")
			return nil, false
		}
		ids = parsed
	}
	return ids, true
}

func filtersOf(f *Filters) Filters {
	if f == nil {
		return Filters{}
	}
	return *f
}

func parseIDList(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeBody decodes an optional JSON body. A missing or empty body is
// fine, malformed JSON is not.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
