package notification

import (
	"encoding/json"
	"kuma-gateway/internals/kuma"
	middle "kuma-gateway/internals/middleware"
	"kuma-gateway/pkg/apperror"
	"kuma-gateway/pkg/utils"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GET /notifications?simple=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reqID := middle.GetReqID(r.Context())

	if r.URL.Query().Get("simple") == "true" {
		utils.WriteJSON(w, http.StatusOK, reqID, "", h.service.ListSimple())
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", h.service.List())
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	var n kuma.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil || len(n) == 0 {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "No notification data provided")
		return
	}

	id, err := h.service.Create(ctx, n)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, utils.NotificationCreated, CreateResponse{ID: id})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	id, ok := h.pathID(w, r, reqID)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON[any](w, http.StatusOK, reqID, utils.NotificationDeleted, nil)
}

func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	id, ok := h.pathID(w, r, reqID)
	if !ok {
		return
	}

	if err := h.service.Test(ctx, id); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON[any](w, http.StatusOK, reqID, utils.NotificationTested, nil)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, reqID string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid notification id")
		return 0, false
	}
	return id, true
}
