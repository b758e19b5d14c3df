package system

import (
	"encoding/json"
	"kuma-gateway/internals/kuma"
	middle "kuma-gateway/internals/middleware"
	"kuma-gateway/pkg/apperror"
	"kuma-gateway/pkg/utils"
	"net/http"

	"github.com/rs/zerolog"
)

type Handler struct {
	client *kuma.Client
	log    *zerolog.Logger
}

func NewHandler(client *kuma.Client, log *zerolog.Logger) *Handler {
	return &Handler{
		client: client,
		log:    log,
	}
}

type HealthResponse struct {
	Status        string `json:"status"`
	Connected     bool   `json:"connected"`
	Authenticated bool   `json:"authenticated"`
}

type ConnectResponse struct {
	Connected     bool `json:"connected"`
	Authenticated bool `json:"authenticated"`
}

type SettingsResponse struct {
	Settings map[string]any `json:"settings"`
}

// GET /health -- answers regardless of upstream session state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	reqID := middle.GetReqID(r.Context())

	utils.WriteJSON(w, http.StatusOK, reqID, "", HealthResponse{
		Status:        "ok",
		Connected:     h.client.Connected(),
		Authenticated: h.client.Authenticated(),
	})
}

// POST /connect -- tears down and re-establishes the upstream session.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	if err := h.client.Connect(ctx); err != nil {
		h.log.Error().Err(err).Msg("manual reconnect failed")
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "", ConnectResponse{
		Connected:     h.client.Connected(),
		Authenticated: h.client.Authenticated(),
	})
}

// GET /settings -- passthrough of the upstream settings payload.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middle.GetReqID(ctx)

	raw, err := h.client.Settings(ctx)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	var settings map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			utils.WriteError(w, http.StatusBadGateway, reqID, apperror.Dependency, "undecodable upstream response")
			return
		}
	}
	if ok, _ := settings["ok"].(bool); !ok {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "Failed to retrieve settings")
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "", SettingsResponse{Settings: settings})
}
