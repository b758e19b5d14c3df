package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(gw *stubGateway) http.Handler {
	svc := newTestService(gw)
	return Routes(NewHandler(svc, validator.New()))
}

type envelope struct {
	Success   bool            `json:"success"`
	RequestID string          `json:"request_id"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestListHandlerFiltered(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodGet, "/?type=http", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestListHandlerMalformedBody(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodGet, "/", `{"filters":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", env.Error.Message)
}

func TestListHandlerBodyFilters(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodGet, "/", `{"filters":{"tag":"db"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestCreateHandler(t *testing.T) {
	gw := &stubGateway{}
	router := newTestRouter(gw)

	rec, env := do(t, router, http.MethodPost, "/", `{"name":"api","url":"https://example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Monitor created successfully", env.Message)

	var resp struct {
		MonitorID int64 `json:"monitorID"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, int64(1), resp.MonitorID)
}

func TestCreateHandlerEmptyBody(t *testing.T) {
	router := newTestRouter(&stubGateway{})

	rec, env := do(t, router, http.MethodPost, "/", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "No monitor data provided", env.Error.Message)
}

func TestCreateBulkHandlerRejectsObject(t *testing.T) {
	router := newTestRouter(&stubGateway{})

	rec, env := do(t, router, http.MethodPost, "/bulk", `{"name":"api"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Expected array of monitor objects", env.Error.Message)
}

func TestBulkUpdateHandlerBareBody(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	router := newTestRouter(gw)

	// updates as the whole body, filter from the query string
	rec, env := do(t, router, http.MethodPut, "/bulk-update?type=ping", `{"interval":120}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	require.Len(t, gw.edited, 1)
	assert.Equal(t, float64(120), gw.edited[0]["interval"])
}

func TestBulkUpdateHandlerNoUpdates(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodPut, "/bulk-update", `{"filters":{"type":"ping"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No updates provided", env.Error.Message)
}

func TestBulkUpdateHandlerNoMatch(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodPut, "/bulk-update",
		`{"filters":{"group":"Nowhere"},"updates":{"interval":120}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No monitors found matching criteria", env.Message)

	var resp struct {
		Updated int `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 0, resp.Updated)
}

func TestBulkNotificationsHandlerQueryIDs(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	router := newTestRouter(gw)

	rec, env := do(t, router, http.MethodPut,
		"/bulk-notifications?tag=db&notification_ids=1,2", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	require.Len(t, gw.edited, 1)
	list := gw.edited[0]["notificationIDList"].(map[string]any)
	assert.Equal(t, map[string]any{"1": true, "2": true}, list)
}

func TestBulkNotificationsHandlerNoIDs(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodPut, "/bulk-notifications", `{"filters":{"tag":"db"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No notification IDs provided", env.Error.Message)
}

func TestBulkNotificationsHandlerBadAction(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodPut, "/bulk-notifications",
		`{"notification_ids":[1],"action":"toggle"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "action must be add or remove", env.Error.Message)
}

func TestSetNotificationsHandlerEmptyList(t *testing.T) {
	monitors := snapshot()
	monitors["4"]["notificationIDList"] = map[string]any{"1": true}
	gw := &stubGateway{monitors: monitors}
	router := newTestRouter(gw)

	rec, env := do(t, router, http.MethodPut, "/set-notifications",
		`{"filters":{"tag":"db"},"notification_ids":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	require.Len(t, gw.edited, 1)
	assert.Empty(t, gw.edited[0]["notificationIDList"])
}

func TestBulkControlHandlerBadAction(t *testing.T) {
	router := newTestRouter(&stubGateway{monitors: snapshot()})

	rec, env := do(t, router, http.MethodPost, "/bulk-control", `{"action":"restart"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action. Must be pause, resume, or delete", env.Error.Message)
}

func TestBulkControlHandlerQueryAction(t *testing.T) {
	gw := &stubGateway{monitors: snapshot()}
	router := newTestRouter(gw)

	rec, env := do(t, router, http.MethodPost, "/bulk-control?action=pause&type=http", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, []int64{2, 3}, gw.paused)
}

func TestPauseHandler(t *testing.T) {
	gw := &stubGateway{}
	router := newTestRouter(gw)

	rec, env := do(t, router, http.MethodPost, "/7/pause", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Monitor paused successfully", env.Message)
	assert.Equal(t, []int64{7}, gw.paused)
}

func TestPauseHandlerBadID(t *testing.T) {
	router := newTestRouter(&stubGateway{})

	rec, env := do(t, router, http.MethodPost, "/seven/pause", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid monitor id", env.Error.Message)
}

func TestDeleteHandler(t *testing.T) {
	gw := &stubGateway{}
	router := newTestRouter(gw)

	rec, env := do(t, router, http.MethodDelete, "/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Monitor deleted successfully", env.Message)
	assert.Equal(t, []int64{3}, gw.deleted)
}
