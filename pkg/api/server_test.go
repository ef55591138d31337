package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/internal/config"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
)

func newTestServer(t *testing.T) (*Server, *db.Memory) {
	t.Helper()
	store := db.NewMemory()
	store.SeedTeam("ICU", []model.TeamMember{
		{ID: "nurse-a", FirstName: "Anong", LastName: "S", Role: model.RoleNurse, Department: "ICU"},
		{ID: "nurse-b", FirstName: "Busaba", LastName: "K", Role: model.RoleNurse, Department: "ICU"},
		{ID: "asst-c", FirstName: "Chai", LastName: "P", Role: model.RoleAssistant, Department: "ICU"},
	})
	require.NoError(t, store.SaveRoster(context.Background(), &model.RosterDocument{
		Department: "ICU",
		MonthKey:   "2025-09",
		Schedule: model.Schedule{
			"nurse-a": {9: {Top: "ช"}},
			"nurse-b": {9: {Top: "บ", Bottom: "ด"}},
		},
	}, 0))

	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	cfg := &config.Config{Department: "ICU", ApprovalRetries: 5}
	return NewServer(cfg, store, hub, zap.NewNop()), store
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func decodeRequest(t *testing.T, recorder *httptest.ResponseRecorder) model.ExchangeRequest {
	t.Helper()
	var req model.ExchangeRequest
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&req))
	return req
}

func TestSubmitExchangeEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/requests/exchange", map[string]string{
		"requesterId":    "nurse-a",
		"targetId":       "nurse-b",
		"date":           "2025-09-10",
		"myShiftType":    "top",
		"otherShiftType": "bottom",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	created := decodeRequest(t, recorder)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, "ช", created.MyShiftValue)
	assert.Equal(t, "ด", created.OtherShiftValue)
}

func TestSubmitExchangeEndpoint_Ineligible(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/requests/exchange", map[string]string{
		"requesterId":    "nurse-a",
		"targetId":       "asst-c",
		"date":           "2025-09-10",
		"myShiftType":    "top",
		"otherShiftType": "top",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestSubmitExchangeEndpoint_BadBody(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/requests/exchange", bytes.NewBufferString("{nope"))
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSubmitGiveEndpoint_NoSlot(t *testing.T) {
	server, _ := newTestServer(t)

	// Both of nurse-b's slots are occupied on the 10th
	recorder := doJSON(t, server, http.MethodPost, "/api/requests/give", map[string]string{
		"requesterId": "nurse-a",
		"targetId":    "nurse-b",
		"date":        "2025-09-10",
		"myShiftType": "top",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestApproveEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	created := decodeRequest(t, doJSON(t, server, http.MethodPost, "/api/requests/exchange", map[string]string{
		"requesterId":    "nurse-a",
		"targetId":       "nurse-b",
		"date":           "2025-09-10",
		"myShiftType":    "top",
		"otherShiftType": "bottom",
	}))

	recorder := doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", created.ID), map[string]string{
		"decidedBy": "head-nurse",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	decided := decodeRequest(t, recorder)
	assert.Equal(t, model.StatusApproved, decided.Status)

	roster, err := store.GetRoster(context.Background(), "ICU", "2025-09")
	require.NoError(t, err)
	assert.Equal(t, "ด", roster.Cell(model.CellKey{MemberID: "nurse-a", DayIndex: 9, Row: model.RowTop}))

	// Second approval of the same request conflicts
	recorder = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/requests/%s/approve", created.ID), map[string]string{
		"decidedBy": "head-nurse",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestRejectEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	created := decodeRequest(t, doJSON(t, server, http.MethodPost, "/api/requests/exchange", map[string]string{
		"requesterId":    "nurse-a",
		"targetId":       "nurse-b",
		"date":           "2025-09-10",
		"myShiftType":    "top",
		"otherShiftType": "top",
	}))

	recorder := doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/requests/%s/reject", created.ID), map[string]string{
		"decidedBy": "head-nurse",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, model.StatusRejected, decodeRequest(t, recorder).Status)
}

func TestDecisionEndpoints_UnknownRequest(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/requests/no-such-id/approve", map[string]string{"decidedBy": "x"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/requests/no-such-id/reject", map[string]string{"decidedBy": "x"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListRequestsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	created := decodeRequest(t, doJSON(t, server, http.MethodPost, "/api/requests/exchange", map[string]string{
		"requesterId":    "nurse-a",
		"targetId":       "nurse-b",
		"date":           "2025-09-10",
		"myShiftType":    "top",
		"otherShiftType": "top",
	}))

	recorder := doJSON(t, server, http.MethodGet, "/api/requests?status=pending", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var listed []model.ExchangeRequest
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	recorder = doJSON(t, server, http.MethodGet, "/api/requests?requesterId=nurse-a", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&listed))
	assert.Len(t, listed, 1)

	recorder = doJSON(t, server, http.MethodGet, "/api/requests?requesterId=ghost", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&listed))
	assert.Empty(t, listed)
}

func TestGetRosterEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/roster/2025-09", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var roster model.RosterDocument
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&roster))
	assert.Equal(t, int64(1), roster.Version)
	assert.Equal(t, "ช", roster.Cell(model.CellKey{MemberID: "nurse-a", DayIndex: 9, Row: model.RowTop}))

	// An unwritten month reads as an empty document, not an error
	recorder = doJSON(t, server, http.MethodGet, "/api/roster/2025-12", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&roster))
	assert.Equal(t, int64(0), roster.Version)
	assert.Equal(t, "2025-12", roster.MonthKey)
}

func TestTeamEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/team", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var members []model.TeamMember
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&members))
	assert.Len(t, members, 3)

	// A nurse's candidate list holds only the other nurse
	recorder = doJSON(t, server, http.MethodGet, "/api/team/candidates?requesterId=nurse-a", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var candidates []model.TeamMember
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&candidates))
	require.Len(t, candidates, 1)
	assert.Equal(t, "nurse-b", candidates[0].ID)

	recorder = doJSON(t, server, http.MethodGet, "/api/team/candidates?requesterId=ghost", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
