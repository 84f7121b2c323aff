package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/Devansh171021/swpl/internal/domain/player"
	"github.com/Devansh171021/swpl/internal/domain/team"
	"github.com/Devansh171021/swpl/internal/infrastructure/repository/memory"
	"github.com/Devansh171021/swpl/internal/platform/logging"
	"github.com/Devansh171021/swpl/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	recorder := memory.NewTransactionRepository()
	auctionService := usecase.NewAuctionService(usecase.AuctionServiceConfig{
		Sessions: memory.NewSessionRepository(),
		Teams:    memory.NewTeamRepository(nil),
		Recorder: recorder,
		SeedPlayers: []player.Player{
			{ID: "p1", Name: "Anil Kumble", Role: player.RoleBowler, BasePrice: 500},
			{ID: "p2", Name: "Rahul Dravid", Role: player.RoleBatsman, BasePrice: 800},
		},
		SeedTeams: []team.Team{
			{Name: "Mumbai Mavericks", Purse: 10_000},
			{Name: "Delhi Dragons", Purse: 10_000},
		},
		Logger: logging.NewNop(),
	})
	historyService := usecase.NewHistoryService(recorder, nil, logging.NewNop())
	handler := NewHandler(auctionService, historyService, logging.NewNop())

	return NewRouter(handler, logging.NewNop(), []string{"*"})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal %s %s response: %v", method, path, err)
		}
	}

	return rec, envelope
}

func dataOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", envelope)
	}
	return data
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if dataOf(t, envelope)["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", envelope)
	}
}

func TestAuctionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/v1/auction", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before start, got %d", rec.Code)
	}

	rec, envelope := doJSON(t, router, http.MethodPost, "/v1/auction/start", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on start, got %d: %s", rec.Code, rec.Body.String())
	}
	data := dataOf(t, envelope)
	if data["phase"] != "active" {
		t.Fatalf("expected active phase, got %v", data["phase"])
	}
	current, ok := data["current"].(map[string]any)
	if !ok || current["name"] != "Rahul Dravid" {
		t.Fatalf("expected batsman on the block, got %v", data["current"])
	}

	rec, envelope = doJSON(t, router, http.MethodPost, "/v1/auction/sell",
		`{"team":"Mumbai Mavericks","amount":1200}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on sell, got %d: %s", rec.Code, rec.Body.String())
	}
	data = dataOf(t, envelope)
	sold, ok := data["sold"].([]any)
	if !ok || len(sold) != 1 {
		t.Fatalf("expected 1 sold disposition, got %v", data["sold"])
	}

	rec, envelope = doJSON(t, router, http.MethodPost, "/v1/auction/pass", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on pass, got %d", rec.Code)
	}
	// One sold, one passed: round 1 is over and the unsold player rolls
	// into round 2.
	data = dataOf(t, envelope)
	if data["round"] != float64(2) {
		t.Fatalf("expected rollover into round 2, got %v", data["round"])
	}

	rec, envelope = doJSON(t, router, http.MethodGet, "/v1/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on history, got %d", rec.Code)
	}
	records, ok := envelope["data"].([]any)
	if !ok || len(records) != 2 {
		t.Fatalf("expected 2 history records, got %v", envelope["data"])
	}
}

func TestSellRejectionsOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	if rec, _ := doJSON(t, router, http.MethodPost, "/v1/auction/start", ""); rec.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", rec.Code)
	}

	rec, _ := doJSON(t, router, http.MethodPost, "/v1/auction/sell", `{"amount":100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing team, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/auction/sell", `{"team":"Ghost XI","amount":100}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown team, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/auction/sell",
		`{"team":"Mumbai Mavericks","amount":999999}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for insufficient purse, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/auction/sell", `{"team":"Mumbai Mavericks"`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestNavigateOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	if rec, _ := doJSON(t, router, http.MethodPost, "/v1/auction/start", ""); rec.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", rec.Code)
	}

	rec, envelope := doJSON(t, router, http.MethodPost, "/v1/auction/navigate", `{"direction":"next"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on navigate, got %d", rec.Code)
	}
	if dataOf(t, envelope)["position"] != float64(1) {
		t.Fatalf("expected position 1, got %v", envelope)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/auction/navigate", `{"direction":"sideways"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid direction, got %d", rec.Code)
	}
}

func TestTeamsOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	if rec, _ := doJSON(t, router, http.MethodPost, "/v1/auction/start", ""); rec.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", rec.Code)
	}
	if rec, _ := doJSON(t, router, http.MethodPost, "/v1/auction/sell",
		`{"team":"Delhi Dragons","amount":900}`); rec.Code != http.StatusOK {
		t.Fatalf("sell failed: %d", rec.Code)
	}

	rec, envelope := doJSON(t, router, http.MethodGet, "/v1/teams", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on list teams, got %d", rec.Code)
	}
	teams, ok := envelope["data"].([]any)
	if !ok || len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %v", envelope["data"])
	}

	rec, envelope = doJSON(t, router, http.MethodGet, "/v1/teams/Delhi%20Dragons", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on team summary, got %d: %s", rec.Code, rec.Body.String())
	}
	data := dataOf(t, envelope)
	teamObj, ok := data["team"].(map[string]any)
	if !ok || teamObj["purse"] != float64(9100) {
		t.Fatalf("unexpected team summary: %v", data)
	}
	players, ok := data["players"].([]any)
	if !ok || len(players) != 1 {
		t.Fatalf("expected 1 bought player, got %v", data["players"])
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/v1/teams/Ghost%20XI", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown team, got %d", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	router := newTestRouter(t)

	if rec, _ := doJSON(t, router, http.MethodPost, "/v1/auction/start", ""); rec.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", rec.Code)
	}
	if rec, _ := doJSON(t, router, http.MethodPost, "/v1/auction/sell",
		`{"team":"Mumbai Mavericks","amount":1200}`); rec.Code != http.StatusOK {
		t.Fatalf("sell failed: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/history/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on export, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Rahul Dravid") {
		t.Fatalf("export missing sold player: %q", rec.Body.String())
	}

	recClear, _ := doJSON(t, router, http.MethodDelete, "/v1/history", `{"confirm":false}`)
	if recClear.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirmation, got %d", recClear.Code)
	}

	recClear, _ = doJSON(t, router, http.MethodDelete, "/v1/history", `{"confirm":true}`)
	if recClear.Code != http.StatusOK {
		t.Fatalf("expected 200 on confirmed clear, got %d", recClear.Code)
	}

	recList, envelope := doJSON(t, router, http.MethodGet, "/v1/history", "")
	if recList.Code != http.StatusOK {
		t.Fatalf("expected 200 on history, got %d", recList.Code)
	}
	if records, ok := envelope["data"].([]any); ok && len(records) != 0 {
		t.Fatalf("expected empty history after clear, got %v", records)
	}

	recResync, _ := doJSON(t, router, http.MethodPost, "/v1/history/resync", "")
	if recResync.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without write-back endpoint, got %d", recResync.Code)
	}
}
