package scenario

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/curvecache"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://2024-01.engine.energytransitionmodel.com/api/v3", "2024-01"},
		{"https://engine.energytransitionmodel.com/api/v3", "latest"},
		{"", ""},
	}

	for _, tt := range tests {
		s := &Scenario{URL: tt.url}
		if got := s.Version(); got != tt.want {
			t.Errorf("Version() for %q = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestIdentifier(t *testing.T) {
	s := &Scenario{ID: 42}
	if got := s.Identifier(); got != "42" {
		t.Errorf("Identifier() = %q, want %q", got, "42")
	}
	s.Title = "My Scenario"
	if got := s.Identifier(); got != "My Scenario" {
		t.Errorf("Identifier() = %q, want %q", got, "My Scenario")
	}
}

func TestInputsLazyFetch(t *testing.T) {
	calls := 0
	s := fetchInputsScenario(t, &calls)

	ctx := context.Background()
	if _, err := s.Inputs(ctx); err != nil {
		t.Fatalf("Inputs() error = %v", err)
	}
	if _, err := s.Inputs(ctx); err != nil {
		t.Fatalf("Inputs() second call error = %v", err)
	}
	if calls != 1 {
		t.Errorf("inputs endpoint called %d times, want 1", calls)
	}
}

func fetchInputsScenario(t *testing.T, calls *int) *Scenario {
	t.Helper()
	return newTestScenarioWith(t, func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Write([]byte(`{
			"investment_costs_co2_ccs": {"unit": "%", "default": 0, "min": -100, "max": 300},
			"heat_storage_enabled": {"unit": "bool", "default": 0}
		}`))
	})
}

func newTestScenarioWith(t *testing.T, handler http.HandlerFunc) *Scenario {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := &Scenario{ID: 123, AreaCode: "nl", EndYear: 2050}
	s.client = client.New(srv.URL, "etm_abc.def.ghi")
	s.settings = config.Settings{TmpDir: t.TempDir()}
	s.cache = curvecache.New(s.settings.TmpDir)
	return s
}

func TestUpdateUserValues_RejectsUnknownKey(t *testing.T) {
	calls := 0
	s := fetchInputsScenario(t, &calls)

	err := s.UpdateUserValues(context.Background(), map[string]any{"no_such_input": 1.0})
	if err == nil {
		t.Fatal("UpdateUserValues() with unknown key expected error, got nil")
	}
}

func TestUpdateUserValues_RejectsOutOfRange(t *testing.T) {
	calls := 0
	s := fetchInputsScenario(t, &calls)

	err := s.UpdateUserValues(context.Background(), map[string]any{"investment_costs_co2_ccs": 500.0})
	if err == nil {
		t.Fatal("UpdateUserValues() out of range expected error, got nil")
	}
}

func TestRemoveUserValues_SendsReset(t *testing.T) {
	var payload map[string]map[string]any
	s := newTestScenarioWith(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			json.NewDecoder(r.Body).Decode(&payload)
			w.Write([]byte(`{"scenario": {"id": 123, "area_code": "nl", "end_year": 2050}}`))
			return
		}
		w.Write([]byte(`{"investment_costs_co2_ccs": {"unit": "%", "default": 0}}`))
	})

	if err := s.RemoveUserValues(context.Background(), []string{"investment_costs_co2_ccs"}); err != nil {
		t.Fatalf("RemoveUserValues() error = %v", err)
	}
	if got := payload["scenario"]["user_values"].(map[string]any)["investment_costs_co2_ccs"]; got != "reset" {
		t.Errorf("sent value = %v, want %q", got, "reset")
	}
}

func TestUpdateUserValues_WarningsNotDuplicated(t *testing.T) {
	s := newTestScenarioWith(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.Write([]byte(`{"scenario": {"id": 123, "area_code": "nl", "end_year": 2050}}`))
			return
		}
		w.Write([]byte(`{
			"solar_share": {"unit": "%", "default": 40, "min": 0, "max": 100, "share_group": "electricity"},
			"wind_share": {"unit": "%", "default": 40, "min": 0, "max": 100, "share_group": "electricity"}
		}`))
	})

	ctx := context.Background()
	if err := s.UpdateUserValues(ctx, map[string]any{"solar_share": 50.0}); err != nil {
		t.Fatalf("UpdateUserValues() error = %v", err)
	}
	if got := s.Warnings.Len(); got != 1 {
		t.Fatalf("after first update Len() = %d, want 1", got)
	}

	// Each unbalanced update warns once; earlier warnings are not copied
	// again.
	if err := s.UpdateUserValues(ctx, map[string]any{"solar_share": 55.0}); err != nil {
		t.Fatalf("UpdateUserValues() second call error = %v", err)
	}
	if got := s.Warnings.Len(); got != 2 {
		t.Errorf("after second update Len() = %d, want 2", got)
	}
}

func TestQueries(t *testing.T) {
	s := newTestScenarioWith(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"scenario": {"id": 123, "area_code": "nl", "end_year": 2050},
			"gqueries": {
				"dashboard_co2_emissions": {"present": 100.0, "future": 40.0, "unit": "MT"}
			}
		}`))
	})

	s.AddQueries("dashboard_co2_emissions", "dashboard_co2_emissions")
	if got := s.Queries().Len(); got != 1 {
		t.Fatalf("Queries().Len() = %d, want 1 (duplicates dropped)", got)
	}
	if s.Queries().Ready() {
		t.Error("Ready() = true before execution")
	}

	if err := s.ExecuteQueries(context.Background()); err != nil {
		t.Fatalf("ExecuteQueries() error = %v", err)
	}
	if !s.Queries().Ready() {
		t.Error("Ready() = false after execution")
	}
	r, ok := s.Queries().Result("dashboard_co2_emissions")
	if !ok || r.Future != 40.0 || r.Unit != "MT" {
		t.Errorf("Result() = %+v, %v; want future 40, unit MT", r, ok)
	}
}

func TestExecuteQueries_NoneRegistered(t *testing.T) {
	s := newTestScenarioWith(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := s.ExecuteQueries(context.Background()); err == nil {
		t.Fatal("ExecuteQueries() without queries expected error, got nil")
	}
}

func TestCustomCurveSeries_CachesOnDisk(t *testing.T) {
	calls := 0
	s := newTestScenarioWith(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("1.5\n2.5\n3.5\n"))
	})

	ctx := context.Background()
	series, err := s.CustomCurveSeries(ctx, "interconnector_1_price")
	if err != nil {
		t.Fatalf("CustomCurveSeries() error = %v", err)
	}
	if len(series) != 3 || series[1] != 2.5 {
		t.Fatalf("series = %v, want [1.5 2.5 3.5]", series)
	}

	if _, err := s.CustomCurveSeries(ctx, "interconnector_1_price"); err != nil {
		t.Fatalf("CustomCurveSeries() from cache error = %v", err)
	}
	if calls != 1 {
		t.Errorf("download endpoint called %d times, want 1", calls)
	}
}

func TestOutputCurvesByCarrier_UnknownCarrier(t *testing.T) {
	s := newTestScenarioWith(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := s.OutputCurvesByCarrier(context.Background(), "plasma"); err == nil {
		t.Fatal("OutputCurvesByCarrier() with unknown carrier expected error, got nil")
	}
}
