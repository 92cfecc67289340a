package scenario

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewSortables_FlattensSubtypes(t *testing.T) {
	ss := newSortables(map[string]json.RawMessage{
		"forecast_storage_order": json.RawMessage(`["a", "b"]`),
		"heat_network":           json.RawMessage(`{"lt": ["x"], "mt": [], "ht": ["y", "z"]}`),
	})

	want := []string{"forecast_storage_order", "heat_network_ht", "heat_network_lt", "heat_network_mt"}
	if got := ss.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if got := ss.Get("heat_network_ht").Order; !reflect.DeepEqual(got, []string{"y", "z"}) {
		t.Errorf("heat_network_ht order = %v, want [y z]", got)
	}
	if ss.HasWarnings() {
		t.Errorf("unexpected warnings: %v", ss.Warnings.Warnings())
	}
}

func TestNewSortables_UnexpectedPayloadWarns(t *testing.T) {
	ss := newSortables(map[string]json.RawMessage{
		"broken": json.RawMessage(`42`),
	})
	if ss.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ss.Len())
	}
	if !ss.HasWarnings() {
		t.Error("expected a warning for unexpected payload")
	}
}

func TestSortablesAsMap(t *testing.T) {
	ss := newSortables(map[string]json.RawMessage{
		"forecast_storage_order": json.RawMessage(`["a"]`),
		"heat_network":           json.RawMessage(`{"lt": ["x"]}`),
	})

	got := ss.AsMap()
	if !reflect.DeepEqual(got["forecast_storage_order"], []string{"a"}) {
		t.Errorf("forecast_storage_order = %v, want [a]", got["forecast_storage_order"])
	}
	nested, ok := got["heat_network"].(map[string][]string)
	if !ok || !reflect.DeepEqual(nested["lt"], []string{"x"}) {
		t.Errorf("heat_network = %v, want map[lt:[x]]", got["heat_network"])
	}
}

func TestSplitSortableName(t *testing.T) {
	tests := []struct {
		name        string
		wantType    string
		wantSubtype string
	}{
		{"forecast_storage_order", "forecast_storage_order", ""},
		{"heat_network_lt", "heat_network", "lt"},
		{"heat_network_mt", "heat_network", "mt"},
		{"heat_network_ht", "heat_network", "ht"},
	}
	for _, tt := range tests {
		gotType, gotSubtype := splitSortableName(tt.name)
		if gotType != tt.wantType || gotSubtype != tt.wantSubtype {
			t.Errorf("splitSortableName(%q) = %q, %q; want %q, %q",
				tt.name, gotType, gotSubtype, tt.wantType, tt.wantSubtype)
		}
	}
}

func TestCouplingsHas(t *testing.T) {
	c := Couplings{Active: []string{"steel"}, Inactive: []string{"chemicals"}}
	if !c.Has("steel") || !c.Has("chemicals") {
		t.Error("Has() = false for known groups")
	}
	if c.Has("aviation") {
		t.Error("Has(aviation) = true, want false")
	}
}
