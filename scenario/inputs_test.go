package scenario

import (
	"testing"

	"github.com/quintel/etm/service"
)

func f(v float64) *float64 { return &v }

func testInputs() *Inputs {
	return newInputs(map[string]service.InputData{
		"co2_price": {
			Unit: "euro", Default: 50.0, Min: f(0), Max: f(300),
		},
		"heat_pump_enabled": {
			Unit: "bool", Default: 0.0,
		},
		"weather_year": {
			Unit: "enum", Default: "default", PermittedValues: []string{"default", "1987"},
		},
		"solar_share": {
			Unit: "%", Default: 40.0, Min: f(0), Max: f(100), ShareGroup: "renewables",
		},
		"wind_share": {
			Unit: "%", Default: 60.0, Min: f(0), Max: f(100), ShareGroup: "renewables",
		},
		"legacy_input": {
			Unit: "euro", Default: 1.0, Disabled: true, DisabledBy: "co2_price",
		},
	})
}

func TestInputKind(t *testing.T) {
	ins := testInputs()
	tests := []struct {
		key  string
		want InputKind
	}{
		{"co2_price", FloatInput},
		{"heat_pump_enabled", BoolInput},
		{"weather_year", EnumInput},
	}
	for _, tt := range tests {
		if got := ins.Get(tt.key).Kind(); got != tt.want {
			t.Errorf("Kind(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestInputValidate(t *testing.T) {
	ins := testInputs()
	tests := []struct {
		key     string
		value   any
		wantErr bool
	}{
		{"co2_price", 100.0, false},
		{"co2_price", -5.0, true},
		{"co2_price", 500.0, true},
		{"co2_price", "reset", false},
		{"co2_price", "not a number", true},
		{"heat_pump_enabled", 1.0, false},
		{"heat_pump_enabled", 2.0, true},
		{"weather_year", "1987", false},
		{"weather_year", "2020", true},
		{"weather_year", 1987, true},
		{"legacy_input", 2.0, true},
		{"legacy_input", "reset", false},
	}

	for _, tt := range tests {
		err := ins.Get(tt.key).Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%s, %v) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}
}

func TestValidateUpdate_UnknownKey(t *testing.T) {
	ins := testInputs()
	if err := ins.ValidateUpdate(map[string]any{"nope": 1.0}); err == nil {
		t.Fatal("ValidateUpdate() with unknown key expected error, got nil")
	}
}

func TestValidateUpdate_ShareGroupWarning(t *testing.T) {
	ins := testInputs()
	if err := ins.ValidateUpdate(map[string]any{"solar_share": 70.0}); err != nil {
		t.Fatalf("ValidateUpdate() error = %v", err)
	}
	if !ins.HasWarnings() {
		t.Fatal("expected a share group warning, got none")
	}

	balanced := testInputs()
	if err := balanced.ValidateUpdate(map[string]any{"solar_share": 30.0, "wind_share": 70.0}); err != nil {
		t.Fatalf("ValidateUpdate() error = %v", err)
	}
	if balanced.HasWarnings() {
		t.Errorf("balanced update produced warnings: %v", balanced.Warnings.Warnings())
	}
}

func TestUserValues(t *testing.T) {
	ins := newInputs(map[string]service.InputData{
		"a": {Unit: "euro", Default: 1.0, User: 2.0},
		"b": {Unit: "euro", Default: 1.0},
	})
	got := ins.UserValues()
	if len(got) != 1 || got["a"] != 2.0 {
		t.Errorf("UserValues() = %v, want map[a:2]", got)
	}
}

func TestApplyUpdate_Reset(t *testing.T) {
	ins := newInputs(map[string]service.InputData{
		"a": {Unit: "euro", Default: 1.0, User: 2.0},
	})
	ins.applyUpdate(map[string]any{"a": ResetValue})
	if ins.Get("a").IsSet() {
		t.Error("IsSet() = true after reset")
	}
	if got := ins.Get("a").Value(); got != 1.0 {
		t.Errorf("Value() = %v, want default 1", got)
	}
}
