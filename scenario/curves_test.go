package scenario

import (
	"reflect"
	"testing"

	"github.com/quintel/etm/service"
)

func TestParseSeries(t *testing.T) {
	series, err := parseSeries([]byte("1.0\n2.5\n\n3.0\r\n"))
	if err != nil {
		t.Fatalf("parseSeries() error = %v", err)
	}
	want := Series{1.0, 2.5, 3.0}
	if !reflect.DeepEqual(series, want) {
		t.Errorf("parseSeries() = %v, want %v", series, want)
	}
}

func TestParseSeries_BadValue(t *testing.T) {
	if _, err := parseSeries([]byte("1.0\nhello\n")); err == nil {
		t.Fatal("parseSeries() with non-numeric line expected error, got nil")
	}
}

func TestSeriesCSVRoundTrip(t *testing.T) {
	in := Series{1.5, 0, 42}
	out, err := parseSeries(in.CSV())
	if err != nil {
		t.Fatalf("parseSeries() error = %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}

func TestParseTable(t *testing.T) {
	csv := []byte("Time,plant_a,plant_b\n0,1.5,2.5\n1,,\n2,3.0,4.0\n")
	table, err := parseTable(csv)
	if err != nil {
		t.Fatalf("parseTable() error = %v", err)
	}
	if want := []string{"plant_a", "plant_b"}; !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("Columns = %v, want %v", table.Columns, want)
	}
	// The all-empty row is dropped.
	if table.Rows() != 2 {
		t.Fatalf("Rows() = %d, want 2", table.Rows())
	}
	if got := table.Column("plant_b"); !reflect.DeepEqual(got, []float64{2.5, 4.0}) {
		t.Errorf("Column(plant_b) = %v, want [2.5 4]", got)
	}
	if table.Column("missing") != nil {
		t.Error("Column(missing) != nil")
	}
}

func TestCarrierMappings(t *testing.T) {
	if got := CurvesForCarrier("methane"); !reflect.DeepEqual(got, []string{"network_gas"}) {
		t.Errorf("CurvesForCarrier(methane) = %v, want [network_gas]", got)
	}
	if CurvesForCarrier("plasma") != nil {
		t.Error("CurvesForCarrier(plasma) != nil")
	}
	want := []string{"electricity", "heat", "hydrogen", "methane"}
	if got := Carriers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Carriers() = %v, want %v", got, want)
	}
}

func TestOutputCurveType(t *testing.T) {
	if got := OutputCurveType("merit_order"); got != "merit_curve" {
		t.Errorf("OutputCurveType(merit_order) = %q, want %q", got, "merit_curve")
	}
	if got := OutputCurveType("something_new"); got != "output_curve" {
		t.Errorf("OutputCurveType(something_new) = %q, want %q", got, "output_curve")
	}
}

func TestNewCustomCurves(t *testing.T) {
	cc := newCustomCurves([]service.CustomCurveData{
		{Key: "interconnector_1_price", Type: "price", Attached: true},
		{Key: "solar_pv_profile_1", Type: "profile"},
		{}, // no key
	})

	if cc.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cc.Len())
	}
	if !cc.HasWarnings() {
		t.Error("expected warning for keyless curve")
	}
	if got := cc.Attached(); !reflect.DeepEqual(got, []string{"interconnector_1_price"}) {
		t.Errorf("Attached() = %v, want [interconnector_1_price]", got)
	}
}
