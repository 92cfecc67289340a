package scenario

import (
	_ "embed"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed carrier_mappings.yml
var carrierMappingsYAML []byte

var (
	carrierOnce sync.Once
	carrierMap  map[string][]string
)

// CarrierMappings groups output curve keys by energy carrier. The embedded
// YAML is authoritative; a hardcoded copy backs it should the file ever
// fail to parse.
func CarrierMappings() map[string][]string {
	carrierOnce.Do(func() {
		var doc struct {
			CarrierMappings map[string][]string `yaml:"carrier_mappings"`
		}
		if err := yaml.Unmarshal(carrierMappingsYAML, &doc); err == nil && len(doc.CarrierMappings) > 0 {
			carrierMap = doc.CarrierMappings
			return
		}
		carrierMap = map[string][]string{
			"electricity": {"merit_order", "electricity_price", "residual_load"},
			"heat":        {"heat_network", "agriculture_heat", "household_heat", "buildings_heat"},
			"hydrogen":    {"hydrogen", "hydrogen_integral_cost"},
			"methane":     {"network_gas"},
		}
	})
	return carrierMap
}

// Carriers returns the known carrier names in sorted order.
func Carriers() []string {
	m := CarrierMappings()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CurvesForCarrier returns the output curve keys belonging to a carrier,
// or nil for an unknown carrier.
func CurvesForCarrier(carrier string) []string {
	return CarrierMappings()[carrier]
}

// outputCurveTypes maps curve keys to the engine's curve type labels.
var outputCurveTypes = map[string]string{
	"electricity_price":      "price_curve",
	"merit_order":            "merit_curve",
	"heat_network":           "load_curve",
	"agriculture_heat":       "merit_curve",
	"household_heat":         "fever_curve",
	"buildings_heat":         "fever_curve",
	"hydrogen":               "reconciliation_curve",
	"network_gas":            "reconciliation_curve",
	"residual_load":          "query_curve",
	"hydrogen_integral_cost": "query_curve",
}

// OutputCurveType returns the engine's type label for a curve key.
func OutputCurveType(key string) string {
	if t, ok := outputCurveTypes[key]; ok {
		return t
	}
	return "output_curve"
}
