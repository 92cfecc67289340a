package scenario

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/quintel/etm/service"
)

// Sortable is one user-orderable list. Nested orders such as heat_network
// carry a subtype (lt, mt, ht) and flatten to <type>_<subtype>.
type Sortable struct {
	Type    string
	Subtype string
	Order   []string
}

// Name returns the flattened display name of the sortable.
func (s *Sortable) Name() string {
	if s.Subtype != "" {
		return s.Type + "_" + s.Subtype
	}
	return s.Type
}

// Sortables is a flat collection of every order of a scenario.
type Sortables struct {
	list []*Sortable

	Warnings
}

// newSortables flattens the index payload: list payloads yield one sortable,
// object payloads one per subtype. Undecodable payloads become empty
// sortables with a warning.
func newSortables(data map[string]json.RawMessage) *Sortables {
	types := make([]string, 0, len(data))
	for t := range data {
		types = append(types, t)
	}
	sort.Strings(types)

	out := &Sortables{}
	for _, t := range types {
		out.appendPayload(t, data[t])
	}
	return out
}

func (ss *Sortables) appendPayload(sortType string, payload json.RawMessage) {
	var order []string
	if err := json.Unmarshal(payload, &order); err == nil {
		ss.list = append(ss.list, &Sortable{Type: sortType, Order: order})
		return
	}

	var nested map[string][]string
	if err := json.Unmarshal(payload, &nested); err == nil {
		subs := make([]string, 0, len(nested))
		for sub := range nested {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			ss.list = append(ss.list, &Sortable{Type: sortType, Subtype: sub, Order: nested[sub]})
		}
		return
	}

	ss.list = append(ss.list, &Sortable{Type: sortType})
	ss.Add(sortType, "unexpected payload: %s", string(payload))
}

// Get returns the sortable with the given flattened name, or nil.
func (ss *Sortables) Get(name string) *Sortable {
	for _, s := range ss.list {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Names returns the flattened names in collection order.
func (ss *Sortables) Names() []string {
	out := make([]string, len(ss.list))
	for i, s := range ss.list {
		out[i] = s.Name()
	}
	return out
}

// Each calls fn for every sortable in collection order.
func (ss *Sortables) Each(fn func(*Sortable)) {
	for _, s := range ss.list {
		fn(s)
	}
}

func (ss *Sortables) Len() int {
	return len(ss.list)
}

// AsMap rebuilds the index payload shape, nesting subtypes again.
func (ss *Sortables) AsMap() map[string]any {
	out := make(map[string]any)
	for _, s := range ss.list {
		if s.Subtype == "" {
			out[s.Type] = s.Order
			continue
		}
		nested, ok := out[s.Type].(map[string][]string)
		if !ok {
			nested = make(map[string][]string)
			out[s.Type] = nested
		}
		nested[s.Subtype] = s.Order
	}
	return out
}

// splitSortableName splits a flattened name into the endpoint type and
// subtype. Only heat_network carries subtypes.
func splitSortableName(name string) (sortType, subtype string) {
	if strings.HasPrefix(name, "heat_network_") {
		return "heat_network", strings.TrimPrefix(name, "heat_network_")
	}
	return name, ""
}

// Couplings is the coupling group state of a scenario.
type Couplings struct {
	Active   []string
	Inactive []string
}

func couplingsFromService(data service.CouplingsData) Couplings {
	return Couplings{Active: data.Active, Inactive: data.Inactive}
}

// All returns active and inactive groups combined, active first.
func (c Couplings) All() []string {
	out := make([]string, 0, len(c.Active)+len(c.Inactive))
	out = append(out, c.Active...)
	out = append(out, c.Inactive...)
	return out
}

// Has reports whether group is known at all, active or not.
func (c Couplings) Has(group string) bool {
	for _, g := range c.All() {
		if g == group {
			return true
		}
	}
	return false
}

func (c Couplings) String() string {
	return fmt.Sprintf("active=%v inactive=%v", c.Active, c.Inactive)
}
