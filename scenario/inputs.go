package scenario

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/quintel/etm/service"
)

// ResetValue is the sentinel accepted by the engine to clear a user value.
const ResetValue = "reset"

// InputKind describes how an input's value is interpreted.
type InputKind int

const (
	FloatInput InputKind = iota
	BoolInput
	EnumInput
)

func (k InputKind) String() string {
	switch k {
	case BoolInput:
		return "bool"
	case EnumInput:
		return "enum"
	default:
		return "float"
	}
}

// Input is one scenario slider, switch or selector.
type Input struct {
	Key             string
	Unit            string
	Default         any
	User            any
	Min             *float64
	Max             *float64
	Step            *float64
	ShareGroup      string
	PermittedValues []string
	Disabled        bool
	DisabledBy      string
	CouplingGroups  []string
	Label           string
}

// Kind is derived from the unit and permitted values of the input.
func (in *Input) Kind() InputKind {
	switch {
	case in.Unit == "bool":
		return BoolInput
	case in.Unit == "enum" || len(in.PermittedValues) > 0:
		return EnumInput
	default:
		return FloatInput
	}
}

// Value returns the user value when set, the default otherwise.
func (in *Input) Value() any {
	if in.User != nil {
		return in.User
	}
	return in.Default
}

// IsSet reports whether the input carries a user value.
func (in *Input) IsSet() bool {
	return in.User != nil
}

// Validate checks a candidate user value against the input's constraints.
// The reset sentinel is always accepted.
func (in *Input) Validate(value any) error {
	if s, ok := value.(string); ok && s == ResetValue {
		return nil
	}
	if in.Disabled {
		return fmt.Errorf("input %s is disabled (by %s)", in.Key, in.DisabledBy)
	}

	switch in.Kind() {
	case BoolInput:
		f, err := toFloat(value)
		if err != nil || (f != 0 && f != 1) {
			return fmt.Errorf("input %s accepts 0 or 1, got %v", in.Key, value)
		}
	case EnumInput:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("input %s accepts one of %v, got %v", in.Key, in.PermittedValues, value)
		}
		for _, p := range in.PermittedValues {
			if p == s {
				return nil
			}
		}
		return fmt.Errorf("input %s accepts one of %v, got %q", in.Key, in.PermittedValues, s)
	default:
		f, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("input %s accepts a number, got %v", in.Key, value)
		}
		if in.Min != nil && f < *in.Min {
			return fmt.Errorf("input %s value %v below minimum %v", in.Key, f, *in.Min)
		}
		if in.Max != nil && f > *in.Max {
			return fmt.Errorf("input %s value %v above maximum %v", in.Key, f, *in.Max)
		}
	}
	return nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("not a number: %v", value)
	}
}

// Inputs is the set of inputs of a scenario, keyed and iterable in sorted
// key order.
type Inputs struct {
	byKey map[string]*Input
	keys  []string

	Warnings
}

func newInputs(data map[string]service.InputData) *Inputs {
	ins := &Inputs{byKey: make(map[string]*Input, len(data))}
	for key, d := range data {
		ins.byKey[key] = &Input{
			Key:             key,
			Unit:            d.Unit,
			Default:         d.Default,
			User:            d.User,
			Min:             d.Min,
			Max:             d.Max,
			Step:            d.Step,
			ShareGroup:      d.ShareGroup,
			PermittedValues: d.PermittedValues,
			Disabled:        d.Disabled,
			DisabledBy:      d.DisabledBy,
			CouplingGroups:  d.CouplingGroups,
			Label:           d.Label,
		}
		ins.keys = append(ins.keys, key)
	}
	sort.Strings(ins.keys)
	return ins
}

// Get returns the input for key, or nil when unknown.
func (ins *Inputs) Get(key string) *Input {
	return ins.byKey[key]
}

// Keys returns all input keys in sorted order.
func (ins *Inputs) Keys() []string {
	out := make([]string, len(ins.keys))
	copy(out, ins.keys)
	return out
}

// Len returns the number of inputs.
func (ins *Inputs) Len() int {
	return len(ins.keys)
}

// Each calls fn for every input in sorted key order.
func (ins *Inputs) Each(fn func(*Input)) {
	for _, key := range ins.keys {
		fn(ins.byKey[key])
	}
}

// UserValues returns the subset of inputs carrying a user value.
func (ins *Inputs) UserValues() map[string]any {
	out := make(map[string]any)
	for key, in := range ins.byKey {
		if in.User != nil {
			out[key] = in.User
		}
	}
	return out
}

// ValidateUpdate checks a batch of candidate user values. Unknown keys and
// constraint violations are errors; share groups that no longer sum to 100
// are collected as warnings.
func (ins *Inputs) ValidateUpdate(values map[string]any) error {
	for key, value := range values {
		in := ins.Get(key)
		if in == nil {
			return fmt.Errorf("unknown input %q", key)
		}
		if err := in.Validate(value); err != nil {
			return err
		}
	}
	ins.checkShareGroups(values)
	return nil
}

// checkShareGroups sums each affected share group with the candidate values
// applied. Groups off by more than 0.01 get a warning; the engine balances
// them server-side, so this is advisory.
func (ins *Inputs) checkShareGroups(values map[string]any) {
	groups := make(map[string]bool)
	for key := range values {
		if in := ins.Get(key); in != nil && in.ShareGroup != "" {
			groups[in.ShareGroup] = true
		}
	}

	for group := range groups {
		sum := 0.0
		complete := true
		for _, key := range ins.keys {
			in := ins.byKey[key]
			if in.ShareGroup != group {
				continue
			}
			value := in.Value()
			if v, ok := values[in.Key]; ok {
				value = v
			}
			if s, ok := value.(string); ok && s == ResetValue {
				value = in.Default
			}
			f, err := toFloat(value)
			if err != nil {
				complete = false
				break
			}
			sum += f
		}
		if complete && math.Abs(sum-100) > 0.01 {
			ins.Add(group, "share group sums to %.2f, expected 100", sum)
		}
	}
}

func (ins *Inputs) applyUpdate(values map[string]any) {
	for key, value := range values {
		in := ins.Get(key)
		if in == nil {
			continue
		}
		if s, ok := value.(string); ok && s == ResetValue {
			in.User = nil
			continue
		}
		in.User = value
	}
}
