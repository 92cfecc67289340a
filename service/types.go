// Package service exposes one function per engine API operation. Functions
// return typed wire data plus a list of non-breaking warnings; breaking
// failures are returned as errors.
package service

import (
	"encoding/json"
	"time"
)

// ScenarioData mirrors the engine's scenario JSON.
type ScenarioData struct {
	ID                int                    `json:"id"`
	AreaCode          string                 `json:"area_code"`
	EndYear           int                    `json:"end_year"`
	StartYear         *int                   `json:"start_year,omitempty"`
	Title             string                 `json:"title,omitempty"`
	Source            string                 `json:"source,omitempty"`
	Template          *int                   `json:"template,omitempty"`
	URL               string                 `json:"url,omitempty"`
	KeepCompatible    *bool                  `json:"keep_compatible,omitempty"`
	Private           *bool                  `json:"private,omitempty"`
	Scaling           json.RawMessage        `json:"scaling,omitempty"`
	Metadata          map[string]any         `json:"metadata,omitempty"`
	CreatedAt         *time.Time             `json:"created_at,omitempty"`
	UpdatedAt         *time.Time             `json:"updated_at,omitempty"`
	ActiveCouplings   []string               `json:"active_couplings,omitempty"`
	InactiveCouplings []string               `json:"inactive_couplings,omitempty"`
	UserValues        map[string]any         `json:"user_values,omitempty"`
	BalancedValues    map[string]any         `json:"balanced_values,omitempty"`
	GQueries          map[string]QueryResult `json:"gqueries,omitempty"`
}

// InputData is one entry of GET /scenarios/{id}/inputs. Default and User are
// float, bool or string depending on the input unit.
type InputData struct {
	Unit             string   `json:"unit"`
	Default          any      `json:"default"`
	User             any      `json:"user,omitempty"`
	Min              *float64 `json:"min,omitempty"`
	Max              *float64 `json:"max,omitempty"`
	Step             *float64 `json:"step,omitempty"`
	ShareGroup       string   `json:"share_group,omitempty"`
	PermittedValues  []string `json:"permitted_values,omitempty"`
	Disabled         bool     `json:"disabled,omitempty"`
	DisabledBy       string   `json:"disabled_by,omitempty"`
	CouplingDisabled bool     `json:"coupling_disabled,omitempty"`
	CouplingGroups   []string `json:"coupling_groups,omitempty"`
	Label            string   `json:"label,omitempty"`
}

// QueryResult is one gquery answer.
type QueryResult struct {
	Present float64 `json:"present"`
	Future  float64 `json:"future"`
	Unit    string  `json:"unit"`
}

// CustomCurveData describes an attached (or attachable) custom curve.
type CustomCurveData struct {
	Key       string          `json:"key"`
	Type      string          `json:"type"`
	Attached  bool            `json:"attached"`
	Name      string          `json:"name,omitempty"`
	Overrides []string        `json:"overrides,omitempty"`
	Stats     json.RawMessage `json:"stats,omitempty"`
}

// CouplingsData holds the coupling group state of a scenario.
type CouplingsData struct {
	Active   []string
	Inactive []string
}
