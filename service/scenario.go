package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/quintel/etm/client"
)

// Fields accepted by POST /scenarios.
var (
	createRequiredKeys = []string{"area_code", "end_year"}
	createOptionalKeys = []string{
		"keep_compatible", "private", "source", "title", "metadata",
		"start_year", "scaling", "template", "url",
	}
)

// Metadata fields exposed by GET /scenarios/{id}.
var metadataKeys = []string{
	"id", "created_at", "updated_at", "end_year", "keep_compatible",
	"private", "area_code", "source", "metadata", "title", "start_year",
	"scaling", "template", "url",
}

// Fields accepted by PUT /scenarios/{id} for metadata updates.
var updatableMetadataKeys = []string{
	"end_year", "keep_compatible", "private", "area_code", "source",
	"metadata", "start_year", "scaling", "template", "url",
}

// FetchScenario reads the full scenario JSON, including user and balanced
// values.
func FetchScenario(ctx context.Context, c *client.Client, scenarioID int) (ScenarioData, error) {
	var data ScenarioData
	path := fmt.Sprintf("/scenarios/%d", scenarioID)
	if err := c.Get(ctx, path, nil, &data); err != nil {
		return ScenarioData{}, err
	}
	return data, nil
}

// CreateScenario creates a new scenario. area_code and end_year are required;
// unknown attributes are dropped with a warning rather than rejected.
func CreateScenario(ctx context.Context, c *client.Client, attrs map[string]any) (ScenarioData, []string, error) {
	var missing []string
	for _, key := range createRequiredKeys {
		if _, ok := attrs[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return ScenarioData{}, nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	allowed := make(map[string]struct{}, len(createRequiredKeys)+len(createOptionalKeys))
	for _, key := range append(append([]string{}, createRequiredKeys...), createOptionalKeys...) {
		allowed[key] = struct{}{}
	}

	filtered := make(map[string]any, len(attrs))
	var warnings []string
	for key, value := range attrs {
		if _, ok := allowed[key]; ok {
			filtered[key] = value
		} else {
			warnings = append(warnings, fmt.Sprintf("ignoring invalid field for scenario creation: %q", key))
		}
	}
	sort.Strings(warnings)

	var data ScenarioData
	payload := map[string]any{"scenario": filtered}
	if err := c.Post(ctx, "/scenarios", payload, &data); err != nil {
		return ScenarioData{}, nil, err
	}
	return data, warnings, nil
}

// FetchMetadata reads the scenario and filters it down to the metadata
// fields. A missing field is non-breaking and reported as a warning.
func FetchMetadata(ctx context.Context, c *client.Client, scenarioID int) (ScenarioData, []string, error) {
	path := fmt.Sprintf("/scenarios/%d", scenarioID)

	var raw map[string]json.RawMessage
	if err := c.Get(ctx, path, nil, &raw); err != nil {
		return ScenarioData{}, nil, err
	}

	var warnings []string
	filtered := make(map[string]json.RawMessage, len(metadataKeys))
	for _, key := range metadataKeys {
		if value, ok := raw[key]; ok {
			filtered[key] = value
		} else {
			warnings = append(warnings, fmt.Sprintf("missing field in response: %q", key))
		}
	}

	merged, err := json.Marshal(filtered)
	if err != nil {
		return ScenarioData{}, nil, fmt.Errorf("reassemble metadata: %w", err)
	}
	var data ScenarioData
	if err := json.Unmarshal(merged, &data); err != nil {
		return ScenarioData{}, nil, fmt.Errorf("decode metadata: %w", err)
	}
	return data, warnings, nil
}

// UpdateMetadata applies metadata changes through PUT /scenarios/{id}.
// Non-updatable keys are filtered out with a warning.
func UpdateMetadata(ctx context.Context, c *client.Client, scenarioID int, metadata map[string]any) (ScenarioData, []string, error) {
	filtered := make(map[string]any, len(metadata))
	var warnings []string
	for key, value := range metadata {
		if isUpdatableMetadataKey(key) {
			filtered[key] = value
		} else {
			warnings = append(warnings, fmt.Sprintf("ignoring non-updatable metadata field: %q", key))
		}
	}
	sort.Strings(warnings)

	var raw json.RawMessage
	path := fmt.Sprintf("/scenarios/%d", scenarioID)
	payload := map[string]any{"scenario": filtered}
	if err := c.Put(ctx, path, payload, &raw); err != nil {
		return ScenarioData{}, nil, err
	}

	// The engine wraps the scenario for this endpoint; older versions return
	// it at the top level.
	var wrapped struct {
		Scenario *ScenarioData `json:"scenario"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Scenario != nil {
		return *wrapped.Scenario, warnings, nil
	}
	var data ScenarioData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ScenarioData{}, nil, fmt.Errorf("decode scenario: %w", err)
	}
	return data, warnings, nil
}

func isUpdatableMetadataKey(key string) bool {
	for _, k := range updatableMetadataKeys {
		if k == key {
			return true
		}
	}
	return false
}
