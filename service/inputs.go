package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/quintel/etm/client"
)

// FetchInputs reads all inputs on a scenario. With defaults set to
// "original" the engine returns dataset defaults instead of inherited ones.
func FetchInputs(ctx context.Context, c *client.Client, scenarioID int, defaults string) (map[string]InputData, error) {
	var params url.Values
	if defaults != "" {
		params = url.Values{"defaults": {defaults}}
	}

	var data map[string]InputData
	path := fmt.Sprintf("/scenarios/%d/inputs", scenarioID)
	if err := c.Get(ctx, path, params, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateInputs sets user values through the main scenario endpoint. A value
// of "reset" clears the slider back to its default.
func UpdateInputs(ctx context.Context, c *client.Client, scenarioID int, values map[string]any) (ScenarioData, error) {
	payload := map[string]any{
		"scenario": map[string]any{"user_values": values},
	}

	var raw json.RawMessage
	path := fmt.Sprintf("/scenarios/%d", scenarioID)
	if err := c.Put(ctx, path, payload, &raw); err != nil {
		return ScenarioData{}, err
	}

	// Same response shape as metadata updates: usually wrapped, sometimes
	// the scenario at the top level.
	var wrapped struct {
		Scenario *ScenarioData `json:"scenario"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Scenario != nil {
		return *wrapped.Scenario, nil
	}
	var data ScenarioData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ScenarioData{}, fmt.Errorf("decode scenario: %w", err)
	}
	return data, nil
}

// QueryResults evaluates gqueries against a scenario.
func QueryResults(ctx context.Context, c *client.Client, scenarioID int, gqueryKeys []string) (map[string]QueryResult, error) {
	payload := map[string]any{"gqueries": gqueryKeys}

	var out struct {
		GQueries map[string]QueryResult `json:"gqueries"`
	}
	path := fmt.Sprintf("/scenarios/%d", scenarioID)
	if err := c.Put(ctx, path, payload, &out); err != nil {
		return nil, err
	}
	if out.GQueries == nil {
		return nil, fmt.Errorf("no gqueries in response")
	}
	return out.GQueries, nil
}
