package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/quintel/etm/client"
)

// FetchSortables reads all user sortables on a scenario. Payload values are
// either flat order lists or, for heat_network, a subtype → order map; the
// raw message is passed on for the model layer to flatten.
func FetchSortables(ctx context.Context, c *client.Client, scenarioID int) (map[string]json.RawMessage, error) {
	var data map[string]json.RawMessage
	path := fmt.Sprintf("/scenarios/%d/user_sortables", scenarioID)
	if err := c.Get(ctx, path, nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateSortable replaces the order of one sortable. subtype selects the
// heat_network temperature level (lt, mt, ht) and is empty otherwise. An
// empty order resets the sortable.
func UpdateSortable(ctx context.Context, c *client.Client, scenarioID int, name, subtype string, order []string) error {
	var params url.Values
	if subtype != "" {
		params = url.Values{"subtype": {subtype}}
	}
	if order == nil {
		order = []string{}
	}

	payload := map[string]any{"order": order}
	path := fmt.Sprintf("/scenarios/%d/user_sortables/%s", scenarioID, name)
	return c.PutParams(ctx, path, params, payload, nil)
}

// FetchCouplings extracts the coupling groups from the scenario JSON. A
// missing coupling field is reported as a warning.
func FetchCouplings(ctx context.Context, c *client.Client, scenarioID int) (CouplingsData, []string, error) {
	var raw map[string]json.RawMessage
	path := fmt.Sprintf("/scenarios/%d", scenarioID)
	if err := c.Get(ctx, path, nil, &raw); err != nil {
		return CouplingsData{}, nil, err
	}
	return couplingsFromRaw(raw)
}

// UpdateCouplings couples or uncouples the given groups.
// POST /scenarios/{id}/couple or /scenarios/{id}/uncouple.
func UpdateCouplings(ctx context.Context, c *client.Client, scenarioID int, groups []string, couple, force bool) (CouplingsData, []string, error) {
	action := "couple"
	if !couple {
		action = "uncouple"
	}

	payload := map[string]any{"groups": groups}
	if !couple && force {
		payload["force"] = true
	}

	var raw map[string]json.RawMessage
	path := fmt.Sprintf("/scenarios/%d/%s", scenarioID, action)
	if err := c.Post(ctx, path, payload, &raw); err != nil {
		return CouplingsData{}, nil, err
	}
	return couplingsFromRaw(raw)
}

func couplingsFromRaw(raw map[string]json.RawMessage) (CouplingsData, []string, error) {
	var data CouplingsData
	var warnings []string

	for _, field := range []struct {
		key  string
		dest *[]string
	}{
		{"active_couplings", &data.Active},
		{"inactive_couplings", &data.Inactive},
	} {
		value, ok := raw[field.key]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("missing coupling field in response: %q", field.key))
			continue
		}
		if err := json.Unmarshal(value, field.dest); err != nil {
			return CouplingsData{}, nil, fmt.Errorf("decode %s: %w", field.key, err)
		}
	}
	return data, warnings, nil
}
