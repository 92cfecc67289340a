package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/quintel/etm/client"
)

// OutputCurveTypes are the curves served by the bulk output endpoint.
var OutputCurveTypes = []string{
	"merit_order",
	"electricity_price",
	"heat_network",
	"agriculture_heat",
	"household_heat",
	"buildings_heat",
	"hydrogen",
	"network_gas",
	"residual_load",
	"hydrogen_integral_cost",
}

const maxConcurrentDownloads = 8

// FetchCustomCurves lists the custom curves of a scenario.
func FetchCustomCurves(ctx context.Context, c *client.Client, scenarioID int) ([]CustomCurveData, error) {
	var data []CustomCurveData
	path := fmt.Sprintf("/scenarios/%d/custom_curves", scenarioID)
	if err := c.Get(ctx, path, nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// DownloadCustomCurve fetches one custom curve as raw CSV.
func DownloadCustomCurve(ctx context.Context, c *client.Client, scenarioID int, key string) ([]byte, error) {
	path := fmt.Sprintf("/scenarios/%d/custom_curves/%s.csv", scenarioID, key)
	return c.GetCSV(ctx, path, nil)
}

// DownloadOutputCurve fetches one output (carrier) curve as raw CSV.
func DownloadOutputCurve(ctx context.Context, c *client.Client, scenarioID int, key string) ([]byte, error) {
	path := fmt.Sprintf("/scenarios/%d/curves/%s.csv", scenarioID, key)
	return c.GetCSV(ctx, path, nil)
}

// UploadCustomCurve attaches curve CSV data under the given key.
func UploadCustomCurve(ctx context.Context, c *client.Client, scenarioID int, key string, contents io.Reader) error {
	path := fmt.Sprintf("/scenarios/%d/custom_curves/%s", scenarioID, key)
	return c.UploadFile(ctx, path, key+".csv", contents, nil)
}

// DeleteCustomCurve detaches a custom curve.
func DeleteCustomCurve(ctx context.Context, c *client.Client, scenarioID int, key string) error {
	path := fmt.Sprintf("/scenarios/%d/custom_curves/%s", scenarioID, key)
	return c.Delete(ctx, path)
}

// DownloadCurves fetches several curves concurrently. Failures of single
// curves become warnings; the call only fails when nothing was downloaded.
func DownloadCurves(ctx context.Context, c *client.Client, scenarioID int, keys []string, custom bool) (map[string][]byte, []string, error) {
	results := make(map[string][]byte, len(keys))
	var warnings []string
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)

	for _, key := range keys {
		key := key
		g.Go(func() error {
			var body []byte
			var err error
			if custom {
				body, err = DownloadCustomCurve(ctx, c, scenarioID, key)
			} else {
				body, err = DownloadOutputCurve(ctx, c, scenarioID, key)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", key, err))
				return nil
			}
			results[key] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Strings(warnings)
	if len(results) == 0 {
		if len(warnings) > 0 {
			return nil, nil, fmt.Errorf("no curves could be downloaded: %s", strings.Join(warnings, "; "))
		}
		return nil, nil, fmt.Errorf("no curves could be downloaded")
	}
	return results, warnings, nil
}

// BulkOutputCurves fetches the bulk CSV with all requested curve types and
// splits it into one CSV per curve group. Columns are grouped on the part of
// the header before the first ':' or '/'.
func BulkOutputCurves(ctx context.Context, c *client.Client, scenarioID int, curveTypes []string) (map[string][]byte, []string, error) {
	if len(curveTypes) == 0 {
		curveTypes = OutputCurveTypes
	}

	params := url.Values{"curve_types": {strings.Join(curveTypes, ",")}}
	path := fmt.Sprintf("/scenarios/%d/bulk_output_curves", scenarioID)
	body, err := c.GetCSV(ctx, path, params)
	if err != nil {
		return nil, nil, err
	}

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse bulk CSV: %w", err)
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, nil, fmt.Errorf("no curves present in CSV")
	}

	header := records[0]
	groups := make(map[string][]int)
	var order []string
	for col := 1; col < len(header); col++ {
		base := header[col]
		for _, sep := range []string{":", "/"} {
			if idx := strings.Index(base, sep); idx >= 0 {
				base = base[:idx]
				break
			}
		}
		if _, seen := groups[base]; !seen {
			order = append(order, base)
		}
		groups[base] = append(groups[base], col)
	}

	results := make(map[string][]byte, len(groups))
	var warnings []string
	for _, base := range order {
		cols := groups[base]

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		for rowIdx, row := range records {
			out := make([]string, 0, len(cols)+1)
			out = append(out, row[0])
			empty := true
			for _, col := range cols {
				value := ""
				if col < len(row) {
					value = row[col]
				}
				if value != "" {
					empty = false
				}
				out = append(out, value)
			}
			if rowIdx > 0 && empty {
				continue
			}
			if err := w.Write(out); err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: failed to prepare CSV: %v", base, err))
				break
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: failed to prepare CSV: %v", base, err))
			continue
		}
		results[base] = buf.Bytes()
	}

	if len(results) == 0 {
		return nil, nil, fmt.Errorf("no curves present in CSV")
	}
	return results, warnings, nil
}
