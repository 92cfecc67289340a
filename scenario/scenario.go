// Package scenario holds the domain models built on top of the raw engine
// API: scenarios with lazily fetched inputs, sortables, queries and curves.
package scenario

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quintel/etm/client"
	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/curvecache"
	"github.com/quintel/etm/service"
)

// Scenario is a handle on one engine scenario. Submodels (inputs, sortables,
// custom curves, queries) are fetched on first use and cached; Refresh
// drops the caches.
type Scenario struct {
	ID       int
	AreaCode string
	EndYear  int
	Title    string
	URL      string

	StartYear      *int
	KeepCompatible bool
	Private        bool
	Source         string
	Template       *int
	Metadata       map[string]any
	CreatedAt      *time.Time
	UpdatedAt      *time.Time

	client   *client.Client
	settings config.Settings
	cache    *curvecache.Store

	inputs       *Inputs
	sortables    *Sortables
	customCurves *CustomCurves
	couplings    *Couplings
	queries      *Gqueries

	Warnings
}

// Load fetches an existing scenario by id.
func Load(ctx context.Context, c *client.Client, settings config.Settings, id int) (*Scenario, error) {
	data, err := service.FetchScenario(ctx, c, id)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %d: %w", id, err)
	}
	return fromData(c, settings, data), nil
}

// Create builds a new scenario on the engine. area_code and end_year are
// required; other attributes are optional.
func Create(ctx context.Context, c *client.Client, settings config.Settings, attrs map[string]any) (*Scenario, error) {
	data, warnings, err := service.CreateScenario(ctx, c, attrs)
	if err != nil {
		return nil, err
	}
	s := fromData(c, settings, data)
	s.AddAll("create", warnings)
	return s, nil
}

func fromData(c *client.Client, settings config.Settings, data service.ScenarioData) *Scenario {
	s := &Scenario{
		client:   c,
		settings: settings,
		cache:    curvecache.New(settings.TmpDir),
	}
	s.apply(data)
	return s
}

func (s *Scenario) apply(data service.ScenarioData) {
	s.ID = data.ID
	s.AreaCode = data.AreaCode
	s.EndYear = data.EndYear
	s.Title = data.Title
	s.URL = data.URL
	s.StartYear = data.StartYear
	s.Source = data.Source
	s.Template = data.Template
	s.Metadata = data.Metadata
	s.CreatedAt = data.CreatedAt
	s.UpdatedAt = data.UpdatedAt
	if data.KeepCompatible != nil {
		s.KeepCompatible = *data.KeepCompatible
	}
	if data.Private != nil {
		s.Private = *data.Private
	}
	if data.ActiveCouplings != nil || data.InactiveCouplings != nil {
		s.couplings = &Couplings{Active: data.ActiveCouplings, Inactive: data.InactiveCouplings}
	}
}

// Identifier returns the title when set, the id otherwise. Used to label
// columns in exports.
func (s *Scenario) Identifier() string {
	if s.Title != "" {
		return s.Title
	}
	return strconv.Itoa(s.ID)
}

// Version derives the engine release the scenario lives on from its URL.
// Hosts without a version prefix report "latest".
func (s *Scenario) Version() string {
	if s.URL == "" {
		return ""
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	version, _, found := strings.Cut(u.Host, ".engine.")
	if !found {
		return "latest"
	}
	return version
}

// Refresh refetches the scenario and drops all cached submodels.
func (s *Scenario) Refresh(ctx context.Context) error {
	data, err := service.FetchScenario(ctx, s.client, s.ID)
	if err != nil {
		return err
	}
	s.apply(data)
	s.inputs = nil
	s.sortables = nil
	s.customCurves = nil
	return nil
}

// Inputs returns the scenario's inputs, fetching them on first use.
func (s *Scenario) Inputs(ctx context.Context) (*Inputs, error) {
	if s.inputs != nil {
		return s.inputs, nil
	}
	data, err := service.FetchInputs(ctx, s.client, s.ID, "")
	if err != nil {
		return nil, fmt.Errorf("fetching inputs: %w", err)
	}
	s.inputs = newInputs(data)
	return s.inputs, nil
}

// InputsWithDefaults fetches inputs with an alternate defaults source,
// such as "original" for a template scenario's defaults. The result is not
// cached on the scenario.
func (s *Scenario) InputsWithDefaults(ctx context.Context, defaults string) (*Inputs, error) {
	data, err := service.FetchInputs(ctx, s.client, s.ID, defaults)
	if err != nil {
		return nil, fmt.Errorf("fetching inputs: %w", err)
	}
	return newInputs(data), nil
}

// UserValues returns the user-set slider values.
func (s *Scenario) UserValues(ctx context.Context) (map[string]any, error) {
	inputs, err := s.Inputs(ctx)
	if err != nil {
		return nil, err
	}
	return inputs.UserValues(), nil
}

// UpdateUserValues validates and applies a batch of user values. Share
// group imbalances become warnings on the inputs model; validation
// failures abort before anything is sent.
func (s *Scenario) UpdateUserValues(ctx context.Context, values map[string]any) error {
	inputs, err := s.Inputs(ctx)
	if err != nil {
		return err
	}
	before := inputs.Warnings.Len()
	if err := inputs.ValidateUpdate(values); err != nil {
		return err
	}
	data, err := service.UpdateInputs(ctx, s.client, s.ID, values)
	if err != nil {
		return err
	}
	inputs.applyUpdate(values)
	s.MergeSince("inputs", &inputs.Warnings, before)
	s.apply(data)
	return nil
}

// RemoveUserValues resets the given inputs to their defaults.
func (s *Scenario) RemoveUserValues(ctx context.Context, keys []string) error {
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		values[key] = ResetValue
	}
	return s.UpdateUserValues(ctx, values)
}

// Sortables returns the scenario's user orders, fetching on first use.
func (s *Scenario) Sortables(ctx context.Context) (*Sortables, error) {
	if s.sortables != nil {
		return s.sortables, nil
	}
	data, err := service.FetchSortables(ctx, s.client, s.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching sortables: %w", err)
	}
	s.sortables = newSortables(data)
	s.Merge("sortables", &s.sortables.Warnings)
	return s.sortables, nil
}

// UpdateSortables replaces orders, keyed by flattened name
// (heat_network_lt updates the lt subtype of heat_network).
func (s *Scenario) UpdateSortables(ctx context.Context, orders map[string][]string) error {
	existing, err := s.Sortables(ctx)
	if err != nil {
		return err
	}
	for name, order := range orders {
		if existing.Get(name) == nil {
			return fmt.Errorf("unknown sortable %q", name)
		}
		sortType, subtype := splitSortableName(name)
		if err := service.UpdateSortable(ctx, s.client, s.ID, sortType, subtype, order); err != nil {
			return fmt.Errorf("updating sortable %s: %w", name, err)
		}
		existing.Get(name).Order = order
	}
	return nil
}

// RemoveSortables clears the given orders.
func (s *Scenario) RemoveSortables(ctx context.Context, names []string) error {
	orders := make(map[string][]string, len(names))
	for _, name := range names {
		orders[name] = nil
	}
	return s.UpdateSortables(ctx, orders)
}

// Couplings returns the scenario's coupling groups, fetching on first use.
func (s *Scenario) Couplings(ctx context.Context) (Couplings, error) {
	if s.couplings != nil {
		return *s.couplings, nil
	}
	data, warnings, err := service.FetchCouplings(ctx, s.client, s.ID)
	if err != nil {
		return Couplings{}, err
	}
	s.AddAll("couplings", warnings)
	c := couplingsFromService(data)
	s.couplings = &c
	return c, nil
}

// Couple activates coupling groups. With force, groups unknown to the
// scenario are accepted as well.
func (s *Scenario) Couple(ctx context.Context, groups []string, force bool) error {
	return s.setCouplings(ctx, groups, true, force)
}

// Uncouple deactivates coupling groups.
func (s *Scenario) Uncouple(ctx context.Context, groups []string, force bool) error {
	return s.setCouplings(ctx, groups, false, force)
}

func (s *Scenario) setCouplings(ctx context.Context, groups []string, couple, force bool) error {
	data, warnings, err := service.UpdateCouplings(ctx, s.client, s.ID, groups, couple, force)
	if err != nil {
		return err
	}
	s.AddAll("couplings", warnings)
	c := couplingsFromService(data)
	s.couplings = &c
	s.inputs = nil // coupling changes enable or disable inputs
	return nil
}

// UpdateMetadata changes the scenario's updatable attributes (metadata,
// source, private, keep_compatible and friends).
func (s *Scenario) UpdateMetadata(ctx context.Context, attrs map[string]any) error {
	data, warnings, err := service.UpdateMetadata(ctx, s.client, s.ID, attrs)
	if err != nil {
		return err
	}
	s.AddAll("metadata", warnings)
	s.apply(data)
	return nil
}

// AddQueries registers gquery keys for the next ExecuteQueries call.
func (s *Scenario) AddQueries(keys ...string) {
	if s.queries == nil {
		s.queries = newGqueries()
	}
	s.queries.Add(keys...)
}

// ExecuteQueries runs all registered gqueries and stores the answers.
func (s *Scenario) ExecuteQueries(ctx context.Context) error {
	if s.queries == nil || s.queries.Len() == 0 {
		return fmt.Errorf("no queries registered")
	}
	results, err := service.QueryResults(ctx, s.client, s.ID, s.queries.Keys())
	if err != nil {
		return err
	}
	s.queries.setResults(results)
	return nil
}

// Queries returns the registered gqueries and their results so far.
func (s *Scenario) Queries() *Gqueries {
	if s.queries == nil {
		s.queries = newGqueries()
	}
	return s.queries
}

// CustomCurves lists the scenario's custom curves, fetching on first use.
func (s *Scenario) CustomCurves(ctx context.Context) (*CustomCurves, error) {
	if s.customCurves != nil {
		return s.customCurves, nil
	}
	data, err := service.FetchCustomCurves(ctx, s.client, s.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching custom curves: %w", err)
	}
	s.customCurves = newCustomCurves(data)
	s.Merge("custom_curves", &s.customCurves.Warnings)
	return s.customCurves, nil
}

// CustomCurveSeries returns the profile of one attached custom curve,
// serving from the disk cache when present.
func (s *Scenario) CustomCurveSeries(ctx context.Context, key string) (Series, error) {
	if data, err := s.cache.Read(s.ID, key); err == nil {
		if series, perr := parseSeries(data); perr == nil {
			return series, nil
		}
		// Unparsable cache entry: refetch below.
	}

	data, err := service.DownloadCustomCurve(ctx, s.client, s.ID, key)
	if err != nil {
		return nil, fmt.Errorf("downloading custom curve %s: %w", key, err)
	}
	series, err := parseSeries(data)
	if err != nil {
		return nil, fmt.Errorf("parsing custom curve %s: %w", key, err)
	}
	if _, err := s.cache.Write(s.ID, key, data); err != nil {
		s.Add("custom_curves", "could not cache curve %s: %v", key, err)
	}
	return series, nil
}

// UploadCustomCurve attaches a profile to a custom curve slot.
func (s *Scenario) UploadCustomCurve(ctx context.Context, key string, series Series) error {
	data := series.CSV()
	if err := service.UploadCustomCurve(ctx, s.client, s.ID, key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("uploading custom curve %s: %w", key, err)
	}
	if _, err := s.cache.Write(s.ID, key, data); err != nil {
		s.Add("custom_curves", "could not cache curve %s: %v", key, err)
	}
	if s.customCurves != nil {
		if c := s.customCurves.Get(key); c != nil {
			c.Attached = true
		}
	}
	return nil
}

// DeleteCustomCurve detaches a custom curve and drops its cache entry.
func (s *Scenario) DeleteCustomCurve(ctx context.Context, key string) error {
	if err := service.DeleteCustomCurve(ctx, s.client, s.ID, key); err != nil {
		return fmt.Errorf("deleting custom curve %s: %w", key, err)
	}
	if err := s.cache.Remove(s.ID, key); err != nil {
		s.Add("custom_curves", "could not drop cached curve %s: %v", key, err)
	}
	if s.customCurves != nil {
		if c := s.customCurves.Get(key); c != nil {
			c.Attached = false
		}
	}
	return nil
}

// OutputCurve returns one output curve as a table, serving from the disk
// cache when present.
func (s *Scenario) OutputCurve(ctx context.Context, key string) (*Table, error) {
	cacheKey := "output_" + key
	if data, err := s.cache.Read(s.ID, cacheKey); err == nil {
		if table, perr := parseTable(data); perr == nil {
			return table, nil
		}
	}

	data, err := service.DownloadOutputCurve(ctx, s.client, s.ID, key)
	if err != nil {
		return nil, fmt.Errorf("downloading output curve %s: %w", key, err)
	}
	table, err := parseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parsing output curve %s: %w", key, err)
	}
	if _, err := s.cache.Write(s.ID, cacheKey, data); err != nil {
		s.Add("output_curves", "could not cache curve %s: %v", key, err)
	}
	return table, nil
}

// OutputCurvesByCarrier returns the output curves belonging to one energy
// carrier. Curves that fail to download become warnings, not errors.
func (s *Scenario) OutputCurvesByCarrier(ctx context.Context, carrier string) (map[string]*Table, error) {
	keys := CurvesForCarrier(carrier)
	if keys == nil {
		return nil, fmt.Errorf("unknown carrier %q, expected one of %s", carrier, strings.Join(Carriers(), ", "))
	}

	out := make(map[string]*Table, len(keys))
	for _, key := range keys {
		table, err := s.OutputCurve(ctx, key)
		if err != nil {
			s.Add("output_curves", "skipping %s: %v", key, err)
			continue
		}
		out[key] = table
	}
	return out, nil
}

// AllOutputCurves downloads every output curve via the bulk endpoint and
// caches them per curve.
func (s *Scenario) AllOutputCurves(ctx context.Context) (map[string]*Table, error) {
	raw, warnings, err := service.BulkOutputCurves(ctx, s.client, s.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading output curves: %w", err)
	}
	s.AddAll("output_curves", warnings)

	out := make(map[string]*Table, len(raw))
	for key, data := range raw {
		table, err := parseTable(data)
		if err != nil {
			s.Add("output_curves", "skipping %s: %v", key, err)
			continue
		}
		out[key] = table
		if _, err := s.cache.Write(s.ID, "output_"+key, data); err != nil {
			s.Add("output_curves", "could not cache curve %s: %v", key, err)
		}
	}
	return out, nil
}
