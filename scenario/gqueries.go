package scenario

import (
	"github.com/quintel/etm/service"
)

// Gqueries tracks the graph queries requested for a scenario and, once
// executed, their answers. Keys keep insertion order and are deduplicated.
type Gqueries struct {
	keys    []string
	seen    map[string]bool
	results map[string]service.QueryResult
}

func newGqueries(keys ...string) *Gqueries {
	g := &Gqueries{seen: make(map[string]bool)}
	g.Add(keys...)
	return g
}

// Add appends query keys, skipping duplicates.
func (g *Gqueries) Add(keys ...string) {
	for _, key := range keys {
		if key == "" || g.seen[key] {
			continue
		}
		g.seen[key] = true
		g.keys = append(g.keys, key)
	}
}

// Keys returns the requested keys in insertion order.
func (g *Gqueries) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

func (g *Gqueries) Len() int {
	return len(g.keys)
}

// Ready reports whether every requested key has an answer.
func (g *Gqueries) Ready() bool {
	if len(g.keys) == 0 {
		return false
	}
	for _, key := range g.keys {
		if _, ok := g.results[key]; !ok {
			return false
		}
	}
	return true
}

// Result returns the answer for key. The second return is false when the
// key was never requested or not yet executed.
func (g *Gqueries) Result(key string) (service.QueryResult, bool) {
	r, ok := g.results[key]
	return r, ok
}

// Results returns all answers keyed by query, in no particular order.
func (g *Gqueries) Results() map[string]service.QueryResult {
	out := make(map[string]service.QueryResult, len(g.results))
	for k, v := range g.results {
		out[k] = v
	}
	return out
}

func (g *Gqueries) setResults(results map[string]service.QueryResult) {
	if g.results == nil {
		g.results = make(map[string]service.QueryResult, len(results))
	}
	for k, v := range results {
		g.results[k] = v
		if !g.seen[k] {
			g.seen[k] = true
			g.keys = append(g.keys, k)
		}
	}
}
