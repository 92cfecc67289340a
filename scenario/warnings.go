package scenario

import (
	"fmt"
	"strings"
)

// Warning is a non-breaking issue collected while parsing or updating a
// model, tagged with the field it concerns.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	if w.Field == "" {
		return w.Message
	}
	return w.Field + ": " + w.Message
}

// Warnings accumulates warnings instead of failing. Models embed it so that
// partial API responses degrade gracefully.
type Warnings struct {
	list []Warning
}

func (ws *Warnings) Add(field, format string, args ...any) {
	ws.list = append(ws.list, Warning{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (ws *Warnings) AddAll(field string, messages []string) {
	for _, msg := range messages {
		ws.list = append(ws.list, Warning{Field: field, Message: msg})
	}
}

// Merge pulls warnings from a submodel, prefixing them with its name.
func (ws *Warnings) Merge(prefix string, other *Warnings) {
	ws.MergeSince(prefix, other, 0)
}

// MergeSince pulls the warnings a submodel collected from offset onward.
// Callers that merge after every operation record the submodel's Len()
// beforehand so earlier warnings are not copied twice.
func (ws *Warnings) MergeSince(prefix string, other *Warnings, offset int) {
	if other == nil || offset >= len(other.list) {
		return
	}
	for _, w := range other.list[offset:] {
		field := w.Field
		if prefix != "" {
			field = strings.TrimSuffix(prefix+"."+w.Field, ".")
		}
		ws.list = append(ws.list, Warning{Field: field, Message: w.Message})
	}
}

// Warnings returns a copy of the collected warnings.
func (ws *Warnings) Warnings() []Warning {
	out := make([]Warning, len(ws.list))
	copy(out, ws.list)
	return out
}

func (ws *Warnings) HasWarnings() bool {
	return len(ws.list) > 0
}

func (ws *Warnings) Len() int {
	return len(ws.list)
}
