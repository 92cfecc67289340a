package clifmt

import (
	"reflect"
	"strings"
	"testing"
)

func TestPrintNameDetailTable(t *testing.T) {
	var sb strings.Builder
	PrintNameDetailTable(&sb, NameDetailTableOptions{
		Title: "Inputs",
		Rows: []NameDetailRow{
			{Name: "co2_price", Detail: "unit: euro"},
			{Name: "solar_share", Detail: ""},
		},
	})

	out := sb.String()
	if !strings.Contains(out, "Inputs (2)") {
		t.Errorf("output missing title, got:\n%s", out)
	}
	if !strings.Contains(out, "co2_price") || !strings.Contains(out, "unit: euro") {
		t.Errorf("output missing row, got:\n%s", out)
	}
	if !strings.Contains(out, "-") {
		t.Errorf("empty detail not replaced, got:\n%s", out)
	}
}

func TestPrintNameDetailTable_Empty(t *testing.T) {
	var sb strings.Builder
	PrintNameDetailTable(&sb, NameDetailTableOptions{Title: "Curves", EmptyText: "No curves attached."})
	if !strings.Contains(sb.String(), "No curves attached.") {
		t.Errorf("empty text missing, got:\n%s", sb.String())
	}
}

func TestWrapTextRunes(t *testing.T) {
	got := wrapTextRunes("aaa bbb ccc", 7)
	want := []string{"aaa bbb", "ccc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrapTextRunes() = %v, want %v", got, want)
	}

	got = wrapTextRunes("aaaaaaaaaa", 4)
	want = []string{"aaaa", "aaaa", "aa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrapTextRunes() long word = %v, want %v", got, want)
	}
}

func TestPadRightRunes(t *testing.T) {
	if got := padRightRunes("ab", 4); got != "ab  " {
		t.Errorf("padRightRunes() = %q, want %q", got, "ab  ")
	}
	if got := padRightRunes("abcd", 2); got != "abcd" {
		t.Errorf("padRightRunes() = %q, want %q", got, "abcd")
	}
}
