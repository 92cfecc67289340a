package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir changes the working directory for the duration of the test,
// standing in for t.Chdir which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestExpandHomePath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got := ExpandHomePath("~/curves")
	want := filepath.Join(home, "curves")
	if got != want {
		t.Fatalf("ExpandHomePath(~/curves) = %q, want %q", got, want)
	}
}

func TestExpandHomePath_PlainPathCleaned(t *testing.T) {
	got := ExpandHomePath("a//b/../c")
	want := filepath.Clean("a//b/../c")
	if got != want {
		t.Fatalf("ExpandHomePath() = %q, want %q", got, want)
	}
}

func TestResolveForRead_PrefersInputsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "inputs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "inputs", "book.xlsx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	got := ResolveForRead("book.xlsx")
	want := filepath.Join("inputs", "book.xlsx")
	if got != want {
		t.Fatalf("ResolveForRead() = %q, want %q", got, want)
	}
}

func TestResolveForWrite_RelativeGoesToOutputs(t *testing.T) {
	chdir(t, t.TempDir())

	got, err := ResolveForWrite("report.xlsx")
	if err != nil {
		t.Fatalf("ResolveForWrite() error: %v", err)
	}
	want := filepath.Join("outputs", "report.xlsx")
	if got != want {
		t.Fatalf("ResolveForWrite() = %q, want %q", got, want)
	}
	if _, err := os.Stat("outputs"); err != nil {
		t.Fatalf("outputs dir not created: %v", err)
	}
}

func TestSafeName(t *testing.T) {
	got := SafeName("interconnector_1_price: MW")
	want := "interconnector_1_price__mw"
	if got != want {
		t.Fatalf("SafeName() = %q, want %q", got, want)
	}
}
