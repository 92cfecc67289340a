package config

import (
	"testing"
	"time"
)

func TestInferBaseURL(t *testing.T) {
	cases := []struct {
		env  string
		want string
	}{
		{"", ProURL},
		{"pro", ProURL},
		{"Prod", ProURL},
		{"beta", BetaURL},
		{"staging", BetaURL},
		{"local", LocalURL},
		{"dev", LocalURL},
		{"2025-01", "https://2025-01.engine.energytransitionmodel.com/api/v3"},
		{"nonsense", ProURL},
		{"20251-0", ProURL},
	}
	for _, tc := range cases {
		if got := InferBaseURL(tc.env, ""); got != tc.want {
			t.Fatalf("InferBaseURL(%q) = %q, want %q", tc.env, got, tc.want)
		}
	}
}

func TestInferBaseURL_LocalOverride(t *testing.T) {
	got := InferBaseURL("local", "http://engine.test:3000/api/v3/")
	want := "http://engine.test:3000/api/v3"
	if got != want {
		t.Fatalf("InferBaseURL(local) = %q, want %q", got, want)
	}
}

func TestValidateToken(t *testing.T) {
	valid := []string{
		"etm_abc.def.ghi",
		"etm_beta_1ab.2cd.3ef",
	}
	for _, token := range valid {
		if err := ValidateToken(token); err != nil {
			t.Fatalf("ValidateToken(%q) = %v, want nil", token, err)
		}
	}

	invalid := []string{
		"abc.def.ghi",          // missing prefix
		"etm__abc.def.ghi",     // body starts with underscore
		"etm_abc.def",          // two segments
		"etm_abc.def.ghi.jkl",  // four segments
		"etm_abc.d ef.ghi",     // space in segment
		"etm_",                 // empty body
		"etm_beta_",            // empty beta body
	}
	for _, token := range invalid {
		if err := ValidateToken(token); err == nil {
			t.Fatalf("ValidateToken(%q) = nil, want error", token)
		}
	}
}

func TestFromReader_Defaults(t *testing.T) {
	s := FromReader(stubReader{values: map[string]string{}})
	if s.BaseURL != ProURL {
		t.Fatalf("BaseURL = %q, want %q", s.BaseURL, ProURL)
	}
	if s.CSVSeparator != "," || s.DecimalSeparator != "." {
		t.Fatalf("separators = %q/%q, want ,/.", s.CSVSeparator, s.DecimalSeparator)
	}
}

func TestFromReader_ExplicitBaseURLWins(t *testing.T) {
	s := FromReader(stubReader{values: map[string]string{
		"base_url":    "https://example.test/api/v3/",
		"environment": "beta",
	}})
	if s.BaseURL != "https://example.test/api/v3" {
		t.Fatalf("BaseURL = %q, want explicit URL without trailing slash", s.BaseURL)
	}
}

type stubReader struct {
	values map[string]string
}

func (s stubReader) GetString(key string) string        { return s.values[key] }
func (s stubReader) GetInt(string) int                  { return 0 }
func (s stubReader) GetFloat64(string) float64          { return 0 }
func (s stubReader) GetDuration(string) time.Duration   { return 0 }
