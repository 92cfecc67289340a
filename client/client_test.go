package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/quintel/etm/config"
)

func TestGet_SendsAuthAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer etm_a.b.c" {
			t.Errorf("Authorization = %q, want Bearer etm_a.b.c", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 123, "area_code": "nl"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "etm_a.b.c")

	var out struct {
		ID       int    `json:"id"`
		AreaCode string `json:"area_code"`
	}
	if err := c.Get(context.Background(), "/scenarios/123", nil, &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if out.ID != 123 || out.AreaCode != "nl" {
		t.Fatalf("Get() decoded %+v, want id=123 area_code=nl", out)
	}
}

func TestGet_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("defaults"); got != "original" {
			t.Errorf("defaults param = %q, want original", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "etm_a.b.c")
	params := url.Values{"defaults": {"original"}}
	if err := c.Get(context.Background(), "/scenarios/1/inputs", params, &map[string]any{}); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{}`, ErrUnauthorized},
		{http.StatusNotFound, `{}`, ErrNotFound},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		c := New(srv.URL, "etm_a.b.c")
		err := c.Get(context.Background(), "/scenarios/1", nil, nil)
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: error = %v, want errors.Is(%v)", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestUnprocessableEntity_ParsesEngineErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors": ["Input households_number_of_inhabitants cannot be greater than 1.79e7"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "etm_a.b.c")
	err := c.Put(context.Background(), "/scenarios/1", map[string]any{}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("Status = %d, want 422", apiErr.Status)
	}
	if len(apiErr.Messages) != 1 || apiErr.Messages[0] == "" {
		t.Fatalf("Messages = %v, want one engine message", apiErr.Messages)
	}
}

func TestRetries_ServerErrorThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "etm_a.b.c", WithRetries(2))
	var out map[string]any
	if err := c.Get(context.Background(), "/scenarios/1", nil, &out); err != nil {
		t.Fatalf("Get() error after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("server calls = %d, want 2", calls.Load())
	}
}

func TestRetries_NotAppliedToPost(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "etm_a.b.c", WithRetries(3))
	err := c.Post(context.Background(), "/scenarios", map[string]any{}, nil)
	if err == nil {
		t.Fatal("Post() error = nil, want APIError")
	}
	if calls.Load() != 1 {
		t.Fatalf("server calls = %d, want 1 (POST must not retry)", calls.Load())
	}
}

func TestGetCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/csv" {
			t.Errorf("Accept = %q, want text/csv", got)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("0.0\n1.5\n2.0\n"))
	}))
	defer srv.Close()

	c := New(srv.URL, "etm_a.b.c")
	body, err := c.GetCSV(context.Background(), "/scenarios/1/curves/merit_order.csv", nil)
	if err != nil {
		t.Fatalf("GetCSV() error: %v", err)
	}
	if string(body) != "0.0\n1.5\n2.0\n" {
		t.Fatalf("GetCSV() = %q, want raw csv body", body)
	}
}

func TestNewFromSettings_RejectsBadToken(t *testing.T) {
	_, err := NewFromSettings(config.Settings{APIToken: "not-a-token", BaseURL: config.ProURL})
	if err == nil {
		t.Fatal("NewFromSettings() = nil error, want token validation error")
	}
}
