package fpl

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/squad-auction/internal/platform/logging"
)

func TestFetchBootstrap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bootstrap-static/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"teams": [{"id": 1, "name": "Arsenal", "short_name": "ARS"}],
			"elements": [{
				"id": 7,
				"team": 1,
				"first_name": "Bukayo",
				"second_name": "Saka",
				"web_name": "Saka",
				"element_type": 3,
				"now_cost": 102
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: logging.NewNop()})

	bundle, err := client.FetchBootstrap(t.Context())
	if err != nil {
		t.Fatalf("fetch bootstrap: %v", err)
	}
	if len(bundle.Teams) != 1 || bundle.Teams[0].ShortName != "ARS" {
		t.Fatalf("unexpected teams: %+v", bundle.Teams)
	}
	if len(bundle.Players) != 1 {
		t.Fatalf("unexpected players: %+v", bundle.Players)
	}
	p := bundle.Players[0]
	if p.ExternalID != 7 || p.TeamExternalID != 1 || p.ElementType != 3 || p.NowCostTenths != 102 {
		t.Fatalf("unexpected player mapping: %+v", p)
	}
}

func TestFetchGameweekPoints(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/event/5/live/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"id": 7, "stats": {"total_points": 12}},
				{"id": 9, "stats": {"total_points": 2}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: logging.NewNop()})

	scores, err := client.FetchGameweekPoints(t.Context(), 5)
	if err != nil {
		t.Fatalf("fetch gameweek points: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
	if scores[0].PlayerExternalID != 7 || scores[0].Points != 12 {
		t.Fatalf("unexpected first score: %+v", scores[0])
	}
}

func TestNonRetryableStatusFailsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, MaxRetries: 3, Logger: logging.NewNop()})

	if _, err := client.FetchGameweekPoints(t.Context(), 99); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt for non-retryable status, got %d", calls)
	}
}

func TestRetryableStatusRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, MaxRetries: 1, Logger: logging.NewNop()})

	scores, err := client.FetchGameweekPoints(t.Context(), 1)
	if err != nil {
		t.Fatalf("fetch gameweek points after retry: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
	if calls != 2 {
		t.Fatalf("expected two attempts, got %d", calls)
	}
}
