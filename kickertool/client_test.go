package kickertool

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientMissingAPIKeyShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", testLogger())
	_, err := client.FetchTournament(context.Background(), "t1", true, false, false)
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no network calls, got %d", got)
	}
}

func TestClientStatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{}`, ErrNotFound},
		{"forbidden", http.StatusForbidden, `{}`, ErrUnauthorized},
		{"precondition failed", http.StatusPreconditionFailed, `{}`, ErrMatchNotRunning},
		{"malformed body", http.StatusOK, `{not json`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "key", testLogger())
			_, err := client.FetchTournament(context.Background(), "t1", true, false, false)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClientServerErrorBecomesRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", testLogger())
	_, err := client.FetchCourts(context.Background(), "t1", false)

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", remoteErr.StatusCode)
	}
}

func TestClientAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", testLogger())
	if _, err := client.FetchEntries(context.Background(), "t1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestFetchEntriesPathSelection(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", testLogger())

	if _, err := client.FetchEntries(context.Background(), "t1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/t1/entries" {
		t.Fatalf("expected tournament-wide entries path, got %q", gotPath)
	}

	if _, err := client.FetchEntries(context.Background(), "t1", "d9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/t1/discipline/d9/entries" {
		t.Fatalf("expected discipline-scoped entries path, got %q", gotPath)
	}
}

func TestSubmitMatchResultEndpoints(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id":"m1","state":"played"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", testLogger())
	result := MatchResult{{{5, 2}}}

	match, err := client.SubmitMatchResult(context.Background(), "t1", "m1", result, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/t1/matches/m1/result" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if _, ok := gotBody["result"]; !ok {
		t.Fatalf("expected result key in payload, got %v", gotBody)
	}
	if match.State != "played" {
		t.Fatalf("expected echoed state played, got %q", match.State)
	}

	if _, err := client.SubmitMatchResult(context.Background(), "t1", "m1", result, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/t1/matches/m1/live-result" {
		t.Fatalf("expected live-result path, got %q", gotPath)
	}
}

func TestFetchTournamentKeepsRawDocument(t *testing.T) {
	doc := `{"id":"t1","name":"Open","state":"running","customField":{"x":1},"disciplines":[]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", testLogger())
	snapshot, err := client.FetchTournament(context.Background(), "t1", true, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Name != "Open" {
		t.Fatalf("expected decoded name, got %q", snapshot.Name)
	}
	if _, ok := snapshot.Raw["customField"]; !ok {
		t.Fatalf("expected raw document to keep unknown fields, got %v", snapshot.Raw)
	}
}
