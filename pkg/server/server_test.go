package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/venturedigest/venturedigest/pkg/curate"
	"github.com/venturedigest/venturedigest/pkg/deliver"
	"github.com/venturedigest/venturedigest/pkg/source"
)

type fakeStore struct {
	latest    *curate.Digest
	latestErr error
	saved     []*curate.Digest
}

func (f *fakeStore) Seen(context.Context) (map[string]string, error)    { return nil, nil }
func (f *fakeStore) Record(context.Context, []string, string) error     { return nil }
func (f *fakeStore) Prune(context.Context, string) error                { return nil }
func (f *fakeStore) Close() error                                       { return nil }
func (f *fakeStore) LatestDigest(context.Context) (*curate.Digest, error) {
	return f.latest, f.latestErr
}
func (f *fakeStore) SaveDigest(_ context.Context, d *curate.Digest) error {
	f.saved = append(f.saved, d)
	return nil
}

type stubSource struct {
	items []source.Item
}

func (s *stubSource) Name() string          { return "stub" }
func (s *stubSource) Family() source.Family { return source.FamilyFeed }
func (s *stubSource) Collect(context.Context) ([]source.Item, error) {
	return s.items, nil
}

func newTestServer(t *testing.T, st *fakeStore, secret string) *Server {
	t.Helper()
	items := []source.Item{{
		ID:               source.DeriveID("https://example.com/post"),
		Title:            "How to build an llm startup mvp",
		URL:              "https://example.com/post",
		Source:           "Blog",
		SourceReputation: 0.9,
		PublishedAt:      time.Now().UTC().Add(-time.Hour),
		ContentType:      source.TypeArticle,
		Family:           source.FamilyFeed,
	}}
	th := curate.DefaultThresholds()
	th.MinScore = 0
	pipeline, err := curate.New(
		[]source.Source{&stubSource{items: items}},
		curate.NewClassifier(curate.Vocabulary{}),
		curate.NewScorer(curate.DefaultWeights(), nil, nil, th.MaxAge),
		th,
		st,
	)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return New(st, pipeline, deliver.NewManager(nil), 8080, secret)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{}, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetDigest(t *testing.T) {
	t.Parallel()

	st := &fakeStore{latest: &curate.Digest{
		GeneratedAt: time.Date(2026, time.February, 10, 6, 0, 0, 0, time.UTC),
		ItemCount:   1,
		Items:       []source.Item{{ID: "a", Title: "Stored item", URL: "https://example.com/a"}},
	}}
	srv := newTestServer(t, st, "")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/digest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var d curate.Digest
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.ItemCount != 1 || d.Items[0].Title != "Stored item" {
		t.Fatalf("unexpected digest: %+v", d)
	}
}

func TestGetDigestEmpty(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{}, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/digest", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no digest exists, got %d", rec.Code)
	}
}

func TestGetSources(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{}, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
		Data  []struct {
			Name   string `json:"name"`
			Family string `json:"family"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Data[0].Name != "stub" {
		t.Fatalf("unexpected sources: %+v", body)
	}
}

func TestRunTrigger(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	srv := newTestServer(t, st, "")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/run", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Items int  `json:"items"`
		Sent  bool `json:"sent"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Items != 1 {
		t.Fatalf("expected 1 item, got %d", body.Items)
	}
	if body.Sent {
		t.Fatal("sent without ?send=true")
	}
	if len(st.saved) != 1 {
		t.Fatalf("digest not archived: %d", len(st.saved))
	}
}

func TestRunTriggerAuth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{}, "cron-secret")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/run", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeStore{}, "")
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/digest"},
		{http.MethodGet, "/api/v1/run"},
		{http.MethodDelete, "/api/v1/sources"},
	} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	srv := newTestServer(t, st, "")
	d, err := srv.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}
	if d.ItemCount != 1 {
		t.Fatalf("expected 1 item, got %d", d.ItemCount)
	}
	if len(st.saved) != 1 {
		t.Fatal("digest not archived")
	}
}
