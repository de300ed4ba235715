package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
)

func TestClient_ListPlants(t *testing.T) {
	var gotPath, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[{"id":1,"name":"boiler","collect":1,"status":1,"picks_count":2}]`))
	}))
	defer srv.Close()

	plants, err := NewClient(srv.URL+"/").ListPlants(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/plants/" {
		t.Errorf("path = %q, want /plants/", gotPath)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header is missing")
	}
	if len(plants) != 1 || plants[0].Name != "boiler" || plants[0].PicksCount != 2 {
		t.Errorf("unexpected plants: %+v", plants)
	}
}

func TestClient_PlantDataKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plants/4/data/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"zeta":1,"alpha":{"b":2,"a":3}}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).PlantData(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec) != 2 || rec[0].Key != "zeta" || rec[1].Key != "alpha" {
		t.Errorf("order not preserved: %+v", rec)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
		code     string
		message  string
	}{
		{"not found", http.StatusNotFound, `{"detail":"Not found."}`, true, "", "Not found."},
		{"detail", http.StatusBadRequest, `{"detail":"name is required"}`, false, "", "name is required"},
		{"envelope", http.StatusConflict, `{"error":{"code":"CONFLICT","message":"already running"}}`, false, "CONFLICT", "already running"},
		{"plain text", http.StatusInternalServerError, `oops`, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).GetWorker(context.Background(), 1)
			if err == nil {
				t.Fatal("expected error")
			}

			if errors.Is(err, ErrNotFound) != tt.notFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v", !tt.notFound, tt.notFound)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Code != tt.code || apiErr.Message != tt.message {
				t.Errorf("unexpected APIError: %+v", apiErr)
			}
		})
	}
}

func TestClient_ListPackagesFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	if _, err := c.ListPackages(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "plant_id=3" {
		t.Errorf("query = %q, want plant_id=3", gotQuery)
	}

	if _, err := c.ListPackages(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "" {
		t.Errorf("query = %q, want empty", gotQuery)
	}
}

func TestClient_CreatePlantSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var in domain.PlantInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Error(err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Plant{ID: 9, Name: in.Name, URL: in.URL, Collect: in.Collect})
	}))
	defer srv.Close()

	plant, err := NewClient(srv.URL).CreatePlant(context.Background(), domain.PlantInput{Name: "well", URL: "http://well", Collect: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plant.ID != 9 || plant.Name != "well" || plant.Collect != 1 {
		t.Errorf("unexpected plant: %+v", plant)
	}
}

func TestClient_RunActionArgs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/actions/2/run/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"args":{"mode":"fast"}}` {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{"response":{"ok":true}}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).RunAction(context.Background(), 2, map[string]string{"mode": "fast"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rec.Get("response"); !ok {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestClient_DeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/workers/5/picks/8/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).RemovePick(context.Background(), 5, 8); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_Metrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	m := telemetry.NewMetrics()
	c := NewClient(srv.URL, WithMetrics(m))

	for range 2 {
		if _, err := c.ListActions(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("200", "get")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}
