package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"RiskDesk/internal/domain/models"
)

func TestHTTPModelPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Features["idade"] != 42 {
			t.Errorf("features not forwarded: %v", req.Features)
		}
		json.NewEncoder(w).Encode(predictResponse{PD: 0.123})
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, 2*time.Second)
	pd, err := m.Predict(context.Background(), models.FeatureVector{"idade": 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pd != 0.123 {
		t.Fatalf("expected 0.123, got %v", pd)
	}
}

func TestHTTPModelRejectsOutOfRangePD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{PD: 1.5})
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, 2*time.Second)
	if _, err := m.Predict(context.Background(), models.FeatureVector{}); err == nil {
		t.Fatalf("expected error for pd out of range")
	}
}

func TestHTTPModelUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, 2*time.Second)
	if _, err := m.Predict(context.Background(), models.FeatureVector{}); err == nil {
		t.Fatalf("expected error for upstream failure")
	}
}
