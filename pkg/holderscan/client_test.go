package holderscan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"soylana/internal/server/config"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.HolderScanConfig{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		RateLimit: 60000,
		Timeout:   5,
	}, zap.NewNop())
}

func TestGetHolderDeltasNormalizesMissingKeys(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sol/tokens/mint/holders/deltas", func(w http.ResponseWriter, req *http.Request) {
		// 上游只返回部分窗口，其余必须归零而不是报错
		json.NewEncoder(w).Encode(map[string]any{
			"1hour": 12,
			"7days": -3,
		})
	})

	c := newTestClient(t, mux)
	deltas, err := c.GetHolderDeltas(context.Background(), ChainSol, "mint")
	if err != nil {
		t.Fatalf("GetHolderDeltas failed: %v", err)
	}

	if deltas.Hour1 != 12 {
		t.Errorf("hour_1 = %d, want 12", deltas.Hour1)
	}
	if deltas.Days7 != -3 {
		t.Errorf("days_7 = %d, want -3", deltas.Days7)
	}
	if deltas.Day1 != 0 || deltas.Days30 != 0 {
		t.Errorf("missing windows not zeroed: %+v", deltas)
	}
}

func TestGetHoldersClampsPageSize(t *testing.T) {
	var gotLimit string
	mux := http.NewServeMux()
	mux.HandleFunc("/sol/tokens/mint/holders", func(w http.ResponseWriter, req *http.Request) {
		gotLimit = req.URL.Query().Get("limit")
		json.NewEncoder(w).Encode(HolderList{})
	})

	c := newTestClient(t, mux)
	_, err := c.GetHolders(context.Background(), ChainSol, "mint", HolderListParams{Limit: 500})
	if err != nil {
		t.Fatalf("GetHolders failed: %v", err)
	}
	if gotLimit != "100" {
		t.Errorf("limit = %s, want clamped to 100", gotLimit)
	}
}

func TestGetWalletStatsDefaultsCategory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sol/tokens/mint/stats/wallet", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"amount":            100,
			"holding_breakdown": nil,
		})
	})

	c := newTestClient(t, mux)
	stats, err := c.GetWalletStats(context.Background(), ChainSol, "mint", "wallet")
	if err != nil {
		t.Fatalf("GetWalletStats failed: %v", err)
	}
	if stats.HolderCategory != "unknown" {
		t.Errorf("holder_category = %q, want unknown", stats.HolderCategory)
	}
}

func TestAPIErrorCarriesStatusCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	c := newTestClient(t, mux)
	_, err := c.GetToken(context.Background(), ChainSol, "mint")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", apiErr.StatusCode)
	}
}
