package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"soylana/internal/server/config"
	"soylana/internal/server/crosscheck"
	"soylana/pkg/holderscan"
	"soylana/pkg/solscan"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 测试用真实 mint 地址，base58 校验要求合法公钥
const (
	mintSOL  = "So11111111111111111111111111111111111111112"
	mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func testRouter(t *testing.T, upstream http.Handler) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		HolderScan: config.HolderScanConfig{BaseURL: srv.URL, APIKey: "test", RateLimit: 60000, Timeout: 5},
		Solscan:    config.SolscanConfig{BaseURL: srv.URL, APIKey: "test", RateLimit: 60000, Timeout: 5},
		CrossCheck: config.CrossCheckConfig{
			MaxPagesPerToken:   10,
			MaxHoldersPerToken: 1000,
			PageSize:           100,
			DisplayCap:         100,
			Timeout:            5,
			FetchConcurrency:   5,
		},
	}

	tl := zap.NewNop()
	hs := holderscan.NewClient(cfg.HolderScan, tl)
	ss := solscan.NewClient(cfg.Solscan, tl)
	holderFetcher := crosscheck.NewHolderFetcher(hs, ss, holderscan.ChainSol, tl)
	traderFetcher := crosscheck.NewTraderFetcher(ss, tl)
	orchestrator := crosscheck.NewOrchestrator(cfg.CrossCheck, holderFetcher, traderFetcher, tl)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(cfg, hs, ss, nil, orchestrator, tl).Register(r)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := testRouter(t, http.NotFoundHandler())
	w := doJSON(r, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestGetTokenPassThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sol/tokens/"+mintSOL, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "test", req.Header.Get("x-api-key"))
		json.NewEncoder(w).Encode(holderscan.Token{
			Address: mintSOL, Name: "Wrapped SOL", Ticker: "SOL", Network: "sol", Decimals: 9, Supply: "0",
		})
	})

	r := testRouter(t, mux)
	w := doJSON(r, http.MethodGet, "/api/tokens/"+mintSOL, "")

	require.Equal(t, http.StatusOK, w.Code)
	var token holderscan.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, "Wrapped SOL", token.Name)
	assert.Equal(t, 9, token.Decimals)
}

func TestGetTokenMalformedAddress(t *testing.T) {
	r := testRouter(t, http.NotFoundHandler())
	w := doJSON(r, http.MethodGet, "/api/tokens/not-a-mint", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malformed token address")
}

func TestGetTokenUpstreamStatusPropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"detail":"token not found"}`, http.StatusNotFound)
	})

	r := testRouter(t, mux)
	w := doJSON(r, http.MethodGet, "/api/tokens/"+mintSOL, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTokenPrice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token/price", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, mintSOL, req.URL.Query().Get("address"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"token_address": mintSOL, "price_usdt": "142.5"},
		})
	})

	r := testRouter(t, mux)
	w := doJSON(r, http.MethodGet, "/api/tokens/"+mintSOL+"/price", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var price solscan.TokenPrice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &price))
	assert.Equal(t, "142.5", price.PriceUSDT.String())
}

func TestGetAccountDetail(t *testing.T) {
	wallet := mintUSDC // 任何合法 base58 公钥都行
	mux := http.NewServeMux()
	mux.HandleFunc("/account/detail", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, wallet, req.URL.Query().Get("address"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    solscan.AccountDetail{Address: wallet, Lamports: 12345, AccountType: "account"},
		})
	})

	r := testRouter(t, mux)
	w := doJSON(r, http.MethodGet, "/api/wallets/"+wallet, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var detail solscan.AccountDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, int64(12345), detail.Lamports)
}

func TestGetAccountDetailMalformedAddress(t *testing.T) {
	r := testRouter(t, http.NotFoundHandler())
	w := doJSON(r, http.MethodGet, "/api/wallets/not-base58", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malformed wallet address")
}

func TestCrossCheckerRejectsTooFewTokens(t *testing.T) {
	r := testRouter(t, http.NotFoundHandler())
	body := fmt.Sprintf(`{"tokens":[{"address":"%s"}]}`, mintSOL)
	w := doJSON(r, http.MethodPost, "/api/cross-checker", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "token count")
}

func TestCrossCheckerRejectsMalformedAddress(t *testing.T) {
	r := testRouter(t, http.NotFoundHandler())
	body := fmt.Sprintf(`{"tokens":[{"address":"%s"},{"address":"zzz"}]}`, mintSOL)
	w := doJSON(r, http.MethodPost, "/api/cross-checker", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malformed token address")
}

// 两个 token 的 holder 口径端到端：共同钱包按平均排名升序返回
func TestCrossCheckerHoldersEndToEnd(t *testing.T) {
	holdersByMint := map[string][]holderscan.Holder{
		mintSOL: {
			{Address: "Wallet1111", Rank: 1},
			{Address: "Wallet2222", Rank: 2},
			{Address: "Wallet3333", Rank: 3},
		},
		mintUSDC: {
			{Address: "Wallet2222", Rank: 5},
			{Address: "Wallet3333", Rank: 1},
			{Address: "Wallet4444", Rank: 2},
		},
	}

	mux := http.NewServeMux()
	for mint := range holdersByMint {
		mux.HandleFunc("/sol/tokens/"+mint, func(w http.ResponseWriter, req *http.Request) {
			json.NewEncoder(w).Encode(holderscan.Token{Address: req.URL.Path, Name: "T", Decimals: 9})
		})
	}
	mux.HandleFunc("/sol/tokens/"+mintSOL+"/holders", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(holderscan.HolderList{Holders: holdersByMint[mintSOL]})
	})
	mux.HandleFunc("/sol/tokens/"+mintUSDC+"/holders", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(holderscan.HolderList{Holders: holdersByMint[mintUSDC]})
	})

	r := testRouter(t, mux)
	body := fmt.Sprintf(`{"tokens":[{"address":"%s"},{"address":"%s"}]}`, mintSOL, mintUSDC)
	w := doJSON(r, http.MethodPost, "/api/cross-checker", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result crosscheck.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, 2, result.TotalCommon)
	require.Len(t, result.CommonWallets, 2)
	// Wallet3333 平均排名 2，Wallet2222 平均排名 3.5
	assert.Equal(t, "Wallet3333", result.CommonWallets[0].Wallet)
	assert.Equal(t, "Wallet2222", result.CommonWallets[1].Wallet)

	require.Len(t, result.Tokens, 2)
	assert.Equal(t, mintSOL, result.Tokens[0].Address)
	assert.Equal(t, mintUSDC, result.Tokens[1].Address)
	assert.Equal(t, 3, result.Tokens[0].RecordsFetched)
}

// trader 口径端到端：时间窗内交易过的共同钱包
func TestCrossCheckerTradersEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token/meta", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    solscan.TokenMeta{Address: req.URL.Query().Get("address"), Name: "T", Decimals: 6},
		})
	})
	mux.HandleFunc("/token/transfer", func(w http.ResponseWriter, req *http.Request) {
		var transfers []solscan.TokenTransfer
		switch req.URL.Query().Get("address") {
		case mintSOL:
			transfers = []solscan.TokenTransfer{
				{FromAddress: "WalletA", ToAddress: "WalletB", BlockTime: 1500},
			}
		case mintUSDC:
			transfers = []solscan.TokenTransfer{
				{FromAddress: "WalletB", ToAddress: "WalletC", BlockTime: 1600},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": transfers})
	})

	r := testRouter(t, mux)
	body := fmt.Sprintf(`{"tokens":[{"address":"%s"},{"address":"%s"}],"mode":"traders"}`, mintSOL, mintUSDC)
	w := doJSON(r, http.MethodPost, "/api/cross-checker", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result crosscheck.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, 1, result.TotalCommon)
	require.Len(t, result.CommonWallets, 1)
	assert.Equal(t, "WalletB", result.CommonWallets[0].Wallet)
}

// 单 token 硬失败必须以错误收场，而不是 total_common=0 的伪成功
func TestCrossCheckerUpstreamFailureIsNotEmptyResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sol/tokens/"+mintSOL, func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(holderscan.Token{Address: mintSOL, Name: "T"})
	})
	mux.HandleFunc("/sol/tokens/"+mintSOL+"/holders", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(holderscan.HolderList{Holders: []holderscan.Holder{{Address: "W1", Rank: 1}}})
	})
	// mintUSDC 的所有请求都 404

	r := testRouter(t, mux)
	body := fmt.Sprintf(`{"tokens":[{"address":"%s"},{"address":"%s"}]}`, mintSOL, mintUSDC)
	w := doJSON(r, http.MethodPost, "/api/cross-checker", body)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), mintUSDC)
}
