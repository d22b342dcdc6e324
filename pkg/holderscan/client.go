package holderscan

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"soylana/internal/server/config"
	"soylana/pkg/httpclient"

	"go.uber.org/zap"
)

const (
	ChainSol = "sol"
	ChainEth = "eth"

	maxPageSize = 100 // 上游单页上限
)

// APIError HolderScan 返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("holderscan API error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewClient(cfg config.HolderScanConfig, logger *zap.Logger) *Client {
	// 创建HTTP客户端配置
	httpCfg := httpclient.HTTPClientConfig{
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 3,
		AuthHeader: "x-api-key",
		AuthToken:  cfg.APIKey,
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpclient.NewHTTPClient(httpCfg, logger),
		logger:     logger,
	}
}

// get 统一包装非 2xx 为 *APIError，方便 handler 层透传状态码
func (c *Client) get(ctx context.Context, url string, params map[string]string, out interface{}) error {
	err := c.httpClient.Get(ctx, url, params, nil, out)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) {
			return &APIError{StatusCode: he.Code, Message: he.Message}
		}
		return err
	}
	return nil
}

func (c *Client) ListTokens(ctx context.Context, chain string, limit, offset int) (int, []Token, error) {
	if limit > maxPageSize {
		limit = maxPageSize
	}
	var resp TokenListResp
	url := fmt.Sprintf("%s/%s/tokens", c.baseURL, chain)
	err := c.get(ctx, url, map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}, &resp)
	if err != nil {
		return 0, nil, fmt.Errorf("list tokens failed: %w", err)
	}
	return resp.Total, resp.Tokens, nil
}

func (c *Client) GetToken(ctx context.Context, chain, tokenAddr string) (*Token, error) {
	var token Token
	url := fmt.Sprintf("%s/%s/tokens/%s", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, nil, &token); err != nil {
		return nil, fmt.Errorf("fetch token %s failed: %w", tokenAddr, err)
	}
	return &token, nil
}

func (c *Client) GetTokenStats(ctx context.Context, chain, tokenAddr string) (*TokenStats, error) {
	var stats TokenStats
	url := fmt.Sprintf("%s/%s/tokens/%s/stats", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, nil, &stats); err != nil {
		return nil, fmt.Errorf("fetch token stats %s failed: %w", tokenAddr, err)
	}
	return &stats, nil
}

func (c *Client) GetTokenPnL(ctx context.Context, chain, tokenAddr string) (*TokenPnL, error) {
	var pnl TokenPnL
	url := fmt.Sprintf("%s/%s/tokens/%s/stats/pnl", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, nil, &pnl); err != nil {
		return nil, fmt.Errorf("fetch token pnl %s failed: %w", tokenAddr, err)
	}
	return &pnl, nil
}

func (c *Client) GetWalletCategories(ctx context.Context, chain, tokenAddr string) (*WalletCategories, error) {
	var categories WalletCategories
	url := fmt.Sprintf("%s/%s/tokens/%s/stats/wallet-categories", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, nil, &categories); err != nil {
		return nil, fmt.Errorf("fetch wallet categories %s failed: %w", tokenAddr, err)
	}
	return &categories, nil
}

func (c *Client) GetSupplyBreakdown(ctx context.Context, chain, tokenAddr string) (*SupplyBreakdown, error) {
	var breakdown SupplyBreakdown
	url := fmt.Sprintf("%s/%s/tokens/%s/stats/supply-breakdown", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, nil, &breakdown); err != nil {
		return nil, fmt.Errorf("fetch supply breakdown %s failed: %w", tokenAddr, err)
	}
	return &breakdown, nil
}

func (c *Client) GetHolders(ctx context.Context, chain, tokenAddr string, params HolderListParams) (*HolderList, error) {
	if params.Limit <= 0 || params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}
	query := map[string]string{
		"limit":  strconv.Itoa(params.Limit),
		"offset": strconv.Itoa(params.Offset),
	}
	if params.MinAmount != nil {
		query["min_amount"] = strconv.FormatFloat(*params.MinAmount, 'f', -1, 64)
	}
	if params.MaxAmount != nil {
		query["max_amount"] = strconv.FormatFloat(*params.MaxAmount, 'f', -1, 64)
	}

	var holders HolderList
	url := fmt.Sprintf("%s/%s/tokens/%s/holders", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, query, &holders); err != nil {
		return nil, fmt.Errorf("fetch holders %s failed: %w", tokenAddr, err)
	}
	return &holders, nil
}

// holderDeltasResp 上游原始 key 格式（"1hour" / "3days" ...），指针区分缺失
type holderDeltasResp struct {
	Hour1   *int `json:"1hour"`
	Hours2  *int `json:"2hours"`
	Hours4  *int `json:"4hours"`
	Hours12 *int `json:"12hours"`
	Day1    *int `json:"1day"`
	Days3   *int `json:"3days"`
	Days7   *int `json:"7days"`
	Days14  *int `json:"14days"`
	Days30  *int `json:"30days"`
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// GetHolderDeltas 获取各时间窗口的持有人数量变化，缺失字段在这里统一归零
func (c *Client) GetHolderDeltas(ctx context.Context, chain, tokenAddr string) (*HolderDeltas, error) {
	var raw holderDeltasResp
	url := fmt.Sprintf("%s/%s/tokens/%s/holders/deltas", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch holder deltas %s failed: %w", tokenAddr, err)
	}

	return &HolderDeltas{
		Hour1:   intOrZero(raw.Hour1),
		Hours2:  intOrZero(raw.Hours2),
		Hours4:  intOrZero(raw.Hours4),
		Hours12: intOrZero(raw.Hours12),
		Day1:    intOrZero(raw.Day1),
		Days3:   intOrZero(raw.Days3),
		Days7:   intOrZero(raw.Days7),
		Days14:  intOrZero(raw.Days14),
		Days30:  intOrZero(raw.Days30),
	}, nil
}

func (c *Client) GetHolderBreakdowns(ctx context.Context, chain, tokenAddr string) (*HolderBreakdowns, error) {
	var breakdowns HolderBreakdowns
	url := fmt.Sprintf("%s/%s/tokens/%s/holders/breakdowns", c.baseURL, chain, tokenAddr)
	if err := c.get(ctx, url, nil, &breakdowns); err != nil {
		return nil, fmt.Errorf("fetch holder breakdowns %s failed: %w", tokenAddr, err)
	}
	return &breakdowns, nil
}

func (c *Client) GetWalletStats(ctx context.Context, chain, tokenAddr, walletAddr string) (*WalletStats, error) {
	var stats WalletStats
	url := fmt.Sprintf("%s/%s/tokens/%s/stats/%s", c.baseURL, chain, tokenAddr, walletAddr)
	if err := c.get(ctx, url, nil, &stats); err != nil {
		return nil, fmt.Errorf("fetch wallet stats %s/%s failed: %w", tokenAddr, walletAddr, err)
	}
	if stats.HolderCategory == "" {
		stats.HolderCategory = "unknown"
	}
	return &stats, nil
}
