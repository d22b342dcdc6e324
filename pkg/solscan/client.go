package solscan

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

const maxPageSize = 100 // 上游单页上限

// APIError Solscan 返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("solscan API error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewClient(cfg config.SolscanConfig, logger *zap.Logger) *Client {
	httpCfg := httpclient.HTTPClientConfig{
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 3,
		AuthHeader: "token",
		AuthToken:  cfg.APIKey,
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpclient.NewHTTPClient(httpCfg, logger),
		logger:     logger,
	}
}

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

// dataEnvelope Solscan Pro v2 的统一响应外层
type dataEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func (c *Client) GetTokenMeta(ctx context.Context, tokenAddr string) (*TokenMeta, error) {
	var resp dataEnvelope[TokenMeta]
	url := fmt.Sprintf("%s/token/meta", c.baseURL)
	err := c.get(ctx, url, map[string]string{"address": tokenAddr}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch token meta %s failed: %w", tokenAddr, err)
	}
	return &resp.Data, nil
}

// GetTokenTransfers 获取代币转账记录，page 从 1 开始，按 block_time 倒序
func (c *Client) GetTokenTransfers(ctx context.Context, tokenAddr string, page, pageSize int) (*TransferPage, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	var resp dataEnvelope[[]TokenTransfer]
	url := fmt.Sprintf("%s/token/transfer", c.baseURL)
	err := c.get(ctx, url, map[string]string{
		"address":   tokenAddr,
		"page":      strconv.Itoa(page),
		"page_size": strconv.Itoa(pageSize),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch token transfers %s failed: %w", tokenAddr, err)
	}
	return &TransferPage{Items: resp.Data}, nil
}

func (c *Client) GetAccountDetail(ctx context.Context, addr string) (*AccountDetail, error) {
	var resp dataEnvelope[AccountDetail]
	url := fmt.Sprintf("%s/account/detail", c.baseURL)
	err := c.get(ctx, url, map[string]string{"address": addr}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch account detail %s failed: %w", addr, err)
	}
	return &resp.Data, nil
}

func (c *Client) GetTokenPrice(ctx context.Context, tokenAddr string) (*TokenPrice, error) {
	var resp dataEnvelope[TokenPrice]
	url := fmt.Sprintf("%s/token/price", c.baseURL)
	err := c.get(ctx, url, map[string]string{"address": tokenAddr}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch token price %s failed: %w", tokenAddr, err)
	}
	return &resp.Data, nil
}
