package crosscheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"soylana/internal/server/monitor"
	"soylana/pkg/holderscan"
	"soylana/pkg/solscan"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	pageAttempts = 3 // 单页重试次数
	retryBackoff = 200 * time.Millisecond
)

// Fetcher 按预算拉取单个 token 的钱包集合。返回的集合交给调用方后不再修改。
// 重试耗尽但已有部分数据时，同时返回部分集合与 *FetchError(Partial=true)；
// 一行都没拿到时集合为 nil，属于硬失败
type Fetcher interface {
	Fetch(ctx context.Context, q TokenQuery, b Budget) (*TokenResultSet, error)
}

// HolderSource holder 口径的上游，排名制持有人榜单
type HolderSource interface {
	GetToken(ctx context.Context, chain, tokenAddr string) (*holderscan.Token, error)
	GetHolders(ctx context.Context, chain, tokenAddr string, params holderscan.HolderListParams) (*holderscan.HolderList, error)
}

// PriceSource USD 阈值换算用的价格源
type PriceSource interface {
	GetTokenPrice(ctx context.Context, tokenAddr string) (*solscan.TokenPrice, error)
}

// TransferSource trader 口径的上游，按 block_time 倒序的转账流水
type TransferSource interface {
	PriceSource
	GetTokenMeta(ctx context.Context, tokenAddr string) (*solscan.TokenMeta, error)
	GetTokenTransfers(ctx context.Context, tokenAddr string, page, pageSize int) (*solscan.TransferPage, error)
}

// transientError 区分值得重试的失败：网络错误、5xx、429 重试，
// 其余 4xx 是确定性失败，重试只会白白烧预算
func transientError(err error) bool {
	var code int
	var hsErr *holderscan.APIError
	var ssErr *solscan.APIError
	switch {
	case errors.As(err, &hsErr):
		code = hsErr.StatusCode
	case errors.As(err, &ssErr):
		code = ssErr.StatusCode
	default:
		return true
	}
	return code >= 500 || code == http.StatusTooManyRequests
}

// retryPage 对单页拉取做固定次数的退避重试，非瞬时错误直接失败
func retryPage[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	backoff := retryBackoff
	for attempt := 0; attempt < pageAttempts; attempt++ {
		if attempt > 0 {
			monitor.CrossCheckFetchRetries.Inc()
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		out, err = fn()
		if err == nil {
			return out, nil
		}
		if !transientError(err) {
			return out, err
		}
	}
	return out, err
}

// usdThreshold 把 USD 阈值按当前价格换算成代币数量阈值。
// 价格缺失或为 0 时无法换算，按该 token 的硬失败处理，
// 静默跳过过滤会返回比请求更宽的集合
func usdThreshold(ctx context.Context, prices PriceSource, tokenAddr string, minUSD float64) (decimal.Decimal, error) {
	price, err := retryPage(ctx, func() (*solscan.TokenPrice, error) {
		return prices.GetTokenPrice(ctx, tokenAddr)
	})
	if err != nil {
		monitor.UpstreamRequestErrors.WithLabelValues("solscan").Inc()
		return decimal.Zero, fmt.Errorf("resolve token price: %w", err)
	}
	if !price.PriceUSDT.IsPositive() {
		return decimal.Zero, fmt.Errorf("token %s has no positive price, cannot apply min_usd_value", tokenAddr)
	}
	return decimal.NewFromFloat(minUSD).Div(price.PriceUSDT), nil
}

// HolderFetcher holder 口径：分页拉取排名制持有人榜单
type HolderFetcher struct {
	source HolderSource
	prices PriceSource
	chain  string
	tl     *zap.Logger
}

func NewHolderFetcher(source HolderSource, prices PriceSource, chain string, logger *zap.Logger) *HolderFetcher {
	return &HolderFetcher{source: source, prices: prices, chain: chain, tl: logger}
}

func (f *HolderFetcher) Fetch(ctx context.Context, q TokenQuery, b Budget) (*TokenResultSet, error) {
	token, err := retryPage(ctx, func() (*holderscan.Token, error) {
		return f.source.GetToken(ctx, f.chain, q.Address)
	})
	if err != nil {
		monitor.UpstreamRequestErrors.WithLabelValues("holderscan").Inc()
		return nil, &FetchError{Token: q.Address, Err: fmt.Errorf("resolve token meta: %w", err)}
	}

	// min_usd_value 是美元阈值，上游 min_amount 是代币数量，先按价换算
	var (
		threshold decimal.Decimal
		hasMin    bool
		minAmount *float64
	)
	if b.MinUSDValue != nil && *b.MinUSDValue > 0 {
		threshold, err = usdThreshold(ctx, f.prices, q.Address, *b.MinUSDValue)
		if err != nil {
			return nil, &FetchError{Token: q.Address, Err: err}
		}
		hasMin = true
		v := threshold.InexactFloat64()
		minAmount = &v
	}

	set := &TokenResultSet{
		Meta: TokenMeta{
			Address:  q.Address,
			Name:     token.Name,
			Decimals: token.Decimals,
		},
		Wallets: make(map[string]WalletRecord),
	}

	for page := 0; page < b.MaxPages; page++ {
		// 末页收窄到剩余预算，拉取总量绝不超过 MaxRecords
		limit := b.PageSize
		if b.MaxRecords > 0 {
			remaining := b.MaxRecords - set.Meta.RecordsFetched
			if remaining <= 0 {
				break
			}
			if remaining < limit {
				limit = remaining
			}
		}

		offset := page * b.PageSize
		list, err := retryPage(ctx, func() (*holderscan.HolderList, error) {
			return f.source.GetHolders(ctx, f.chain, q.Address, holderscan.HolderListParams{
				MinAmount: minAmount,
				Limit:     limit,
				Offset:    offset,
			})
		})
		if err != nil {
			monitor.UpstreamRequestErrors.WithLabelValues("holderscan").Inc()
			if set.Meta.RecordsFetched == 0 {
				return nil, &FetchError{Token: q.Address, Err: err}
			}
			// 保留已拉到的部分数据，交由上层决定是否继续
			f.tl.Warn("holder fetch degraded to partial data",
				zap.String("token", q.Address),
				zap.Int("pages", page),
				zap.Error(err))
			return set, &FetchError{Token: q.Address, Pages: page, Partial: true, Err: err}
		}

		monitor.UpstreamPagesFetched.WithLabelValues("holderscan").Inc()
		set.Meta.RecordsFetched += len(list.Holders)
		for i, h := range list.Holders {
			// 阈值换算后仍逐行校验，不信赖上游的过滤
			if hasMin && h.Amount.LessThan(threshold) {
				continue
			}
			rank := h.Rank
			if rank <= 0 {
				rank = offset + i + 1 // 上游缺排名时按绝对偏移推导
			}
			// 上游分页在并发变更下可能重复同一行，覆盖而非追加
			set.Wallets[h.Address] = WalletRecord{Amount: h.Amount, Rank: rank}
		}

		if len(list.Holders) < limit {
			break // 没有更多记录
		}
	}

	return set, nil
}

// TraderFetcher trader 口径：扫描转账流水，时间窗内出现过的钱包即命中
type TraderFetcher struct {
	source TransferSource
	tl     *zap.Logger
}

func NewTraderFetcher(source TransferSource, logger *zap.Logger) *TraderFetcher {
	return &TraderFetcher{source: source, tl: logger}
}

func (f *TraderFetcher) Fetch(ctx context.Context, q TokenQuery, b Budget) (*TokenResultSet, error) {
	meta, err := retryPage(ctx, func() (*solscan.TokenMeta, error) {
		return f.source.GetTokenMeta(ctx, q.Address)
	})
	if err != nil {
		monitor.UpstreamRequestErrors.WithLabelValues("solscan").Inc()
		return nil, &FetchError{Token: q.Address, Err: fmt.Errorf("resolve token meta: %w", err)}
	}

	var (
		threshold decimal.Decimal
		hasMin    bool
	)
	if b.MinUSDValue != nil && *b.MinUSDValue > 0 {
		threshold, err = usdThreshold(ctx, f.source, q.Address, *b.MinUSDValue)
		if err != nil {
			return nil, &FetchError{Token: q.Address, Err: err}
		}
		hasMin = true
	}

	set := &TokenResultSet{
		Meta: TokenMeta{
			Address:  q.Address,
			Name:     meta.Name,
			Decimals: meta.Decimals,
		},
		Wallets: make(map[string]WalletRecord),
	}

	for page := 1; page <= b.MaxPages; page++ {
		transfers, err := retryPage(ctx, func() (*solscan.TransferPage, error) {
			return f.source.GetTokenTransfers(ctx, q.Address, page, b.PageSize)
		})
		if err != nil {
			monitor.UpstreamRequestErrors.WithLabelValues("solscan").Inc()
			if set.Meta.RecordsFetched == 0 {
				return nil, &FetchError{Token: q.Address, Err: err}
			}
			f.tl.Warn("transfer fetch degraded to partial data",
				zap.String("token", q.Address),
				zap.Int("pages", page-1),
				zap.Error(err))
			return set, &FetchError{Token: q.Address, Pages: page - 1, Partial: true, Err: err}
		}

		monitor.UpstreamPagesFetched.WithLabelValues("solscan").Inc()
		set.Meta.RecordsFetched += len(transfers.Items)

		pastWindow := true
		for _, tr := range transfers.Items {
			if q.From > 0 && tr.BlockTime < q.From {
				continue
			}
			pastWindow = false
			if q.To > 0 && tr.BlockTime > q.To {
				continue
			}
			if hasMin && tr.Amount.LessThan(threshold) {
				continue
			}
			if tr.FromAddress != "" {
				set.Wallets[tr.FromAddress] = WalletRecord{Amount: tr.Amount, Traded: true}
			}
			if tr.ToAddress != "" {
				set.Wallets[tr.ToAddress] = WalletRecord{Amount: tr.Amount, Traded: true}
			}
		}

		if len(transfers.Items) < b.PageSize {
			break
		}
		// 流水按时间倒序，整页都早于窗口起点时提前收束
		if q.From > 0 && pastWindow && len(transfers.Items) > 0 {
			break
		}
	}

	return set, nil
}
