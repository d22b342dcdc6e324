package crosscheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soylana/internal/server/config"
	"soylana/internal/server/monitor"
	"soylana/pkg/logger"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Orchestrator 驱动整个交叉查询：校验、并发拉取、交集、排序组装。
// 查询之间不共享任何状态，每次调用全量重新拉取
type Orchestrator struct {
	cfg     config.CrossCheckConfig
	holders Fetcher
	traders Fetcher
	tl      *zap.Logger
}

func NewOrchestrator(cfg config.CrossCheckConfig, holders, traders Fetcher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		holders: holders,
		traders: traders,
		tl:      logger,
	}
}

// validate 快速失败，校验不过不发起任何上游调用。
// 返回归一化后的 mode 与生效预算（页数）
func (o *Orchestrator) validate(req *Request) (Mode, int, error) {
	if len(req.Tokens) < MinTokens || len(req.Tokens) > MaxTokens {
		return "", 0, &ValidationError{Msg: fmt.Sprintf("token count must be between %d and %d, got %d", MinTokens, MaxTokens, len(req.Tokens))}
	}
	for i, q := range req.Tokens {
		if q.Address == "" {
			return "", 0, &ValidationError{Msg: fmt.Sprintf("tokens[%d]: address must not be empty", i)}
		}
		if q.From > 0 && q.To > 0 && q.From > q.To {
			return "", 0, &ValidationError{Msg: fmt.Sprintf("tokens[%d]: from_time is after to_time", i)}
		}
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeHolders
	}

	switch mode {
	case ModeHolders:
		maxHolders := req.MaxHoldersPerToken
		if maxHolders == 0 {
			maxHolders = o.cfg.MaxHoldersPerToken
		}
		if maxHolders < 1 || maxHolders > o.cfg.MaxHoldersPerToken {
			return "", 0, &ValidationError{Msg: fmt.Sprintf("max_holders_per_token must be between 1 and %d, got %d", o.cfg.MaxHoldersPerToken, maxHolders)}
		}
		req.MaxHoldersPerToken = maxHolders
		// 持有人数量预算换算成页数，向上取整
		return mode, (maxHolders + o.cfg.PageSize - 1) / o.cfg.PageSize, nil
	case ModeTraders:
		maxPages := req.MaxPagesPerToken
		if maxPages == 0 {
			maxPages = o.cfg.MaxPagesPerToken
		}
		if maxPages < 1 || maxPages > o.cfg.MaxPagesPerToken {
			return "", 0, &ValidationError{Msg: fmt.Sprintf("max_pages_per_token must be between 1 and %d, got %d", o.cfg.MaxPagesPerToken, maxPages)}
		}
		req.MaxPagesPerToken = maxPages
		return mode, maxPages, nil
	default:
		return "", 0, &ValidationError{Msg: fmt.Sprintf("unknown mode %q", req.Mode)}
	}
}

// CrossCheck 执行一次完整的交叉查询。单 token 硬失败会中止整个查询并指名
// 失败的 token；降级为部分数据的 token 照常参与交集，扫描量通过
// records_fetched 对外可见
func (o *Orchestrator) CrossCheck(ctx context.Context, req Request) (*Result, error) {
	mode, maxPages, err := o.validate(&req)
	if err != nil {
		monitor.CrossCheckRequests.WithLabelValues(string(req.Mode), "invalid").Inc()
		return nil, err
	}

	ctx, span := logger.StartSpan(ctx, "crosscheck", "cross_check")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.Timeout)*time.Second)
	defer cancel()

	fetcher := o.holders
	if mode == ModeTraders {
		fetcher = o.traders
	}
	budget := Budget{
		MaxPages:    maxPages,
		PageSize:    o.cfg.PageSize,
		MinUSDValue: req.MinUSDValue,
	}
	if mode == ModeHolders {
		// 页数向上取整，行数上限兜底，150 的预算绝不扫 200 行
		budget.MaxRecords = req.MaxHoldersPerToken
	}

	start := time.Now()
	n := len(req.Tokens)
	// 结果按请求位置索引，与各 token 拉取完成的先后无关
	results := make([]*TokenResultSet, n)
	done := make([]bool, n)

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(o.cfg.FetchConcurrency).
		WithCancelOnError().
		WithFirstError()

	for i, q := range req.Tokens {
		p.Go(func(ctx context.Context) error {
			set, err := fetcher.Fetch(ctx, q, budget)
			if err != nil {
				var fe *FetchError
				if errors.As(err, &fe) && fe.Partial && set != nil {
					o.tl.Warn("token degraded to partial data, continuing",
						zap.String("token", q.Address),
						zap.Int("records_fetched", set.Meta.RecordsFetched),
						zap.Error(err))
					results[i] = set
					done[i] = true
					return nil
				}
				// 一行都没拿到：空集合会让交集恒为空，伪装成功会误导调用方
				return &OrchestrationError{Token: q.Address, Err: err}
			}
			results[i] = set
			done[i] = true
			return nil
		})
	}

	waitErr := p.Wait()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		pending := make([]string, 0, n)
		for i := range done {
			if !done[i] {
				pending = append(pending, req.Tokens[i].Address)
			}
		}
		monitor.CrossCheckRequests.WithLabelValues(string(mode), "timeout").Inc()
		return nil, &TimeoutError{Pending: pending}
	}
	if waitErr != nil {
		monitor.CrossCheckRequests.WithLabelValues(string(mode), "error").Inc()
		var oe *OrchestrationError
		if errors.As(waitErr, &oe) {
			return nil, oe
		}
		return nil, &OrchestrationError{Token: "", Err: waitErr}
	}

	common := Intersect(results)

	echo := QueryEcho{
		Mode:        mode,
		TokenCount:  n,
		MinUSDValue: req.MinUSDValue,
	}
	if mode == ModeHolders {
		echo.MaxHoldersPerToken = req.MaxHoldersPerToken
	} else {
		echo.MaxPagesPerToken = req.MaxPagesPerToken
	}

	result := Assemble(mode, results, common, echo, o.cfg.DisplayCap)

	monitor.CrossCheckRequests.WithLabelValues(string(mode), "ok").Inc()
	monitor.CrossCheckDuration.Observe(time.Since(start).Seconds())
	monitor.CrossCheckCommonWallets.Observe(float64(result.TotalCommon))

	o.tl.Info("cross-check completed",
		zap.String("mode", string(mode)),
		zap.Int("tokens", n),
		zap.Int("total_common", result.TotalCommon),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}
