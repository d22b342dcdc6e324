package crosscheck

import "github.com/shopspring/decimal"

// Mode 交叉查询的两种口径：持有人榜单交集 / 时间窗内交易过的钱包交集
type Mode string

const (
	ModeHolders Mode = "holders"
	ModeTraders Mode = "traders"
)

// 查询 token 数量边界
const (
	MinTokens = 2
	MaxTokens = 10
)

// TokenQuery 单个 token 的查询条件，时间窗只对 trader 口径生效
type TokenQuery struct {
	Address string `json:"address"`
	From    int64  `json:"from_time,omitempty"` // unix seconds，0 表示不限
	To      int64  `json:"to_time,omitempty"`
}

// Budget 单 token 的扫描预算
type Budget struct {
	MaxPages    int
	PageSize    int
	MaxRecords  int      // 拉取总行数上限，0 不限；holder 口径下等于持有人预算
	MinUSDValue *float64 // 按美元价值过滤，拉取时换算成代币数量阈值
}

// TokenMeta 一次查询生命周期内每个 token 解析一次的元信息
type TokenMeta struct {
	Address        string `json:"address"`
	Name           string `json:"name"`
	Decimals       int    `json:"decimals"`
	RecordsFetched int    `json:"records_fetched"` // 原始拉取行数，未去重
}

// WalletRecord 单个 (token, wallet) 的属性。holder 口径带 Amount/Rank，
// trader 口径只有 Traded 标记
type WalletRecord struct {
	Amount decimal.Decimal `json:"amount"`
	Rank   int             `json:"rank,omitempty"` // 1-based，0 表示无排名
	Traded bool            `json:"traded,omitempty"`
}

// TokenResultSet 单个 token 的拉取结果，fetch 完成后不再修改
type TokenResultSet struct {
	Meta    TokenMeta
	Wallets map[string]WalletRecord
}

// CommonWallet 命中所有 token 的钱包，按 token 地址索引各自的属性
type CommonWallet struct {
	Wallet        string                  `json:"wallet"`
	Tokens        map[string]WalletRecord `json:"tokens"`
	TokensMatched int                     `json:"tokens_matched"`
}

// QueryEcho 回显给前端的有效查询参数
type QueryEcho struct {
	Mode               Mode     `json:"mode"`
	TokenCount         int      `json:"token_count"`
	MaxHoldersPerToken int      `json:"max_holders_per_token,omitempty"`
	MaxPagesPerToken   int      `json:"max_pages_per_token,omitempty"`
	MinUSDValue        *float64 `json:"min_usd_value,omitempty"`
}

// Result 交叉查询响应信封。TotalCommon 统计截断前的总数，
// CommonWallets 只保留展示上限内的部分
type Result struct {
	CommonWallets []CommonWallet `json:"common_wallets"`
	Tokens        []TokenMeta    `json:"tokens"` // 与请求顺序一致
	TotalCommon   int            `json:"total_common"`
	Query         QueryEcho      `json:"query"`
}

// Request POST /api/cross-checker 的请求体
type Request struct {
	Tokens             []TokenQuery `json:"tokens"`
	Mode               Mode         `json:"mode,omitempty"`
	MaxHoldersPerToken int          `json:"max_holders_per_token,omitempty"`
	MaxPagesPerToken   int          `json:"max_pages_per_token,omitempty"`
	MinUSDValue        *float64     `json:"min_usd_value,omitempty"`
}
