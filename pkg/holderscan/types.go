package holderscan

import "github.com/shopspring/decimal"

// Token represents basic token information returned by /{chain}/tokens/{address}
type Token struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Network  string `json:"network"`
	Decimals int    `json:"decimals"`
	Supply   string `json:"supply"`
}

// TokenListResp represents the paginated response of /{chain}/tokens
type TokenListResp struct {
	Total  int     `json:"total"`
	Tokens []Token `json:"tokens"`
}

// TokenStats represents upstream-computed distribution statistics.
// HHI and Gini are consumed as opaque numbers, never recomputed locally.
type TokenStats struct {
	HHI                  float64  `json:"hhi"`
	Gini                 float64  `json:"gini"`
	MedianHolderPosition int      `json:"median_holder_position"`
	AvgTimeHeld          *int64   `json:"avg_time_held"`  // seconds, may be null
	RetentionRate        *float64 `json:"retention_rate"` // may be null
}

// TokenPnL represents aggregated profit/loss statistics for a token.
type TokenPnL struct {
	BreakEvenPrice     *float64        `json:"break_even_price"`
	RealizedPnLTotal   decimal.Decimal `json:"realized_pnl_total"`   // USD
	UnrealizedPnLTotal decimal.Decimal `json:"unrealized_pnl_total"` // USD
}

// WalletCategories represents the top-holder breakdown by holding duration.
// diamond 为最长期持有者，wood 为最新进场的持有者
type WalletCategories struct {
	Diamond    int `json:"diamond"`
	Gold       int `json:"gold"`
	Silver     int `json:"silver"`
	Bronze     int `json:"bronze"`
	Wood       int `json:"wood"`
	NewHolders int `json:"new_holders"`
}

// SupplyBreakdown represents the share of supply held by each duration category.
type SupplyBreakdown struct {
	Diamond float64 `json:"diamond"`
	Gold    float64 `json:"gold"`
	Silver  float64 `json:"silver"`
	Bronze  float64 `json:"bronze"`
	Wood    float64 `json:"wood"`
}

// Holder represents a single token holder row.
type Holder struct {
	Address         string          `json:"address"`
	SplTokenAccount string          `json:"spl_token_account,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Rank            int             `json:"rank"`
}

// HolderList represents a paginated holder listing.
type HolderList struct {
	HolderCount int      `json:"holder_count"`
	Total       int      `json:"total"` // 符合过滤条件的总数
	Holders     []Holder `json:"holders"`
}

// HolderListParams holds the optional filters of the holders endpoint.
type HolderListParams struct {
	MinAmount *float64
	MaxAmount *float64
	Limit     int
	Offset    int
}

// HolderDeltas represents holder count changes over fixed time windows.
// 上游返回 "1hour" / "3days" 这类 key，缺失一律归零，调用方不再做兜底
type HolderDeltas struct {
	Hour1   int `json:"hour_1"`
	Hours2  int `json:"hours_2"`
	Hours4  int `json:"hours_4"`
	Hours12 int `json:"hours_12"`
	Day1    int `json:"day_1"`
	Days3   int `json:"days_3"`
	Days7   int `json:"days_7"`
	Days14  int `json:"days_14"`
	Days30  int `json:"days_30"`
}

// HolderCategories represents holder counts by balance-size category,
// shrimp being the smallest holders and whale the largest.
type HolderCategories struct {
	Shrimp  int `json:"shrimp"`
	Crab    int `json:"crab"`
	Fish    int `json:"fish"`
	Dolphin int `json:"dolphin"`
	Whale   int `json:"whale"`
}

// HolderBreakdowns represents holder statistics organized by holding value.
type HolderBreakdowns struct {
	TotalHolders       int              `json:"total_holders"`
	HoldersOver10USD   int              `json:"holders_over_10_usd"`
	HoldersOver100USD  int              `json:"holders_over_100_usd"`
	HoldersOver1000USD int              `json:"holders_over_1000_usd"`
	HoldersOver10KUSD  int              `json:"holders_over_10000_usd"`
	HoldersOver100KUSD int              `json:"holders_over_100k_usd"`
	HoldersOver1MUSD   int              `json:"holders_over_1m_usd"`
	Categories         HolderCategories `json:"categories"`
}

// HoldingBreakdown represents one wallet's holdings split by holding age.
type HoldingBreakdown struct {
	Diamond float64 `json:"diamond"`
	Gold    float64 `json:"gold"`
	Silver  float64 `json:"silver"`
	Bronze  float64 `json:"bronze"`
	Wood    float64 `json:"wood"`
}

// WalletStats represents per-wallet statistics for one token.
type WalletStats struct {
	Amount           decimal.Decimal  `json:"amount"`
	HolderCategory   string           `json:"holder_category"` // whale / dolphin / ...
	AvgTimeHeld      *int64           `json:"avg_time_held"`   // seconds, may be null
	HoldingBreakdown HoldingBreakdown `json:"holding_breakdown"`
	UnrealizedPnL    decimal.Decimal  `json:"unrealized_pnl"` // USD
	RealizedPnL      decimal.Decimal  `json:"realized_pnl"`   // USD
}
