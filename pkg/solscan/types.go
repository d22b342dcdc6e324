package solscan

import "github.com/shopspring/decimal"

// TokenMeta represents basic token metadata from /token/meta.
type TokenMeta struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Supply   string `json:"supply"`
}

// TokenTransfer represents a single token transfer record.
type TokenTransfer struct {
	Signature    string          `json:"signature"`
	BlockTime    int64           `json:"block_time"` // unix seconds
	FromAddress  string          `json:"from_address"`
	ToAddress    string          `json:"to_address"`
	Amount       decimal.Decimal `json:"amount"`
	TokenAddress string          `json:"token_address"`
}

// TransferPage represents one page of /token/transfer, ordered by
// descending block_time.
type TransferPage struct {
	Total int             `json:"total"`
	Items []TokenTransfer `json:"data"`
}

// AccountDetail represents account/wallet details.
type AccountDetail struct {
	Address      string `json:"address"`
	Lamports     int64  `json:"lamports"`
	OwnerProgram string `json:"owner_program"`
	AccountType  string `json:"account_type"`
}

// TokenPrice represents the price feed entry of a token.
type TokenPrice struct {
	TokenAddress string          `json:"token_address"`
	PriceUSDT    decimal.Decimal `json:"price_usdt"`
}
