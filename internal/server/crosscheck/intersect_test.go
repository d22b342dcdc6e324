package crosscheck

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func holderSet(addr string, wallets map[string]int) *TokenResultSet {
	set := &TokenResultSet{
		Meta:    TokenMeta{Address: addr, RecordsFetched: len(wallets)},
		Wallets: make(map[string]WalletRecord, len(wallets)),
	}
	for w, rank := range wallets {
		set.Wallets[w] = WalletRecord{Amount: decimal.NewFromInt(int64(rank * 100)), Rank: rank}
	}
	return set
}

func TestIntersectStrict(t *testing.T) {
	x := holderSet("tokenX", map[string]int{"W1": 1, "W2": 2, "W3": 3})
	y := holderSet("tokenY", map[string]int{"W2": 5, "W3": 1, "W4": 2})

	common := Intersect([]*TokenResultSet{x, y})
	require.Len(t, common, 2)

	byWallet := map[string]CommonWallet{}
	for _, cw := range common {
		byWallet[cw.Wallet] = cw
	}
	require.Contains(t, byWallet, "W2")
	require.Contains(t, byWallet, "W3")

	// W2 在两个 token 下各自的排名必须独立保留
	w2 := byWallet["W2"]
	assert.Equal(t, 2, w2.TokensMatched)
	assert.Equal(t, 2, w2.Tokens["tokenX"].Rank)
	assert.Equal(t, 5, w2.Tokens["tokenY"].Rank)
}

func TestIntersectEmptySetYieldsEmpty(t *testing.T) {
	x := holderSet("tokenX", map[string]int{"W1": 1, "W2": 2})
	empty := holderSet("tokenY", map[string]int{})

	common := Intersect([]*TokenResultSet{x, empty})
	assert.Empty(t, common)
}

func TestIntersectNoSets(t *testing.T) {
	assert.Empty(t, Intersect(nil))
}

func TestIntersectDuplicateTokenTwoIndependentSets(t *testing.T) {
	// 同一地址出现两次，两个集合独立参与交集
	a := holderSet("tokenX", map[string]int{"W1": 1, "W2": 2})
	b := holderSet("tokenX", map[string]int{"W2": 7})

	common := Intersect([]*TokenResultSet{a, b})
	require.Len(t, common, 1)
	assert.Equal(t, "W2", common[0].Wallet)
	assert.Equal(t, 2, common[0].TokensMatched)
}

func TestIntersectMonotonicity(t *testing.T) {
	x := holderSet("tokenX", map[string]int{"W1": 1, "W2": 2, "W3": 3, "W4": 4})
	y := holderSet("tokenY", map[string]int{"W2": 1, "W3": 2, "W5": 3})
	z := holderSet("tokenZ", map[string]int{"W3": 1, "W6": 2})

	all := len(Intersect([]*TokenResultSet{x, y, z}))
	relaxed := len(Intersect([]*TokenResultSet{x, y}))

	// 去掉一个约束集合，交集只会持平或变大
	assert.GreaterOrEqual(t, relaxed, all)
}
