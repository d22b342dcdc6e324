package crosscheck

import (
	"math"
	"sort"
)

// avgRank 对有排名的 token 求平均排名，排名越小持仓越大。
// 一个排名都没有时返回 +Inf，排到末尾
func avgRank(cw CommonWallet) float64 {
	sum, n := 0, 0
	for _, rec := range cw.Tokens {
		if rec.Rank > 0 {
			sum += rec.Rank
			n++
		}
	}
	if n == 0 {
		return math.Inf(1)
	}
	return float64(sum) / float64(n)
}

// Assemble 排序、截断并组装响应信封。
// holder 口径按平均排名升序；trader 口径没有排名，按命中 token 数降序。
// 平手一律按钱包地址升序，保证同样的输入产出同样的顺序
func Assemble(mode Mode, sets []*TokenResultSet, common []CommonWallet, echo QueryEcho, displayCap int) *Result {
	if mode == ModeTraders {
		sort.Slice(common, func(i, j int) bool {
			if common[i].TokensMatched != common[j].TokensMatched {
				return common[i].TokensMatched > common[j].TokensMatched
			}
			return common[i].Wallet < common[j].Wallet
		})
	} else {
		sort.Slice(common, func(i, j int) bool {
			ri, rj := avgRank(common[i]), avgRank(common[j])
			if ri != rj {
				return ri < rj
			}
			return common[i].Wallet < common[j].Wallet
		})
	}

	totalCommon := len(common)
	if displayCap > 0 && len(common) > displayCap {
		common = common[:displayCap]
	}

	// token 元信息保持请求顺序，与拉取完成的先后无关
	metas := make([]TokenMeta, 0, len(sets))
	for _, s := range sets {
		metas = append(metas, s.Meta)
	}

	return &Result{
		CommonWallets: common,
		Tokens:        metas,
		TotalCommon:   totalCommon,
		Query:         echo,
	}
}
