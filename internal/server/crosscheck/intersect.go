package crosscheck

// Intersect 计算出现在所有集合中的钱包，严格交集。
// 以最小集合为探针逐一校验其余集合的成员关系，顺序在这一步不保证，
// 排序由 Assemble 负责。任一集合为空时交集为空，这不是错误。
// 同一 token 地址出现两次时按两个独立集合处理，不做去重
func Intersect(sets []*TokenResultSet) []CommonWallet {
	if len(sets) == 0 {
		return nil
	}

	probe := 0
	for i, s := range sets {
		if len(s.Wallets) < len(sets[probe].Wallets) {
			probe = i
		}
	}
	if len(sets[probe].Wallets) == 0 {
		return nil
	}

	common := make([]CommonWallet, 0)
	for wallet := range sets[probe].Wallets {
		records := make(map[string]WalletRecord, len(sets))
		matched := true
		for _, s := range sets {
			rec, ok := s.Wallets[wallet]
			if !ok {
				matched = false
				break
			}
			records[s.Meta.Address] = rec
		}
		if !matched {
			continue
		}
		common = append(common, CommonWallet{
			Wallet:        wallet,
			Tokens:        records,
			TokensMatched: len(sets),
		})
	}

	return common
}
