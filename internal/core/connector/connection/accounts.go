package connection

import (
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

// mergeAccounts 合并多组账户，按地址去重
//
// 位置按首次出现排列，内容取最后一次出现的版本。
func mergeAccounts(groups ...[]wallet.Account) []types.AccountInfo {
	index := make(map[string]int)
	var out []types.AccountInfo
	for _, group := range groups {
		for _, a := range group {
			if a.Address == "" {
				continue
			}
			info := types.AccountInfo{Address: a.Address, Icon: a.Icon, Raw: a}
			if i, ok := index[a.Address]; ok {
				out[i] = info
				continue
			}
			index[a.Address] = len(out)
			out = append(out, info)
		}
	}
	return out
}

// selectAccount 连接后的账户选择
//
// 优先本次连接前未见过的账户（用户可能在扩展内切换后重连），
// 其次保留之前选中的地址，最后取第一个。
func selectAccount(accounts []types.AccountInfo, seen map[string]bool, previous string) string {
	if len(accounts) == 0 {
		return ""
	}
	for _, a := range accounts {
		if !seen[a.Address] {
			return a.Address
		}
	}
	if previous != "" && containsAddress(accounts, previous) {
		return previous
	}
	return accounts[0].Address
}

// keepOrFirst 账户列表变化后的选择：原地址仍在则保留，否则取第一个
func keepOrFirst(accounts []types.AccountInfo, previous string) string {
	if len(accounts) == 0 {
		return ""
	}
	if previous != "" && containsAddress(accounts, previous) {
		return previous
	}
	return accounts[0].Address
}

func containsAddress(accounts []types.AccountInfo, address string) bool {
	for _, a := range accounts {
		if a.Address == address {
			return true
		}
	}
	return false
}

func addressSet(groups ...[]types.AccountInfo) map[string]bool {
	set := make(map[string]bool)
	for _, group := range groups {
		for _, a := range group {
			set[a.Address] = true
		}
	}
	return set
}

func sameAddresses(a []wallet.Account, b []types.AccountInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Address != b[i].Address {
			return false
		}
	}
	return true
}
