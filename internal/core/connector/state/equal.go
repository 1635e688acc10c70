package state

import (
	"reflect"

	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

// 按字段类型分派的浅比较，只比较一层

// walletsEqual 长度相同且每项字段浅相等
func walletsEqual(a, b []types.WalletInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameWallet(a[i].Wallet, b[i].Wallet) ||
			a[i].Installed != b[i].Installed ||
			a[i].Connectable != b[i].Connectable {
			return false
		}
	}
	return true
}

// accountsEqual 长度相同且地址序列相同
func accountsEqual(a, b []types.AccountInfo) bool {
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

func clustersEqual(a, b []types.Cluster) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clusterEqual(a, b *types.Cluster) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// sameWallet 钱包身份比较
// 不可比较的动态类型中 map 与切片按底层引用判断，其余（含按值持有的结构体）视为不同
func sameWallet(a, b wallet.Wallet) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}
