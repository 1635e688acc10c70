package state

import (
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

// Value 补丁中的可选字段
type Value[T any] struct {
	set   bool
	value T
}

// Set 构造已设置的字段值
func Set[T any](v T) Value[T] {
	return Value[T]{set: true, value: v}
}

// Get 返回字段值及是否设置
func (v Value[T]) Get() (T, bool) {
	return v.value, v.set
}

// IsSet 字段是否设置
func (v Value[T]) IsSet() bool { return v.set }

// Patch 状态部分更新，只比较和应用已设置的字段
type Patch struct {
	Wallets         Value[[]types.WalletInfo]
	SelectedWallet  Value[wallet.Wallet]
	Connected       Value[bool]
	Connecting      Value[bool]
	Accounts        Value[[]types.AccountInfo]
	SelectedAccount Value[string]
	Cluster         Value[*types.Cluster]
	Clusters        Value[[]types.Cluster]
}

// Disconnected 干净的断开状态补丁
func Disconnected() Patch {
	return Patch{
		SelectedWallet:  Set[wallet.Wallet](nil),
		Connected:       Set(false),
		Connecting:      Set(false),
		Accounts:        Set([]types.AccountInfo{}),
		SelectedAccount: Set(""),
	}
}
