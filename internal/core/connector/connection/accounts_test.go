package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/connector/pkg/wallet"
)

func TestMergeAccounts(t *testing.T) {
	merged := mergeAccounts(
		[]wallet.Account{{Address: "A", Label: "old"}, {Address: "B"}},
		[]wallet.Account{{Address: "A", Label: "new"}, {Address: ""}, {Address: "C"}},
	)
	assert.Len(t, merged, 3)
	assert.Equal(t, "A", merged[0].Address)
	assert.Equal(t, "new", merged[0].Raw.Label)
	assert.Equal(t, "C", merged[2].Address)
	assert.Empty(t, mergeAccounts())
}

func TestSelectAccountRule(t *testing.T) {
	accounts := mergeAccounts([]wallet.Account{{Address: "A"}, {Address: "B"}})

	// 优先连接前未见过的账户
	assert.Equal(t, "B", selectAccount(accounts, map[string]bool{"A": true}, "A"))
	// 全部见过时保留之前的选择
	assert.Equal(t, "B", selectAccount(accounts, map[string]bool{"A": true, "B": true}, "B"))
	// 之前的选择已不存在时取第一个
	assert.Equal(t, "A", selectAccount(accounts, map[string]bool{"A": true, "B": true}, "Z"))
	assert.Empty(t, selectAccount(nil, nil, "A"))
}

func TestKeepOrFirst(t *testing.T) {
	accounts := mergeAccounts([]wallet.Account{{Address: "A"}, {Address: "B"}})
	assert.Equal(t, "B", keepOrFirst(accounts, "B"))
	assert.Equal(t, "A", keepOrFirst(accounts, "C"))
	assert.Empty(t, keepOrFirst(nil, "A"))
}
