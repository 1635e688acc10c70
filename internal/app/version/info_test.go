package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDescribesConnector(t *testing.T) {
	info := Get()
	assert.Equal(t, "v1", info.APIVersion)
	assert.Equal(t, "solana", info.ChainFamily)
	assert.Equal(t, []string{"standard:connect", "standard:disconnect"}, info.Features)
}

func TestGetFullVersion(t *testing.T) {
	oldCommit, oldTime := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldTime })

	Commit = "0123456789abcdef"
	BuildTime = "2026-01-02T03:04:05Z"

	out := GetFullVersion()
	assert.Contains(t, out, Version+" (0123456)")
	assert.Contains(t, out, "构建时间: 2026-01-02 03:04:05 UTC")
	assert.Contains(t, out, "接口版本: v1")
	assert.Contains(t, out, "链族: solana")

	BuildTime = "yesterday"
	assert.Contains(t, GetFullVersion(), "构建时间: yesterday")
}
