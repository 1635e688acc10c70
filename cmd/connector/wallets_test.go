package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/pkg/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestSimHostWallets(t *testing.T) {
	host, err := newSimHost(testMnemonic, false)
	require.NoError(t, err)
	defer host.Close()

	phantom, ok := host.Wallet("Phantom")
	require.True(t, ok)
	assert.NotEqual(t, phantom.Address(0), phantom.Address(1))
	assert.True(t, wallet.IsConnectable(phantom, wallet.ChainFamily))

	solflare, ok := host.Wallet("Solflare")
	require.True(t, ok)
	assert.False(t, solflare.Features().Has(wallet.FeatureEvents))

	_, ok = host.Wallet("Backpack")
	assert.True(t, ok)
	_, ok = host.Wallet("Phantom Wallet Pro")
	assert.False(t, ok)
}

func TestImpostorIsNotConnectable(t *testing.T) {
	w := newImpostor()
	assert.Equal(t, "Phantom Wallet Pro", w.Name())
	assert.True(t, w.Features().Has(wallet.FeatureConnect))
	assert.False(t, wallet.IsConnectable(w, wallet.ChainFamily))
}
