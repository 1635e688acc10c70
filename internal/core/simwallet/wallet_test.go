package simwallet

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/pkg/utils"
	"github.com/weisyn/connector/pkg/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeterministicAccounts(t *testing.T) {
	a := MustNew(Options{Name: "Phantom", Mnemonic: testMnemonic, Accounts: 2})
	b := MustNew(Options{Name: "Phantom", Mnemonic: testMnemonic, Accounts: 2})

	assert.Equal(t, a.Address(0), b.Address(0))
	assert.NotEqual(t, a.Address(0), a.Address(1))
	assert.True(t, utils.IsPlausibleAddress(a.Address(0)))
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	_, err = New(Options{Name: "X", Mnemonic: "not a mnemonic"})
	assert.Error(t, err)
}

func TestConnectFlow(t *testing.T) {
	ctx := context.Background()
	w := MustNew(Options{Name: "Phantom", Mnemonic: testMnemonic})

	assert.True(t, wallet.IsConnectable(w, wallet.ChainFamily))
	assert.Empty(t, w.Accounts())

	_, err := w.Connect(ctx, wallet.ConnectInput{Silent: true})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	out, err := w.Connect(ctx, wallet.ConnectInput{})
	require.NoError(t, err)
	require.Len(t, out.Accounts, 1)
	assert.Equal(t, w.Address(0), out.Accounts[0].Address)

	// 授权后静默连接成功
	_, err = w.Connect(ctx, wallet.ConnectInput{Silent: true})
	require.NoError(t, err)
	assert.Equal(t, 3, w.ConnectCalls())
	assert.Equal(t, 2, w.SilentCalls())

	require.NoError(t, w.Disconnect(ctx))
	assert.Empty(t, w.Accounts())
}

func TestRejectAndHang(t *testing.T) {
	rejecting := MustNew(Options{Name: "A", Mnemonic: testMnemonic, Reject: true})
	_, err := rejecting.Connect(context.Background(), wallet.ConnectInput{})
	assert.ErrorIs(t, err, ErrUserRejected)

	hanging := MustNew(Options{Name: "B", Mnemonic: testMnemonic, Hang: true})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = hanging.Connect(ctx, wallet.ConnectInput{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSwitchAccountEmitsChange(t *testing.T) {
	w := MustNew(Options{Name: "Phantom", Mnemonic: testMnemonic, Accounts: 2})
	events, ok := wallet.GetEvents(w)
	require.True(t, ok)

	var got []wallet.ChangeEvent
	off, err := events.On(wallet.EventChange, func(ev wallet.ChangeEvent) { got = append(got, ev) })
	require.NoError(t, err)

	require.NoError(t, w.SwitchAccount(1))
	require.Len(t, got, 1)
	assert.Equal(t, w.Address(1), got[0].Accounts[0].Address)

	off()
	require.NoError(t, w.SwitchAccount(0))
	assert.Len(t, got, 1)
	assert.Equal(t, 0, w.ListenerCount())
}

func TestDisableEvents(t *testing.T) {
	w := MustNew(Options{Name: "Quiet", Mnemonic: testMnemonic, DisableEvents: true})
	_, ok := wallet.GetEvents(w)
	assert.False(t, ok)
}

func TestSignMessage(t *testing.T) {
	w := MustNew(Options{Name: "Phantom", Mnemonic: testMnemonic})
	out, err := w.Connect(context.Background(), wallet.ConnectInput{})
	require.NoError(t, err)

	signer, ok := wallet.GetSignMessage(w)
	require.True(t, ok)
	signed, err := signer.SignMessage(context.Background(), wallet.SignMessageInput{Account: out.Accounts[0], Message: []byte("hello")})
	require.NoError(t, err)
	require.Len(t, signed, 1)
	assert.True(t, ed25519.Verify(out.Accounts[0].PublicKey, []byte("hello"), signed[0].Signature))
}

func TestLegacyObjectShapes(t *testing.T) {
	ctx := context.Background()
	w := MustNew(Options{Name: "Phantom", Mnemonic: testMnemonic, Accounts: 2})

	obj := w.LegacyObject(ShapePublicKeyObject)
	assert.True(t, obj.Bool("isPhantom"))

	connect, ok := obj.Method("connect")
	require.True(t, ok)
	result, err := connect.Call(ctx)
	require.NoError(t, err)
	resObj, ok := result.(*wallet.Object)
	require.True(t, ok)
	pk, _ := resObj.String("publicKey")
	assert.Equal(t, w.Address(0), pk)

	bare, ok := w.LegacyObject(ShapeBareKey).Method("connect")
	require.True(t, ok)
	res, err := bare.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, w.Address(0), res)
}

func TestLegacyAccountChanged(t *testing.T) {
	w := MustNew(Options{Name: "Phantom", Mnemonic: testMnemonic, Accounts: 2})
	obj := w.LegacyObject(ShapeWalletPublicKey)

	var got any
	on, _ := obj.Method("on")
	_, err := on.Call(context.Background(), "accountChanged", func(v any) { got = v })
	require.NoError(t, err)

	require.NoError(t, w.SwitchAccount(1))
	assert.Equal(t, w.Address(1), got)
	pk, _ := obj.String("publicKey")
	assert.Equal(t, w.Address(1), pk)
}
