// Package simwallet 提供模拟钱包提供者
//
// 账户由 BIP39 助记词经 HKDF 派生为 ed25519 密钥，地址为公钥的 base58 编码。
// 支持标准能力包形态与旧式全局对象形态，可模拟用户拒绝、挂起的弹窗、
// 静默授权和扩展内切换账户，用于演示与测试。
package simwallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weisyn/connector/pkg/wallet"
)

// ErrUserRejected 用户拒绝
var ErrUserRejected = errors.New("User rejected the request.")

// ErrNotAuthorized 静默连接需要已有授权
var ErrNotAuthorized = errors.New("wallet has not authorized this site for silent connect")

// Options 模拟钱包选项
type Options struct {
	Name     string
	Icon     string
	Chains   []string
	Mnemonic string // 为空时随机生成

	// Accounts 派生的账户数，默认1
	Accounts int

	// Reject 连接请求被用户拒绝
	Reject bool
	// Hang 连接请求永不返回，直到 ctx 取消
	Hang bool
	// ConnectDelay 连接请求延迟
	ConnectDelay time.Duration
	// Authorized 预先授权，静默连接直接成功
	Authorized bool
	// DisableEvents 不暴露 standard:events（连接器将退回轮询）
	DisableEvents bool
	// FailDisconnect disconnect 返回错误
	FailDisconnect bool
	// DisconnectDelay disconnect 返回前的延迟，ctx 取消时提前返回
	DisconnectDelay time.Duration
}

// Wallet 模拟钱包
type Wallet struct {
	static  *wallet.Static
	keyring *Keyring
	opts    Options

	mu         sync.Mutex
	authorized bool
	exposed    []int // 连接后暴露的账户下标
	listeners  map[int]func(wallet.ChangeEvent)
	nextID     int

	connectCalls    atomic.Int32
	silentCalls     atomic.Int32
	disconnectCalls atomic.Int32
}

var (
	_ wallet.Wallet             = (*Wallet)(nil)
	_ wallet.ConnectFeature     = (*Wallet)(nil)
	_ wallet.DisconnectFeature  = (*Wallet)(nil)
	_ wallet.EventsFeature      = (*Wallet)(nil)
	_ wallet.SignMessageFeature = (*Wallet)(nil)
)

// New 创建模拟钱包
func New(opts Options) (*Wallet, error) {
	if opts.Name == "" {
		return nil, errors.New("wallet name is required")
	}
	if len(opts.Chains) == 0 {
		opts.Chains = []string{"solana:mainnet", "solana:devnet", "solana:testnet"}
	}
	if opts.Accounts <= 0 {
		opts.Accounts = 1
	}
	if opts.Mnemonic == "" {
		mnemonic, err := GenerateMnemonic()
		if err != nil {
			return nil, err
		}
		opts.Mnemonic = mnemonic
	}
	keyring, err := NewKeyring(opts.Mnemonic)
	if err != nil {
		return nil, err
	}
	if err := keyring.Ensure(opts.Accounts); err != nil {
		return nil, err
	}

	w := &Wallet{
		keyring:    keyring,
		opts:       opts,
		authorized: opts.Authorized,
		listeners:  make(map[int]func(wallet.ChangeEvent)),
	}
	for i := 0; i < opts.Accounts; i++ {
		w.exposed = append(w.exposed, i)
	}

	features := wallet.Features{
		wallet.FeatureConnect:         w,
		wallet.FeatureDisconnect:      w,
		wallet.FeatureSignMessage:     w,
		wallet.FeatureSignTransaction: signTransaction{w},
	}
	if !opts.DisableEvents {
		features[wallet.FeatureEvents] = w
	}
	w.static = wallet.NewStatic(opts.Name, opts.Icon, opts.Chains, features)
	return w, nil
}

// MustNew 创建模拟钱包，失败 panic（测试使用）
func MustNew(opts Options) *Wallet {
	w, err := New(opts)
	if err != nil {
		panic(err)
	}
	return w
}

func (w *Wallet) Version() string            { return w.static.Version() }
func (w *Wallet) Name() string               { return w.static.Name() }
func (w *Wallet) Icon() string               { return w.static.Icon() }
func (w *Wallet) Chains() []string           { return w.static.Chains() }
func (w *Wallet) Features() wallet.Features  { return w.static.Features() }
func (w *Wallet) Accounts() []wallet.Account { return w.static.Accounts() }

// Mnemonic 助记词
func (w *Wallet) Mnemonic() string { return w.keyring.Mnemonic() }

// Address 第 i 个派生账户地址
func (w *Wallet) Address(i int) string { return w.keyring.Address(i) }

// ConnectCalls 连接调用次数（含静默）
func (w *Wallet) ConnectCalls() int { return int(w.connectCalls.Load()) }

// SilentCalls 静默连接调用次数
func (w *Wallet) SilentCalls() int { return int(w.silentCalls.Load()) }

// DisconnectCalls 断开调用次数
func (w *Wallet) DisconnectCalls() int { return int(w.disconnectCalls.Load()) }

// SetReject 修改拒绝行为
func (w *Wallet) SetReject(reject bool) {
	w.mu.Lock()
	w.opts.Reject = reject
	w.mu.Unlock()
}

// Revoke 撤销站点授权
func (w *Wallet) Revoke() {
	w.mu.Lock()
	w.authorized = false
	w.mu.Unlock()
}

// Connect standard:connect
func (w *Wallet) Connect(ctx context.Context, input wallet.ConnectInput) (wallet.ConnectOutput, error) {
	w.connectCalls.Add(1)
	if input.Silent {
		w.silentCalls.Add(1)
	}

	w.mu.Lock()
	opts := w.opts
	authorized := w.authorized
	w.mu.Unlock()

	if input.Silent {
		if !authorized {
			return wallet.ConnectOutput{}, ErrNotAuthorized
		}
	} else {
		if opts.Hang {
			<-ctx.Done()
			return wallet.ConnectOutput{}, ctx.Err()
		}
		if opts.ConnectDelay > 0 {
			timer := time.NewTimer(opts.ConnectDelay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return wallet.ConnectOutput{}, ctx.Err()
			}
		}
		if opts.Reject {
			return wallet.ConnectOutput{}, ErrUserRejected
		}
	}

	w.mu.Lock()
	w.authorized = true
	accounts := w.accountsLocked()
	w.mu.Unlock()

	w.static.SetAccounts(accounts)
	return wallet.ConnectOutput{Accounts: accounts}, nil
}

// Disconnect standard:disconnect
func (w *Wallet) Disconnect(ctx context.Context) error {
	w.disconnectCalls.Add(1)
	w.static.SetAccounts(nil)
	if w.opts.DisconnectDelay > 0 {
		timer := time.NewTimer(w.opts.DisconnectDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if w.opts.FailDisconnect {
		return errors.New("disconnect failed")
	}
	return nil
}

// On standard:events
func (w *Wallet) On(event string, listener func(wallet.ChangeEvent)) (func(), error) {
	if event != wallet.EventChange {
		return nil, fmt.Errorf("unsupported event %q", event)
	}
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = listener
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}, nil
}

// ListenerCount 当前 change 监听器数量
func (w *Wallet) ListenerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// SignMessage solana:signMessage
func (w *Wallet) SignMessage(ctx context.Context, inputs ...wallet.SignMessageInput) ([]wallet.SignMessageOutput, error) {
	outputs := make([]wallet.SignMessageOutput, 0, len(inputs))
	for _, in := range inputs {
		key, ok := w.keyring.Find(in.Account.Address)
		if !ok {
			return nil, fmt.Errorf("account %s not found", in.Account.Address)
		}
		outputs = append(outputs, wallet.SignMessageOutput{
			SignedMessage: in.Message,
			Signature:     ed25519.Sign(key, in.Message),
		})
	}
	return outputs, nil
}

type signTransaction struct{ w *Wallet }

// SignTransaction solana:signTransaction；交易字节由外部编码，这里只对其签名
func (s signTransaction) SignTransaction(ctx context.Context, inputs ...wallet.SignTransactionInput) ([][]byte, error) {
	out := make([][]byte, 0, len(inputs))
	for _, in := range inputs {
		key, ok := s.w.keyring.Find(in.Account.Address)
		if !ok {
			return nil, fmt.Errorf("account %s not found", in.Account.Address)
		}
		out = append(out, append(ed25519.Sign(key, in.Transaction), in.Transaction...))
	}
	return out, nil
}

// SwitchAccount 模拟在扩展内切换账户：只暴露第 index 个账户并发出 change 事件
func (w *Wallet) SwitchAccount(index int) error {
	return w.Expose(true, index)
}

// Expose 设置暴露的账户；notify 为 false 时只修改 accounts 字段（模拟无事件的钱包）
func (w *Wallet) Expose(notify bool, indexes ...int) error {
	w.mu.Lock()
	need := 0
	for _, i := range indexes {
		if i < 0 {
			w.mu.Unlock()
			return fmt.Errorf("invalid account index %d", i)
		}
		if i+1 > need {
			need = i + 1
		}
	}
	if err := w.keyring.Ensure(need); err != nil {
		w.mu.Unlock()
		return err
	}
	w.exposed = append([]int(nil), indexes...)
	accounts := w.accountsLocked()
	listeners := make([]func(wallet.ChangeEvent), 0, len(w.listeners))
	for _, l := range w.listeners {
		listeners = append(listeners, l)
	}
	w.mu.Unlock()

	w.static.SetAccounts(accounts)
	if notify {
		for _, l := range listeners {
			l(wallet.ChangeEvent{HasAccounts: true, Accounts: accounts})
		}
	}
	return nil
}

// SetChains 修改声明的链并发出 change 事件
func (w *Wallet) SetChains(chains ...string) {
	w.mu.Lock()
	w.opts.Chains = append([]string(nil), chains...)
	listeners := make([]func(wallet.ChangeEvent), 0, len(w.listeners))
	for _, l := range w.listeners {
		listeners = append(listeners, l)
	}
	w.mu.Unlock()

	w.static.SetChains(chains)
	for _, l := range listeners {
		l(wallet.ChangeEvent{Chains: chains})
	}
}

func (w *Wallet) accountsLocked() []wallet.Account {
	accounts := make([]wallet.Account, 0, len(w.exposed))
	for _, i := range w.exposed {
		key := w.keyring.Key(i)
		accounts = append(accounts, wallet.Account{
			Address:   w.keyring.Address(i),
			PublicKey: []byte(key.Public().(ed25519.PublicKey)),
			Chains:    w.opts.Chains,
			Features:  []wallet.FeatureID{wallet.FeatureSignMessage, wallet.FeatureSignTransaction},
			Label:     fmt.Sprintf("%s #%d", w.opts.Name, i+1),
		})
	}
	return accounts
}
