package autoconnect

import (
	"context"
	"errors"

	"github.com/weisyn/connector/pkg/utils"
	"github.com/weisyn/connector/pkg/wallet"
)

// legacyAccountChanged 旧式账户变更事件名
const legacyAccountChanged = "accountChanged"

// defaultLegacyChains 旧式对象未声明链时假定的链
var defaultLegacyChains = []string{"solana:mainnet"}

var errNoLegacyConnect = errors.New("legacy wallet does not expose connect")

// LegacyWallet 把全局命名空间中的旧式钱包对象包装为标准能力包
//
// 只读取并调用对象上已有的方法，不修改对象本身。connect 结果依次按
// accounts 数组、结果的 publicKey、钱包对象的 publicKey、直接返回的公钥解析。
type LegacyWallet struct {
	name     string
	obj      *wallet.Object
	chains   []string
	features wallet.Features
}

var (
	_ wallet.Wallet            = (*LegacyWallet)(nil)
	_ wallet.ConnectFeature    = (*LegacyWallet)(nil)
	_ wallet.DisconnectFeature = (*LegacyWallet)(nil)
)

// NewLegacyWallet 包装旧式钱包对象
func NewLegacyWallet(name string, obj *wallet.Object) *LegacyWallet {
	lw := &LegacyWallet{name: name, obj: obj}

	lw.chains = defaultLegacyChains
	if chains, ok := obj.Strings("chains"); ok && len(chains) > 0 {
		lw.chains = chains
	}

	features := wallet.Features{
		wallet.FeatureConnect:    lw,
		wallet.FeatureDisconnect: lw,
	}
	if _, ok := obj.Method("on"); ok {
		features[wallet.FeatureEvents] = legacyEvents{obj: obj, chains: lw.chains}
	}
	lw.features = features
	return lw
}

func (l *LegacyWallet) Version() string           { return "1.0.0" }
func (l *LegacyWallet) Name() string              { return l.name }
func (l *LegacyWallet) Chains() []string          { return l.chains }
func (l *LegacyWallet) Features() wallet.Features { return l.features }

// Icon 对象上的 icon 字段
func (l *LegacyWallet) Icon() string {
	icon, _ := l.obj.String("icon")
	return icon
}

// Accounts 由对象当前的 publicKey 推出
func (l *LegacyWallet) Accounts() []wallet.Account {
	if a, ok := accountFromKey(l.publicKey(), l.chains); ok {
		return []wallet.Account{a}
	}
	return nil
}

// Properties 原始对象，供真实性评分读取标志与方法
func (l *LegacyWallet) Properties() *wallet.Object { return l.obj }

// Object 被包装的原始对象
func (l *LegacyWallet) Object() *wallet.Object { return l.obj }

func (l *LegacyWallet) publicKey() any {
	v, _ := l.obj.Get("publicKey")
	return v
}

// Connect 调用旧式 connect；静默时传入 {onlyIfTrusted: true}
func (l *LegacyWallet) Connect(ctx context.Context, input wallet.ConnectInput) (wallet.ConnectOutput, error) {
	connect, ok := l.obj.Method("connect")
	if !ok {
		return wallet.ConnectOutput{}, errNoLegacyConnect
	}
	var args []any
	if input.Silent {
		args = append(args, wallet.NewObject().Set("onlyIfTrusted", true))
	}
	result, err := connect.Call(ctx, args...)
	if err != nil {
		return wallet.ConnectOutput{}, err
	}
	return wallet.ConnectOutput{Accounts: l.normalize(result)}, nil
}

// normalize 解析旧式 connect 的四种返回形态
func (l *LegacyWallet) normalize(result any) []wallet.Account {
	resultObj, _ := result.(*wallet.Object)

	if resultObj != nil {
		if list, ok := resultObj.Get("accounts"); ok {
			if accounts := accountsFromList(list, l.chains); len(accounts) > 0 {
				return accounts
			}
		}
		if key, ok := resultObj.Get("publicKey"); ok {
			if a, ok := accountFromKey(key, l.chains); ok {
				return []wallet.Account{a}
			}
		}
	}
	if a, ok := accountFromKey(l.publicKey(), l.chains); ok {
		return []wallet.Account{a}
	}
	if resultObj == nil {
		if a, ok := accountFromKey(result, l.chains); ok {
			return []wallet.Account{a}
		}
	}
	return nil
}

// Disconnect 调用旧式 disconnect，不存在时视为成功
func (l *LegacyWallet) Disconnect(ctx context.Context) error {
	disconnect, ok := l.obj.Method("disconnect")
	if !ok {
		return nil
	}
	_, err := disconnect.Call(ctx)
	return err
}

// legacyEvents 把 on("accountChanged") 映射为 standard:events 的 change
type legacyEvents struct {
	obj    *wallet.Object
	chains []string
}

func (e legacyEvents) On(event string, listener func(wallet.ChangeEvent)) (func(), error) {
	if event != wallet.EventChange {
		return nil, errors.New("unsupported event " + event)
	}
	on, ok := e.obj.Method("on")
	if !ok {
		return nil, errors.New("legacy wallet does not expose on")
	}
	handler := func(payload any) {
		var accounts []wallet.Account
		if a, ok := accountFromKey(payload, e.chains); ok {
			accounts = []wallet.Account{a}
		}
		listener(wallet.ChangeEvent{HasAccounts: true, Accounts: accounts})
	}
	id, err := on.Call(context.Background(), legacyAccountChanged, handler)
	if err != nil {
		return nil, err
	}

	return func() {
		off, ok := e.obj.Method("off")
		if !ok {
			return
		}
		var ref any = handler
		if id != nil {
			ref = id
		}
		_, _ = off.Call(context.Background(), legacyAccountChanged, ref)
	}, nil
}

// accountFromKey 公钥可为 base58 字符串、32字节切片、账户值或带 address/publicKey 的对象
func accountFromKey(v any, chains []string) (wallet.Account, bool) {
	switch key := v.(type) {
	case string:
		raw, ok := utils.DecodeAddress(key)
		if !ok {
			return wallet.Account{}, false
		}
		return wallet.Account{Address: key, PublicKey: raw, Chains: chains}, true
	case []byte:
		address := utils.EncodePublicKey(key)
		if address == "" {
			return wallet.Account{}, false
		}
		return wallet.Account{Address: address, PublicKey: append([]byte(nil), key...), Chains: chains}, true
	case wallet.Account:
		if !utils.IsPlausibleAddress(key.Address) {
			return wallet.Account{}, false
		}
		return key, true
	case *wallet.Object:
		for _, field := range []string{"address", "publicKey"} {
			if inner, ok := key.Get(field); ok {
				if _, nested := inner.(*wallet.Object); nested {
					continue
				}
				return accountFromKey(inner, chains)
			}
		}
	}
	return wallet.Account{}, false
}

func accountsFromList(v any, chains []string) []wallet.Account {
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	case []wallet.Account:
		for _, a := range list {
			items = append(items, a)
		}
	default:
		return nil
	}

	var out []wallet.Account
	for _, item := range items {
		if a, ok := accountFromKey(item, chains); ok {
			out = append(out, a)
		}
	}
	return out
}
