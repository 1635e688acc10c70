package wallet

// DisplayWallet 图标覆盖装饰器
//
// 不修改也不代理第三方钱包对象，只在展示层替换图标；
// 其余能力全部委托给 Underlying。
type DisplayWallet struct {
	Underlying  Wallet
	DisplayIcon string
}

// WithDisplayIcon 为钱包附加展示图标，空图标直接返回原钱包
func WithDisplayIcon(w Wallet, icon string) Wallet {
	if w == nil || icon == "" {
		return w
	}
	if d, ok := w.(*DisplayWallet); ok {
		return &DisplayWallet{Underlying: d.Underlying, DisplayIcon: icon}
	}
	return &DisplayWallet{Underlying: w, DisplayIcon: icon}
}

// Unwrap 返回被装饰的原始钱包
func Unwrap(w Wallet) Wallet {
	for {
		d, ok := w.(*DisplayWallet)
		if !ok || d == nil {
			return w
		}
		w = d.Underlying
	}
}

func (d *DisplayWallet) Version() string     { return d.Underlying.Version() }
func (d *DisplayWallet) Name() string        { return d.Underlying.Name() }
func (d *DisplayWallet) Chains() []string    { return d.Underlying.Chains() }
func (d *DisplayWallet) Features() Features  { return d.Underlying.Features() }
func (d *DisplayWallet) Accounts() []Account { return d.Underlying.Accounts() }

// Icon 优先返回展示图标
func (d *DisplayWallet) Icon() string {
	if d.DisplayIcon != "" {
		return d.DisplayIcon
	}
	return d.Underlying.Icon()
}
