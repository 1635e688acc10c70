package wallet

import "sync"

// Static 字段驱动的钱包实现，适合嵌入其他实现或在测试中使用
type Static struct {
	mu       sync.RWMutex
	version  string
	name     string
	icon     string
	chains   []string
	features Features
	accounts []Account
}

// NewStatic 创建静态钱包
func NewStatic(name, icon string, chains []string, features Features) *Static {
	if features == nil {
		features = make(Features)
	}
	return &Static{
		version:  "1.0.0",
		name:     name,
		icon:     icon,
		chains:   chains,
		features: features,
	}
}

func (s *Static) Version() string { return s.version }
func (s *Static) Name() string    { return s.name }
func (s *Static) Icon() string    { return s.icon }

func (s *Static) Chains() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chains
}

func (s *Static) Features() Features {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.features
}

// SetFeature 设置或移除（value 为 nil）能力
func (s *Static) SetFeature(id FeatureID, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(Features, len(s.features)+1)
	for k, v := range s.features {
		next[k] = v
	}
	if value == nil {
		delete(next, id)
	} else {
		next[id] = value
	}
	s.features = next
}

func (s *Static) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// SetAccounts 替换账户列表
func (s *Static) SetAccounts(accounts []Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append([]Account(nil), accounts...)
}

// SetChains 替换声明的链
func (s *Static) SetChains(chains []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains = append([]string(nil), chains...)
}
