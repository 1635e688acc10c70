package types

import "github.com/weisyn/connector/pkg/wallet"

// ConnectorState 连接器唯一状态根
//
// 每次被接受的更新都会整体替换为新对象，未变化的字段沿用旧引用（结构共享）。
// 不变式：Connected 为 true 时 SelectedAccount 非空且存在于 Accounts；
// Connected 为 false 时 SelectedAccount 为空且 Accounts 为空。
type ConnectorState struct {
	Wallets         []WalletInfo  `json:"wallets"`          // 已发现钱包，按名称去重，保持发现顺序
	SelectedWallet  wallet.Wallet `json:"-"`                // 当前会话钱包
	Connected       bool          `json:"connected"`        // 已连接
	Connecting      bool          `json:"connecting"`       // 连接中
	Accounts        []AccountInfo `json:"accounts"`         // 当前钱包账户，按地址去重
	SelectedAccount string        `json:"selected_account"` // 选中地址，空表示无
	Cluster         *Cluster      `json:"cluster"`          // 当前网络
	Clusters        []Cluster     `json:"clusters"`         // 可用网络
}

// WalletInfo 发现的候选钱包
type WalletInfo struct {
	Wallet      wallet.Wallet `json:"-"`
	Installed   bool          `json:"installed"`
	Connectable bool          `json:"connectable"`
}

// Name 钱包名称
func (w WalletInfo) Name() string {
	if w.Wallet == nil {
		return ""
	}
	return w.Wallet.Name()
}

// AccountInfo 连接后的账户
type AccountInfo struct {
	Address string         `json:"address"`
	Icon    string         `json:"icon,omitempty"`
	Raw     wallet.Account `json:"-"` // 钱包上报的原始账户，用于重新派生
}

// Cluster 网络配置
type Cluster struct {
	ID       string `json:"id"`       // 如 solana:mainnet
	Label    string `json:"label"`    // 展示名称
	Endpoint string `json:"endpoint"` // RPC 地址
}

// SecurityScore 五项安全子评分，均在 [0,1]
type SecurityScore struct {
	StandardCompliance  float64 `json:"standard_compliance"`
	MethodIntegrity     float64 `json:"method_integrity"`
	ChainSupport        float64 `json:"chain_support"`
	MaliciousPatterns   float64 `json:"malicious_patterns"`
	IdentityConsistency float64 `json:"identity_consistency"`
}

// WalletVerificationResult 钱包真实性启发式评估结果（每次调用新建，不持久化）
type WalletVerificationResult struct {
	Authentic     bool          `json:"authentic"`
	Confidence    float64       `json:"confidence"`
	Reason        string        `json:"reason"`
	Warnings      []string      `json:"warnings"`
	SecurityScore SecurityScore `json:"security_score"`
}

// StoredConnector 上次使用的连接器记录（自动重连策略一使用）
type StoredConnector struct {
	ID          string `json:"id"`
	AutoConnect bool   `json:"auto_connect"`
}
