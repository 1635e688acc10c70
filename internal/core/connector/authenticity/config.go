package authenticity

// Weights 五项子评分权重，总和应为1
type Weights struct {
	StandardCompliance  float64
	MethodIntegrity     float64
	ChainSupport        float64
	MaliciousPatterns   float64
	IdentityConsistency float64
}

// Config 评分参数
//
// 阈值与权重是可调的经验默认值，不代表经过验证的安全保证。
type Config struct {
	Weights Weights

	// Threshold 加权置信度下限
	Threshold float64

	// MaliciousGate 恶意模式子评分必须严格高于该值，独立于加权平均
	MaliciousGate float64

	// ChainFamily 目标链族前缀
	ChainFamily string

	MaxIdentityFlags      int // 超过即视为冒充嫌疑
	MaxOwnProperties      int // 超过即视为异常臃肿的对象
	MaxSubdomains         int // URL 子域名层数上限
	MaxMethodSourceLength int // 方法源码长度上限

	// 扣分
	IdentityFlagPenalty  float64
	SuspiciousURLPenalty float64
	PrototypePenalty     float64
	PropertyCountPenalty float64

	BlockedProperties []string // 出现即恶意模式子评分归零
	ExfilKeywords     []string // 方法源码中的外传关键字
	ShortenerHosts    []string
	FreeTLDs          []string
}

// DefaultConfig 默认评分参数
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			StandardCompliance:  0.25,
			MethodIntegrity:     0.20,
			ChainSupport:        0.15,
			MaliciousPatterns:   0.30,
			IdentityConsistency: 0.10,
		},
		Threshold:     0.6,
		MaliciousGate: 0.5,
		ChainFamily:   "solana:",

		MaxIdentityFlags:      2,
		MaxOwnProperties:      100,
		MaxSubdomains:         4,
		MaxMethodSourceLength: 10000,

		IdentityFlagPenalty:  0.3,
		SuspiciousURLPenalty: 0.2,
		PrototypePenalty:     0.3,
		PropertyCountPenalty: 0.2,

		BlockedProperties: []string{
			"drainWallet", "stealKeys", "exportPrivateKey", "sendAllFunds",
			"__phishing", "seedPhrase", "mnemonicCapture", "keylogger",
		},
		ExfilKeywords: []string{
			"fetch(", "xmlhttprequest", "sendbeacon", "new websocket", "eval(",
			"document.cookie", "localstorage.getitem", "atob(",
		},
		ShortenerHosts: []string{
			"bit.ly", "tinyurl.com", "t.co", "goo.gl", "is.gd", "ow.ly", "buff.ly", "cutt.ly", "rebrand.ly",
		},
		FreeTLDs: []string{".tk", ".ml", ".ga", ".cf", ".gq"},
	}
}
