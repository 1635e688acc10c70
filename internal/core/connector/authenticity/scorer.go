// Package authenticity 提供钱包候选对象的启发式真实性评分
//
// 🔍 **真实性评分 (Authenticity Scoring)**
//
// 五项相互独立的子评分加权合成置信度：
//
//	标准合规   0.25  基础能力是否齐全，链相关签名能力加分
//	方法完整性 0.20  必需方法存在，源码不过长且不含外传关键字
//	链支持     0.15  声明目标链族；未声明（旧式钱包）给部分分
//	恶意模式   0.30  从1.0起扣分；命中黑名单属性直接归零
//	身份一致性 0.10  名称或 is<Name> 标志与期望名称一致
//
// authentic = 置信度 >= 阈值 且 恶意模式子评分 > 闸值。
// 纯函数，无 I/O；结果是风险提示，不是安全保证。
package authenticity

import (
	"fmt"
	"strings"

	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

// Candidate 批量评估的输入
type Candidate struct {
	Object       *wallet.Object
	ExpectedName string
}

// Scorer 真实性评分器
type Scorer struct {
	cfg Config
}

// New 创建评分器；零值字段回退到默认值
func New(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.MaliciousGate <= 0 {
		cfg.MaliciousGate = def.MaliciousGate
	}
	if cfg.ChainFamily == "" {
		cfg.ChainFamily = def.ChainFamily
	}
	if cfg.MaxIdentityFlags <= 0 {
		cfg.MaxIdentityFlags = def.MaxIdentityFlags
	}
	if cfg.MaxOwnProperties <= 0 {
		cfg.MaxOwnProperties = def.MaxOwnProperties
	}
	if cfg.MaxSubdomains <= 0 {
		cfg.MaxSubdomains = def.MaxSubdomains
	}
	if cfg.MaxMethodSourceLength <= 0 {
		cfg.MaxMethodSourceLength = def.MaxMethodSourceLength
	}
	if cfg.IdentityFlagPenalty <= 0 {
		cfg.IdentityFlagPenalty = def.IdentityFlagPenalty
	}
	if cfg.SuspiciousURLPenalty <= 0 {
		cfg.SuspiciousURLPenalty = def.SuspiciousURLPenalty
	}
	if cfg.PrototypePenalty <= 0 {
		cfg.PrototypePenalty = def.PrototypePenalty
	}
	if cfg.PropertyCountPenalty <= 0 {
		cfg.PropertyCountPenalty = def.PropertyCountPenalty
	}
	if cfg.BlockedProperties == nil {
		cfg.BlockedProperties = def.BlockedProperties
	}
	if cfg.ExfilKeywords == nil {
		cfg.ExfilKeywords = def.ExfilKeywords
	}
	if cfg.ShortenerHosts == nil {
		cfg.ShortenerHosts = def.ShortenerHosts
	}
	if cfg.FreeTLDs == nil {
		cfg.FreeTLDs = def.FreeTLDs
	}
	return &Scorer{cfg: cfg}
}

// Config 当前评分参数
func (s *Scorer) Config() Config { return s.cfg }

// Verify 评估候选对象
func (s *Scorer) Verify(candidate *wallet.Object, expectedName string) types.WalletVerificationResult {
	if candidate == nil {
		candidate = wallet.NewObject()
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	score := types.SecurityScore{
		StandardCompliance:  s.standardCompliance(candidate, warn),
		MethodIntegrity:     s.methodIntegrity(candidate, warn),
		ChainSupport:        s.chainSupport(candidate, warn),
		MaliciousPatterns:   s.maliciousPatterns(candidate, warn),
		IdentityConsistency: s.identityConsistency(candidate, expectedName, warn),
	}

	w := s.cfg.Weights
	confidence := clamp(score.StandardCompliance*w.StandardCompliance +
		score.MethodIntegrity*w.MethodIntegrity +
		score.ChainSupport*w.ChainSupport +
		score.MaliciousPatterns*w.MaliciousPatterns +
		score.IdentityConsistency*w.IdentityConsistency)

	authentic := confidence >= s.cfg.Threshold && score.MaliciousPatterns > s.cfg.MaliciousGate

	var reason string
	switch {
	case authentic:
		reason = "wallet passed authenticity checks"
	case score.MaliciousPatterns <= s.cfg.MaliciousGate:
		reason = "malicious patterns detected"
	default:
		reason = fmt.Sprintf("confidence %.2f below threshold %.2f", confidence, s.cfg.Threshold)
	}

	if warnings == nil {
		warnings = []string{}
	}
	return types.WalletVerificationResult{
		Authentic:     authentic,
		Confidence:    confidence,
		Reason:        reason,
		Warnings:      warnings,
		SecurityScore: score,
	}
}

// VerifyWallet 评估标准钱包
func (s *Scorer) VerifyWallet(w wallet.Wallet, expectedName string) types.WalletVerificationResult {
	return s.Verify(wallet.ObjectFromWallet(w), expectedName)
}

// VerifyBatch 批量评估，结果顺序与输入一致
func (s *Scorer) VerifyBatch(candidates []Candidate) []types.WalletVerificationResult {
	results := make([]types.WalletVerificationResult, len(candidates))
	for i, c := range candidates {
		results[i] = s.Verify(c.Object, c.ExpectedName)
	}
	return results
}

// IsMalicious 恶意模式子评分是否触及闸值
func (s *Scorer) IsMalicious(result types.WalletVerificationResult) bool {
	return result.SecurityScore.MaliciousPatterns <= s.cfg.MaliciousGate
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Report 生成可读的评估报告
func Report(result types.WalletVerificationResult) string {
	var b strings.Builder
	status := "NOT AUTHENTIC"
	if result.Authentic {
		status = "AUTHENTIC"
	}
	fmt.Fprintf(&b, "Wallet verification: %s (confidence %.0f%%)\n", status, result.Confidence*100)
	fmt.Fprintf(&b, "Reason: %s\n", result.Reason)
	b.WriteString("Security score:\n")
	fmt.Fprintf(&b, "  standard compliance:  %.2f\n", result.SecurityScore.StandardCompliance)
	fmt.Fprintf(&b, "  method integrity:     %.2f\n", result.SecurityScore.MethodIntegrity)
	fmt.Fprintf(&b, "  chain support:        %.2f\n", result.SecurityScore.ChainSupport)
	fmt.Fprintf(&b, "  malicious patterns:   %.2f\n", result.SecurityScore.MaliciousPatterns)
	fmt.Fprintf(&b, "  identity consistency: %.2f\n", result.SecurityScore.IdentityConsistency)
	if len(result.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}
