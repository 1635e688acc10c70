package authenticity

import (
	"net"
	"net/url"
	"strings"

	"github.com/weisyn/connector/pkg/wallet"
)

type warnFunc func(format string, args ...any)

var (
	baselineFeatures = []wallet.FeatureID{wallet.FeatureConnect, wallet.FeatureDisconnect, wallet.FeatureEvents}
	signingFeatures  = []wallet.FeatureID{wallet.FeatureSignTransaction, wallet.FeatureSignAndSendTransaction, wallet.FeatureSignMessage}

	legacyBaseline = []string{"connect", "disconnect", "on"}
	legacySigning  = []string{"signTransaction", "signAndSendTransaction", "signMessage"}

	nameFields = []string{"name", "walletName", "providerName"}
	urlHints   = []string{"url", "website", "homepage", "link"}
)

// standardCompliance 基础能力占0.8，签名能力每项加0.1（最多0.2）；
// 只有旧式方法时整体减半
func (s *Scorer) standardCompliance(obj *wallet.Object, warn warnFunc) float64 {
	if features, ok := obj.Features(); ok {
		base := 0
		for _, id := range baselineFeatures {
			if features.Has(id) {
				base++
			} else {
				warn("missing feature %s", id)
			}
		}
		signing := 0
		for _, id := range signingFeatures {
			if features.Has(id) {
				signing++
			}
		}
		return clamp(0.8*float64(base)/float64(len(baselineFeatures)) + bonus(signing))
	}

	base := 0
	for _, name := range legacyBaseline {
		if _, ok := obj.Method(name); ok {
			base++
		}
	}
	signing := 0
	for _, name := range legacySigning {
		if _, ok := obj.Method(name); ok {
			signing++
		}
	}
	if base > 0 {
		warn("wallet exposes legacy methods only")
	}
	return clamp(0.5 * (0.8*float64(base)/float64(len(legacyBaseline)) + bonus(signing)))
}

func bonus(signing int) float64 {
	b := 0.1 * float64(signing)
	if b > 0.2 {
		return 0.2
	}
	return b
}

// methodIntegrity connect/disconnect 各占一半；带源码的方法做长度与外传关键字检查
func (s *Scorer) methodIntegrity(obj *wallet.Object, warn warnFunc) float64 {
	features, _ := obj.Features()
	required := []struct {
		feature wallet.FeatureID
		method  string
	}{
		{wallet.FeatureConnect, "connect"},
		{wallet.FeatureDisconnect, "disconnect"},
	}

	passed := 0
	for _, r := range required {
		if features.Has(r.feature) {
			passed++
			continue
		}
		m, ok := obj.Method(r.method)
		if !ok {
			warn("required method %s is missing", r.method)
			continue
		}
		if s.methodSuspicious(r.method, m, warn) {
			continue
		}
		passed++
	}
	score := float64(passed) / float64(len(required))

	// 其他方法同样不应包含外传逻辑
	for _, name := range obj.Methods() {
		if name == "connect" || name == "disconnect" {
			continue
		}
		m, _ := obj.Method(name)
		if s.methodSuspicious(name, m, warn) {
			score -= 0.25
		}
	}
	return clamp(score)
}

func (s *Scorer) methodSuspicious(name string, m *wallet.Method, warn warnFunc) bool {
	if m.Source == "" {
		return false
	}
	if len(m.Source) > s.cfg.MaxMethodSourceLength {
		warn("method %s is abnormally long (%d chars)", name, len(m.Source))
		return true
	}
	src := strings.ToLower(m.Source)
	for _, kw := range s.cfg.ExfilKeywords {
		if strings.Contains(src, kw) {
			warn("method %s contains suspicious call %q", name, kw)
			return true
		}
	}
	return false
}

// chainSupport 声明目标链族得1；声明了其他链得0；未声明得0.5
func (s *Scorer) chainSupport(obj *wallet.Object, warn warnFunc) float64 {
	chains, ok := obj.Strings("chains")
	if !ok || len(chains) == 0 {
		warn("wallet does not declare supported chains")
		return 0.5
	}
	for _, c := range chains {
		if strings.HasPrefix(c, s.cfg.ChainFamily) {
			return 1
		}
	}
	warn("wallet does not support %s chains", strings.TrimSuffix(s.cfg.ChainFamily, ":"))
	return 0
}

// maliciousPatterns 从1.0开始扣分，黑名单属性直接归零
func (s *Scorer) maliciousPatterns(obj *wallet.Object, warn warnFunc) float64 {
	keys := obj.Keys()
	for _, key := range keys {
		for _, blocked := range s.cfg.BlockedProperties {
			if strings.EqualFold(key, blocked) {
				warn("blocklisted property %s present", key)
				return 0
			}
		}
	}

	score := 1.0
	if flags := obj.IdentityFlags(); len(flags) > s.cfg.MaxIdentityFlags {
		warn("object claims %d wallet identities (%s)", len(flags), strings.Join(flags, ", "))
		score -= s.cfg.IdentityFlagPenalty
	}
	for _, key := range keys {
		if !isURLField(key) {
			continue
		}
		raw, ok := obj.String(key)
		if !ok || raw == "" {
			continue
		}
		if why := s.suspiciousURL(raw); why != "" {
			warn("suspicious URL in %s: %s", key, why)
			score -= s.cfg.SuspiciousURLPenalty
		}
	}
	if obj.PrototypeTampered() {
		warn("prototype chain has been tampered with")
		score -= s.cfg.PrototypePenalty
	}
	if n := obj.Len(); n > s.cfg.MaxOwnProperties {
		warn("object has %d own properties", n)
		score -= s.cfg.PropertyCountPenalty
	}
	return clamp(score)
}

func isURLField(key string) bool {
	lower := strings.ToLower(key)
	for _, hint := range urlHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// suspiciousURL 返回可疑原因，正常返回空字符串
func (s *Scorer) suspiciousURL(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "unparseable URL"
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "missing host"
	}
	if net.ParseIP(host) != nil {
		return "raw IP address"
	}
	for _, h := range s.cfg.ShortenerHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return "URL shortener"
		}
	}
	for _, tld := range s.cfg.FreeTLDs {
		if strings.HasSuffix(host, tld) {
			return "free top-level domain"
		}
	}
	if labels := strings.Split(host, "."); len(labels)-2 > s.cfg.MaxSubdomains {
		return "too many subdomains"
	}
	return ""
}

// identityConsistency 名称包含期望名得1；is<Name> 标志得0.8；
// 名称不符得0；没有任何身份信息得0.3
func (s *Scorer) identityConsistency(obj *wallet.Object, expectedName string, warn warnFunc) float64 {
	declared := ""
	for _, field := range nameFields {
		if v, ok := obj.String(field); ok && v != "" {
			declared = v
			break
		}
	}

	if expectedName == "" {
		if declared != "" {
			return 1
		}
		warn("wallet does not declare a name")
		return 0.3
	}

	if declared != "" && strings.Contains(strings.ToLower(declared), strings.ToLower(expectedName)) {
		return 1
	}
	if HasIdentityFlag(obj, expectedName) {
		return 0.8
	}
	if declared != "" {
		warn("declared name %q does not match expected %q", declared, expectedName)
		return 0
	}
	warn("wallet identity could not be confirmed")
	return 0.3
}

// HasIdentityFlag 是否带有 is<Name> 或 is<Name>Wallet 标志
func HasIdentityFlag(obj *wallet.Object, name string) bool {
	flag := IdentityFlag(name)
	if flag == "" {
		return false
	}
	return obj.Bool(flag) || obj.Bool(flag+"Wallet")
}

// IdentityFlag 期望名称对应的 is<Name> 标志名（去空白，首字母大写）
func IdentityFlag(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "")
	if name == "" {
		return ""
	}
	return "is" + strings.ToUpper(name[:1]) + name[1:]
}
