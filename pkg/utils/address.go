// Package utils 提供连接器通用工具函数
package utils

import (
	"github.com/mr-tron/base58"
)

// PublicKeyLength ed25519 公钥字节长度
const PublicKeyLength = 32

// IsPlausibleAddress 判断地址在语法上是否合理：base58 编码且解码为32字节公钥
//
// 只做格式检查，不验证地址是否在链上存在。
func IsPlausibleAddress(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	decoded, err := base58.Decode(address)
	if err != nil {
		return false
	}
	return len(decoded) == PublicKeyLength
}

// EncodePublicKey 将公钥编码为 base58 地址，长度不符返回空字符串
func EncodePublicKey(publicKey []byte) string {
	if len(publicKey) != PublicKeyLength {
		return ""
	}
	return base58.Encode(publicKey)
}

// DecodeAddress 将 base58 地址解码为公钥
func DecodeAddress(address string) ([]byte, bool) {
	if !IsPlausibleAddress(address) {
		return nil, false
	}
	decoded, _ := base58.Decode(address)
	return decoded, true
}

// SignatureLength ed25519 签名字节长度
const SignatureLength = 64

// IsPlausibleSignature 判断交易签名是否为 base58 编码的64字节
func IsPlausibleSignature(signature string) bool {
	if len(signature) < 64 || len(signature) > 88 {
		return false
	}
	decoded, err := base58.Decode(signature)
	if err != nil {
		return false
	}
	return len(decoded) == SignatureLength
}

// EncodeSignature 将签名编码为 base58，长度不符返回空字符串
func EncodeSignature(signature []byte) string {
	if len(signature) != SignatureLength {
		return ""
	}
	return base58.Encode(signature)
}

// DecodeSignature 将 base58 签名解码为字节
func DecodeSignature(signature string) ([]byte, bool) {
	if !IsPlausibleSignature(signature) {
		return nil, false
	}
	decoded, _ := base58.Decode(signature)
	return decoded, true
}

// ShortAddress 地址缩写为 前4…后4，用于展示
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:4] + "…" + address[len(address)-4:]
}
