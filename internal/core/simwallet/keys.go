package simwallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"github.com/weisyn/connector/pkg/utils"
)

// hkdfSalt 账户派生盐
const hkdfSalt = "connector-simwallet"

// GenerateMnemonic 生成12词助记词
func GenerateMnemonic() (string, error) {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// Keyring 由助记词确定性派生的 ed25519 账户集合
type Keyring struct {
	mnemonic string
	seed     []byte
	keys     []ed25519.PrivateKey
}

// NewKeyring 从助记词创建密钥环
func NewKeyring(mnemonic string) (*Keyring, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	return &Keyring{
		mnemonic: mnemonic,
		seed:     bip39.NewSeed(mnemonic, ""),
	}, nil
}

// Mnemonic 助记词
func (k *Keyring) Mnemonic() string { return k.mnemonic }

// Derive 派生第 index 个账户私钥
func (k *Keyring) Derive(index int) (ed25519.PrivateKey, error) {
	reader := hkdf.New(sha256.New, k.seed, []byte(hkdfSalt), []byte(fmt.Sprintf("account/%d", index)))
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return nil, fmt.Errorf("derive account %d: %w", index, err)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// Ensure 确保至少派生 n 个账户
func (k *Keyring) Ensure(n int) error {
	for len(k.keys) < n {
		key, err := k.Derive(len(k.keys))
		if err != nil {
			return err
		}
		k.keys = append(k.keys, key)
	}
	return nil
}

// Len 已派生账户数
func (k *Keyring) Len() int { return len(k.keys) }

// Key 第 i 个私钥
func (k *Keyring) Key(i int) ed25519.PrivateKey { return k.keys[i] }

// Address 第 i 个账户的 base58 地址
func (k *Keyring) Address(i int) string {
	return utils.EncodePublicKey(k.keys[i].Public().(ed25519.PublicKey))
}

// Find 按地址查找私钥
func (k *Keyring) Find(address string) (ed25519.PrivateKey, bool) {
	for i := range k.keys {
		if k.Address(i) == address {
			return k.keys[i], true
		}
	}
	return nil, false
}
