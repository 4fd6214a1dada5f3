// Package wallet derives the deploying account from the secret phrase
// referenced by a network profile.
package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/singnet/hmy-deploy-go/pkg/config"
	"go.uber.org/zap"
)

const (
	// HarmonyCoinType is the SLIP-44 coin type registered for Harmony ONE.
	HarmonyCoinType = 1023
	// EthereumCoinType is the SLIP-44 coin type of Ether.
	EthereumCoinType = 60

	// HarmonyBech32Prefix is the human readable part of Harmony addresses.
	HarmonyBech32Prefix = "one"
)

var (
	// ErrInvalidMnemonic is returned for phrases that fail BIP-39 validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrUnsupportedIndex is returned for any account index other than 0.
	// Harmony wallets are the 0-th account of the phrase.
	ErrUnsupportedIndex = errors.New("only account index 0 is supported")
)

// Account is a derived signing account.
type Account struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

// Bech32 returns the Harmony "one1..." form of the address.
func (a *Account) Bech32() (string, error) {
	return bech32.ConvertAndEncode(HarmonyBech32Prefix, a.Address.Bytes())
}

// String returns the hex address; the key is never printed.
func (a *Account) String() string {
	return a.Address.Hex()
}

// HDPath returns the BIP-44 path of the given account for the chain type:
// m/44'/1023'/0'/0/<index> for Harmony, m/44'/60'/0'/0/<index> otherwise.
func HDPath(chain config.ChainType, index uint32) string {
	coin := EthereumCoinType
	if chain == config.ChainTypeHarmony {
		coin = HarmonyCoinType
	}
	return fmt.Sprintf("m/44'/%d'/0'/0/%d", coin, index)
}

// Derive derives the account at index from a BIP-39 phrase.
func Derive(mnemonic string, chain config.ChainType, index uint32) (*Account, error) {
	if index != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedIndex, index)
	}

	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, "")
	master, chainCode := hd.ComputeMastersFromSeed(seed)

	derived, err := hd.DerivePrivateKeyForPath(master, chainCode, HDPath(chain, index))
	if err != nil {
		return nil, fmt.Errorf("failed to derive private key: %w", err)
	}

	key, err := crypto.ToECDSA(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to convert derived key: %w", err)
	}

	addr := AddressFromPrivateKey(key)
	if addr == nil {
		return nil, errors.New("failed to get public key")
	}
	return &Account{Address: *addr, PrivateKey: key}, nil
}

// FromProfile resolves the profile's secret reference and derives the
// configured account. The phrase is dropped once the key is derived.
// A secret holding a single hex private key is used as is.
func FromProfile(profile config.NetworkProfile, lookup config.LookupFunc) (*Account, error) {
	if err := profile.Wallet.Validate(); err != nil {
		return nil, err
	}
	phrase, err := profile.Wallet.Secret.Resolve(lookup)
	if err != nil {
		return nil, err
	}
	var account *Account
	if isPrivateKeyHex(phrase) {
		account, err = ParsePrivateKeyECDSA(phrase)
	} else {
		account, err = Derive(phrase, profile.Chain.Type, profile.Wallet.Index)
	}
	if err != nil {
		zap.L().Error("failed to derive account", zap.String("secret", profile.Wallet.Secret.String()), zap.Error(err))
		return nil, err
	}
	zap.L().Debug("signer derived", zap.String("addr", account.Address.Hex()))
	return account, nil
}

func isPrivateKeyHex(s string) bool {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
