package wallet

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressFromPrivateKey derives the address of the given ECDSA private key.
// It returns nil if the key is nil or its public part cannot be asserted to
// *ecdsa.PublicKey.
func AddressFromPrivateKey(privateKeyECDSA *ecdsa.PrivateKey) *common.Address {
	if privateKeyECDSA == nil {
		return nil
	}
	publicKey := privateKeyECDSA.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil
	}
	addr := crypto.PubkeyToAddress(*publicKeyECDSA)
	return &addr
}

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key, with or
// without 0x prefix, into an Account. Used when a raw key is supplied
// instead of a phrase.
func ParsePrivateKeyECDSA(privateKey string) (*Account, error) {
	privateKeyECDSA, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, err
	}

	addr := AddressFromPrivateKey(privateKeyECDSA)
	if addr == nil {
		return nil, errors.New("failed to get public key")
	}
	return &Account{Address: *addr, PrivateKey: privateKeyECDSA}, nil
}
