package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds the smart-account owner key and signs user-operation hashes.
type Signer struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewSigner loads the key of w from ks.
func NewSigner(w *Wallet, ks KeystoreBackend) (*Signer, error) {
	hexKey, err := ks.Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key for %q: %w", w.Name, err)
	}
	s, err := SignerFromHex(hexKey)
	if err != nil {
		return nil, err
	}
	if w.Address != "" && !strings.EqualFold(w.Address, s.addr.Hex()) {
		return nil, fmt.Errorf("stored key for %q does not match address %s", w.Name, w.Address)
	}
	return s, nil
}

// SignerFromHex parses a hex private key with or without 0x.
func SignerFromHex(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(stripHexPrefix(strings.TrimSpace(hexKey)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Signer{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the owner address.
func (s *Signer) Address() common.Address { return s.addr }

// SignMessage returns the EIP-191 signature of msg.
func (s *Signer) SignMessage(msg []byte) ([]byte, error) {
	return SignMessage(s.key, msg)
}
