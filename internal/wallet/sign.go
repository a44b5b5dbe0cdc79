package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignMessage signs message using EIP-191 (personal_sign).
// The message is prefixed with "\x19Ethereum Signed Message:\n<len>" before
// hashing. Returns a 65-byte signature (R || S || V) with V in {27, 28}.
func SignMessage(key *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	sig, err := crypto.Sign(eip191Hash(message), key)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}
	sig[64] += 27
	return sig, nil
}

// VerifyMessage recovers the signer address from an EIP-191 signature.
func VerifyMessage(message, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(sig))
	}
	if sig[64] != 27 && sig[64] != 28 {
		return common.Address{}, fmt.Errorf("invalid signature recovery id %d", sig[64])
	}

	recoverSig := make([]byte, 65)
	copy(recoverSig, sig)
	recoverSig[64] -= 27

	pubKey, err := crypto.SigToPub(eip191Hash(message), recoverSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

func eip191Hash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256([]byte(prefix), message)
}
