package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignMessageRoundTrip(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivKeyHex)
	require.NoError(t, err)

	for _, msg := range [][]byte{[]byte("hello vault"), {}, crypto.Keccak256([]byte("op"))} {
		sig, err := SignMessage(key, msg)
		require.NoError(t, err)
		require.Len(t, sig, 65)
		assert.Contains(t, []byte{27, 28}, sig[64])

		got, err := VerifyMessage(msg, sig)
		require.NoError(t, err)
		assert.Equal(t, testSignerAddr, got.Hex())
	}
}

func TestEIP191HashMatchesTextHash(t *testing.T) {
	msg := crypto.Keccak256([]byte("user operation"))
	assert.Equal(t, accounts.TextHash(msg), eip191Hash(msg))
}

func TestVerifyMessageRejectsMalformed(t *testing.T) {
	_, err := VerifyMessage([]byte("x"), make([]byte, 64))
	assert.Error(t, err)

	sig := make([]byte, 65)
	sig[64] = 1
	_, err = VerifyMessage([]byte("x"), sig)
	assert.Error(t, err)
}

func TestVerifyMessageDetectsTampering(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivKeyHex)
	require.NoError(t, err)
	sig, err := SignMessage(key, []byte("deposit 10"))
	require.NoError(t, err)

	got, err := VerifyMessage([]byte("deposit 11"), sig)
	if err == nil {
		assert.NotEqual(t, testSignerAddr, got.Hex())
	}
}
