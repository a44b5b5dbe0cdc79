package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerFromHex(t *testing.T) {
	for _, in := range []string{testPrivKeyHex, "0x" + testPrivKeyHex, "  " + testPrivKeyHex + "\n"} {
		s, err := SignerFromHex(in)
		require.NoError(t, err)
		assert.Equal(t, testSignerAddr, s.Address().Hex())
	}

	_, err := SignerFromHex("not-a-key")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewSignerFromKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("owner", testPrivKeyHex)
	require.NoError(t, err)

	s, err := NewSigner(&Wallet{Name: "owner", Address: testSignerAddr, KeyRef: ref}, ks)
	require.NoError(t, err)

	sig, err := s.SignMessage([]byte("hash"))
	require.NoError(t, err)
	got, err := VerifyMessage([]byte("hash"), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), got)
}

func TestNewSignerAddressMismatch(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("owner", testPrivKeyHex)
	require.NoError(t, err)

	_, err = NewSigner(&Wallet{Name: "owner", Address: "0x0000000000000000000000000000000000000001", KeyRef: ref}, ks)
	assert.Error(t, err)
}

func TestNewSignerMissingKey(t *testing.T) {
	_, err := NewSigner(&Wallet{Name: "ghost", KeyRef: "w3vault.ghost"}, NewInMemoryKeystore())
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
