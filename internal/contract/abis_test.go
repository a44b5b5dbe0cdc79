package contract_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsRegistered(t *testing.T) {
	for _, id := range []string{"erc20", "vault", "simple-account", "account-factory", "entrypoint"} {
		b, ok := contract.GetBuiltin(id)
		require.True(t, ok, "builtin %s must be registered", id)
		assert.Equal(t, id, b.ID)
		assert.NotEmpty(t, b.Name)
		assert.NotEmpty(t, b.MethodNames())
	}
}

func TestGetBuiltinNotFound(t *testing.T) {
	_, ok := contract.GetBuiltin("this-id-does-not-exist-xyz")
	assert.False(t, ok)
}

func TestAllBuiltinsSorted(t *testing.T) {
	all := contract.AllBuiltins()
	require.GreaterOrEqual(t, len(all), 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestRegisterBuiltinPanicsOnBadJSON(t *testing.T) {
	assert.Panics(t, func() {
		contract.RegisterBuiltin("broken", "Broken", "", `[{"name":`)
	})
}

func TestMethodIDsMatchSelector(t *testing.T) {
	// The library's method IDs and our keccak selector must agree for every
	// built-in function.
	for _, b := range contract.AllBuiltins() {
		for _, name := range b.MethodNames() {
			m := b.ABI.Methods[name]
			assert.Equal(t, "0x"+hex.EncodeToString(m.ID), contract.Selector(m.Sig), "%s.%s", b.ID, name)
		}
	}
}

func TestSignatures(t *testing.T) {
	assert.Equal(t, "approve(address,uint256)", contract.ERC20.Signature("approve"))
	assert.Equal(t, "deposit(address,uint256)", contract.Vault.Signature("deposit"))
	assert.Equal(t, "executeInvestmentPlan(address,address,address,uint256,uint8[])", contract.Vault.Signature("executeInvestmentPlan"))
	assert.Equal(t, "executeBatch(address[],bytes[])", contract.SimpleAccount.Signature("executeBatch"))
	assert.Equal(t, "", contract.Vault.Signature("nope"))
}

func TestPackApprove(t *testing.T) {
	spender := common.HexToAddress("0xE621603D381a7bb04242Ea7a60268BD12333a005")
	data, err := contract.ERC20.Pack("approve", spender, big.NewInt(100))
	require.NoError(t, err)
	require.Len(t, data, 4+32+32)

	assert.Equal(t, "095ea7b3", hex.EncodeToString(data[:4]))
	assert.Equal(t, "000000000000000000000000e621603d381a7bb04242ea7a60268bd12333a005", hex.EncodeToString(data[4:36]))
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000064", hex.EncodeToString(data[36:]))
}

func TestPackUnknownMethod(t *testing.T) {
	_, err := contract.Vault.Pack("rugpull")
	assert.Error(t, err)
}

func TestPackWrongArgType(t *testing.T) {
	_, err := contract.Vault.Pack("setAllowance", "ten")
	assert.Error(t, err)
}

func TestUnpackBalanceOf(t *testing.T) {
	word := make([]byte, 32)
	word[31] = 0x2a
	out, err := contract.ERC20.Unpack("balanceOf", word)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, big.NewInt(42), out[0])
}
