package intent

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testVault   = common.HexToAddress("0xE621603D381a7bb04242Ea7a60268BD12333a005")
	testDAI     = common.HexToAddress("0x04B2A6E51272c82932ecaB31A5Ab5aC32AE168C3")
	testUSDT    = common.HexToAddress("0xAcDe43b9E5f72a4F554D4346e69e8e7AC8F352f0")
	testUSDC    = common.HexToAddress("0x19D66Abd20Fb2a0Fc046C139d5af1e97F09A695e")
	testManager = common.HexToAddress("0x204E7F44b9f6cB9784c865D14a4773d79BF605c4")
)

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	reg, err := token.NewRegistry(
		token.Token{Symbol: "DAI", Address: testDAI, Decimals: 18},
		token.Token{Symbol: "USDT", Address: testUSDT, Decimals: 6},
		token.Token{Symbol: "USDC", Address: testUSDC, Decimals: 6},
	)
	require.NoError(t, err)
	return NewEncoder(testVault, reg)
}

// word left-pads a hex value to one 32-byte ABI word.
func word(h string) string {
	h = strings.TrimPrefix(strings.ToLower(h), "0x")
	return strings.Repeat("0", 64-len(h)) + h
}

func addrWord(a common.Address) string { return word(a.Hex()) }

func calldata(selector string, words ...string) string {
	return selector + strings.Join(words, "")
}

func TestEveryActionHasEncoder(t *testing.T) {
	for _, k := range AllKinds {
		_, ok := encoders[k]
		assert.True(t, ok, "no encoder for %s", k)
	}
	assert.Len(t, encoders, len(AllKinds))
}

func TestEncodeDepositUsesTokenDecimals(t *testing.T) {
	enc := newTestEncoder(t)

	in, err := enc.Encode(ActionRequest{Kind: Deposit, Token: "usdt", Amount: "10"})
	require.NoError(t, err)
	require.Len(t, in.Calls, 2)
	assert.Equal(t, Deposit, in.Action)

	approve, deposit := in.Calls[0], in.Calls[1]
	assert.Equal(t, testUSDT, approve.To)
	assert.Equal(t, "approve(address,uint256)", approve.Method)
	assert.Equal(t, calldata("0x095ea7b3", addrWord(testVault), word("989680")), hexutil.Encode(approve.Data))

	assert.Equal(t, testVault, deposit.To)
	assert.Equal(t, "deposit(address,uint256)", deposit.Method)
	assert.Equal(t, calldata("0x47e7ef24", addrWord(testUSDT), word("989680")), hexutil.Encode(deposit.Data))
}

func TestEncodeDepositEighteenDecimals(t *testing.T) {
	in, err := newTestEncoder(t).Encode(ActionRequest{Kind: Deposit, Token: "DAI", Amount: "10"})
	require.NoError(t, err)
	assert.Equal(t, calldata("0x47e7ef24", addrWord(testDAI), word("8ac7230489e80000")), hexutil.Encode(in.Calls[1].Data))
}

func TestEncodeWithdraw(t *testing.T) {
	in, err := newTestEncoder(t).Encode(ActionRequest{Kind: Withdraw, Token: testUSDC.Hex(), Amount: "1.5"})
	require.NoError(t, err)
	require.Len(t, in.Calls, 1)
	assert.Equal(t, testVault, in.Calls[0].To)
	// 1.5 * 10^6 = 1500000 = 0x16e360
	assert.Equal(t, calldata("0xf3fef3a3", addrWord(testUSDC), word("16e360")), hexutil.Encode(in.Calls[0].Data))
}

func TestEncodeTransferCallsToken(t *testing.T) {
	in, err := newTestEncoder(t).Encode(ActionRequest{Kind: Transfer, Token: "DAI", Amount: "1", Target: testManager.Hex()})
	require.NoError(t, err)
	require.Len(t, in.Calls, 1)
	assert.Equal(t, testDAI, in.Calls[0].To)
	assert.Equal(t, "transfer(address,uint256)", in.Calls[0].Method)
	assert.Equal(t, calldata("0xa9059cbb", addrWord(testManager), word("de0b6b3a7640000")), hexutil.Encode(in.Calls[0].Data))
}

func TestEncodeTransferNeedsRecipient(t *testing.T) {
	_, err := newTestEncoder(t).Encode(ActionRequest{Kind: Transfer, Token: "DAI", Amount: "1"})
	var ee *EncodingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "target", ee.Field)
}

func TestEncodeAddVaultManager(t *testing.T) {
	want := calldata("0x5f80fcad", addrWord(testManager))
	enc := newTestEncoder(t)

	t.Run("target", func(t *testing.T) {
		in, err := enc.Encode(ActionRequest{Kind: AddVaultManager, Target: testManager.Hex()})
		require.NoError(t, err)
		assert.Equal(t, testVault, in.Calls[0].To)
		assert.Equal(t, want, hexutil.Encode(in.Calls[0].Data))
	})
	t.Run("amount fallback", func(t *testing.T) {
		in, err := enc.Encode(ActionRequest{Kind: AddVaultManager, Amount: " " + testManager.Hex() + " "})
		require.NoError(t, err)
		assert.Equal(t, want, hexutil.Encode(in.Calls[0].Data))
	})
	t.Run("numeric amount", func(t *testing.T) {
		_, err := enc.Encode(ActionRequest{Kind: AddVaultManager, Amount: "10"})
		var ee *EncodingError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, AddVaultManager, ee.Kind)
		assert.Equal(t, "amount", ee.Field)
		assert.Equal(t, "10", ee.Value)
	})
	t.Run("unprefixed hex", func(t *testing.T) {
		_, err := enc.Encode(ActionRequest{Kind: AddVaultManager, Target: strings.TrimPrefix(testManager.Hex(), "0x")})
		assert.Error(t, err)
	})
}

func TestEncodeSetAllowanceIsUnscaled(t *testing.T) {
	enc := newTestEncoder(t)
	tests := []struct {
		amount string
		want   string
	}{
		{"10", word("a")},
		{"10.7", word("a")},
		{"0.9", word("0")},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			in, err := enc.Encode(ActionRequest{Kind: SetAllowance, Amount: tt.amount})
			require.NoError(t, err)
			assert.Equal(t, calldata("0x3ba93f26", tt.want), hexutil.Encode(in.Calls[0].Data))
		})
	}

	_, err := enc.Encode(ActionRequest{Kind: SetAllowance, Amount: "ten"})
	assert.True(t, errors.Is(err, token.ErrInvalidAmount))

	_, err = enc.Encode(ActionRequest{Kind: SetAllowance, Amount: "1" + strings.Repeat("0", 80)})
	assert.ErrorIs(t, err, token.ErrOverflow)
	var ee *EncodingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "amount", ee.Field)
}

func TestEncodeExecutePlan(t *testing.T) {
	investor := common.HexToAddress("0x5555555555555555555555555555555555555555")
	in, err := newTestEncoder(t).Encode(ActionRequest{
		Kind:      ExecutePlan,
		Investor:  investor.Hex(),
		TokenFrom: "DAI",
		TokenTo:   "usdc",
		Amount:    "1000",
		Steps:     "1, 3,2",
	})
	require.NoError(t, err)
	require.Len(t, in.Calls, 1)
	assert.Equal(t, "executeInvestmentPlan(address,address,address,uint256,uint8[])", in.Calls[0].Method)
	want := calldata("0x8e9a710f",
		addrWord(investor), addrWord(testDAI), addrWord(testUSDC),
		word("3e8"), // raw, unscaled
		word("a0"),  // offset of steps
		word("3"), word("1"), word("3"), word("2"),
	)
	assert.Equal(t, want, hexutil.Encode(in.Calls[0].Data))
}

func TestEncodeExecutePlanErrors(t *testing.T) {
	base := ActionRequest{
		Kind:      ExecutePlan,
		Investor:  testManager.Hex(),
		TokenFrom: "DAI",
		TokenTo:   "USDT",
		Amount:    "5",
		Steps:     "1",
	}
	tests := []struct {
		name  string
		edit  func(*ActionRequest)
		field string
	}{
		{"non-integer step", func(r *ActionRequest) { r.Steps = "1,x,2" }, "steps"},
		{"empty steps", func(r *ActionRequest) { r.Steps = " " }, "steps"},
		{"empty element", func(r *ActionRequest) { r.Steps = "1,,2" }, "steps"},
		{"step too large", func(r *ActionRequest) { r.Steps = "256" }, "steps"},
		{"fractional amount", func(r *ActionRequest) { r.Amount = "1.5" }, "amount"},
		{"amount above uint256", func(r *ActionRequest) { r.Amount = "1" + strings.Repeat("0", 78) }, "amount"},
		{"unknown token", func(r *ActionRequest) { r.TokenTo = "WETH" }, "token-to"},
		{"bad investor", func(r *ActionRequest) { r.Investor = "bob" }, "investor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.edit(&req)
			_, err := newTestEncoder(t).Encode(req)
			var ee *EncodingError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.field, ee.Field)
		})
	}
}

func TestEncodeAmountErrors(t *testing.T) {
	enc := newTestEncoder(t)
	tests := []struct {
		amount string
		want   error
	}{
		{"", token.ErrEmptyAmount},
		{"abc", token.ErrInvalidAmount},
		{"-1", token.ErrNegativeAmount},
		{"1.0000001", token.ErrTooPrecise},
		{"1" + strings.Repeat("0", 72), token.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.amount), func(t *testing.T) {
			_, err := enc.Encode(ActionRequest{Kind: Deposit, Token: "USDT", Amount: tt.amount})
			assert.ErrorIs(t, err, tt.want)
			var ee *EncodingError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, "amount", ee.Field)
		})
	}

	for _, kind := range []ActionKind{Deposit, Withdraw} {
		_, err := enc.Encode(ActionRequest{Kind: kind, Token: "DAI", Amount: "1" + strings.Repeat("0", 70)})
		assert.ErrorIs(t, err, token.ErrOverflow, kind.String())
	}
	_, err := enc.Encode(ActionRequest{Kind: Transfer, Token: "DAI", Target: testManager.Hex(), Amount: "1" + strings.Repeat("0", 70)})
	assert.ErrorIs(t, err, token.ErrOverflow)
}

func TestEncodeUnknownToken(t *testing.T) {
	_, err := newTestEncoder(t).Encode(ActionRequest{Kind: Withdraw, Token: "WETH", Amount: "1"})
	assert.ErrorIs(t, err, token.ErrUnknownToken)
	assert.Contains(t, err.Error(), "withdraw")
}

func TestEncodeUnknownKind(t *testing.T) {
	_, err := newTestEncoder(t).Encode(ActionRequest{Kind: ActionKind(99), Amount: "1"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestEncodeIsDeterministic(t *testing.T) {
	enc := newTestEncoder(t)
	req := ActionRequest{Kind: Deposit, Token: "DAI", Amount: "12.345"}
	a, err := enc.Encode(req)
	require.NoError(t, err)
	b, err := enc.Encode(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseSteps(t *testing.T) {
	steps, err := ParseSteps("1, 3,2")
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 3, 2}, steps)

	steps, err = ParseSteps("0,255")
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255}, steps)

	_, err = ParseSteps("1,x,2")
	assert.ErrorIs(t, err, ErrInvalidStep)
	_, err = ParseSteps("-1")
	assert.ErrorIs(t, err, ErrInvalidStep)
	_, err = ParseSteps("")
	assert.ErrorIs(t, err, ErrEmptySteps)
}

func TestActionKindNames(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseActionKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseActionKind("stake")
	assert.Error(t, err)
	assert.Equal(t, "action(99)", ActionKind(99).String())
}
