package aa

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// PaymasterMode selects who pays for gas.
type PaymasterMode string

const (
	// PaymasterModeSponsored: the paymaster covers gas outright.
	PaymasterModeSponsored PaymasterMode = "SPONSORED"
	// PaymasterModeERC20: the account repays the paymaster in an ERC-20 token.
	PaymasterModeERC20 PaymasterMode = "ERC20"
)

// ParsePaymasterMode accepts the mode names case-insensitively.
func ParsePaymasterMode(s string) (PaymasterMode, error) {
	switch m := PaymasterMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymasterModeSponsored, PaymasterModeERC20:
		return m, nil
	}
	return "", fmt.Errorf("unknown paymaster mode %q", s)
}

// ErrNotSponsored is returned when the paymaster answers without
// paymasterAndData.
var ErrNotSponsored = errors.New("paymaster returned no paymasterAndData")

// Sponsorship is the paymaster's answer: the data to attach and, when the
// paymaster computed them, the gas limits it signed over.
type Sponsorship struct {
	PaymasterAndData     []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
}

// Apply attaches s to op. Gas limits the paymaster left out are kept.
func (s *Sponsorship) Apply(op *UserOperation) {
	op.PaymasterAndData = s.PaymasterAndData
	if s.CallGasLimit != nil {
		op.CallGasLimit = s.CallGasLimit
	}
	if s.VerificationGasLimit != nil {
		op.VerificationGasLimit = s.VerificationGasLimit
	}
	if s.PreVerificationGas != nil {
		op.PreVerificationGas = s.PreVerificationGas
	}
}

// PaymasterClient calls pm_sponsorUserOperation on a paymaster service.
type PaymasterClient struct {
	c        *rpc.Client
	feeToken common.Address
}

// NewPaymaster wraps an existing RPC client. feeToken is only sent in
// ERC20 mode and may be the zero address otherwise.
func NewPaymaster(c *rpc.Client, feeToken common.Address) *PaymasterClient {
	return &PaymasterClient{c: c, feeToken: feeToken}
}

// DialPaymaster connects to the paymaster service at url.
func DialPaymaster(ctx context.Context, url string, feeToken common.Address) (*PaymasterClient, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing paymaster: %w", err)
	}
	return NewPaymaster(c, feeToken), nil
}

func (p *PaymasterClient) Close() { p.c.Close() }

type sponsorContext struct {
	Mode               PaymasterMode `json:"mode"`
	CalculateGasLimits bool          `json:"calculateGasLimits"`
	TokenInfo          *tokenInfo    `json:"tokenInfo,omitempty"`
}

type tokenInfo struct {
	FeeTokenAddress common.Address `json:"feeTokenAddress"`
}

// Sponsor requests sponsorship for op in the given mode.
func (p *PaymasterClient) Sponsor(ctx context.Context, op *UserOperation, mode PaymasterMode) (*Sponsorship, error) {
	req := sponsorContext{Mode: mode, CalculateGasLimits: true}
	if mode == PaymasterModeERC20 {
		req.TokenInfo = &tokenInfo{FeeTokenAddress: p.feeToken}
	}
	var res struct {
		PaymasterAndData     hexutil.Bytes `json:"paymasterAndData"`
		CallGasLimit         *quantity     `json:"callGasLimit"`
		VerificationGasLimit *quantity     `json:"verificationGasLimit"`
		PreVerificationGas   *quantity     `json:"preVerificationGas"`
	}
	if err := p.c.CallContext(ctx, &res, "pm_sponsorUserOperation", op, req); err != nil {
		return nil, fmt.Errorf("pm_sponsorUserOperation: %w", err)
	}
	if len(res.PaymasterAndData) < common.AddressLength {
		return nil, ErrNotSponsored
	}
	return &Sponsorship{
		PaymasterAndData:     res.PaymasterAndData,
		CallGasLimit:         res.CallGasLimit.bigOrNil(),
		VerificationGasLimit: res.VerificationGasLimit.bigOrNil(),
		PreVerificationGas:   res.PreVerificationGas.bigOrNil(),
	}, nil
}

// ChainID asks the paymaster endpoint which chain it serves.
func (p *PaymasterClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := p.c.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return id.ToInt(), nil
}
