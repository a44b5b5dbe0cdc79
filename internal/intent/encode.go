package intent

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/Mohsinsiddi/w3vault/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// Step list errors.
var (
	ErrEmptySteps  = errors.New("plan has no steps")
	ErrInvalidStep = errors.New("step is not an integer between 0 and 255")
	errNotAddress  = errors.New("not a 0x-prefixed 20-byte address")
)

// Encoder maps action requests to calldata for one vault deployment.
// It holds no mutable state; Encode is a pure function of its input.
type Encoder struct {
	vault  common.Address
	tokens *token.Registry
}

// NewEncoder returns an encoder for the vault at vault, resolving tokens
// through tokens.
func NewEncoder(vault common.Address, tokens *token.Registry) *Encoder {
	return &Encoder{vault: vault, tokens: tokens}
}

// Vault returns the vault address calls are encoded against.
func (e *Encoder) Vault() common.Address { return e.vault }

type encodeFunc func(e *Encoder, req ActionRequest) ([]ContractCall, error)

var encoders = map[ActionKind]encodeFunc{
	Deposit:         encodeDeposit,
	Withdraw:        encodeWithdraw,
	Transfer:        encodeTransfer,
	AddVaultManager: encodeAddVaultManager,
	SetAllowance:    encodeSetAllowance,
	ExecutePlan:     encodeExecutePlan,
}

// Encode builds the intent for req. Errors are *EncodingError.
func (e *Encoder) Encode(req ActionRequest) (*Intent, error) {
	fn, ok := encoders[req.Kind]
	if !ok {
		return nil, &EncodingError{Kind: req.Kind, Field: "kind", Value: req.Kind.String(), Err: ErrUnknownAction}
	}
	calls, err := fn(e, req)
	if err != nil {
		return nil, err
	}
	return &Intent{Action: req.Kind, Calls: calls}, nil
}

func encodeDeposit(e *Encoder, req ActionRequest) ([]ContractCall, error) {
	tok, amount, err := e.tokenAmount(req)
	if err != nil {
		return nil, err
	}
	approve, err := pack(req.Kind, tok.Address, contract.ERC20, "approve", e.vault, amount)
	if err != nil {
		return nil, err
	}
	deposit, err := pack(req.Kind, e.vault, contract.Vault, "deposit", tok.Address, amount)
	if err != nil {
		return nil, err
	}
	return []ContractCall{approve, deposit}, nil
}

func encodeWithdraw(e *Encoder, req ActionRequest) ([]ContractCall, error) {
	tok, amount, err := e.tokenAmount(req)
	if err != nil {
		return nil, err
	}
	withdraw, err := pack(req.Kind, e.vault, contract.Vault, "withdraw", tok.Address, amount)
	if err != nil {
		return nil, err
	}
	return []ContractCall{withdraw}, nil
}

func encodeTransfer(e *Encoder, req ActionRequest) ([]ContractCall, error) {
	tok, amount, err := e.tokenAmount(req)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress(req.Kind, "target", req.Target)
	if err != nil {
		return nil, err
	}
	transfer, err := pack(req.Kind, tok.Address, contract.ERC20, "transfer", to, amount)
	if err != nil {
		return nil, err
	}
	return []ContractCall{transfer}, nil
}

// The manager form historically had a single input box bound to the amount
// field, so Amount is read when Target is empty.
func encodeAddVaultManager(e *Encoder, req ActionRequest) ([]ContractCall, error) {
	field, value := "target", req.Target
	if strings.TrimSpace(value) == "" {
		field, value = "amount", req.Amount
	}
	manager, err := parseAddress(req.Kind, field, value)
	if err != nil {
		return nil, err
	}
	call, err := pack(req.Kind, e.vault, contract.Vault, "addVaultManager", manager)
	if err != nil {
		return nil, err
	}
	return []ContractCall{call}, nil
}

// Allowance is an unscaled whole number; fractions are truncated.
func encodeSetAllowance(e *Encoder, req ActionRequest) ([]ContractCall, error) {
	allowed, err := token.WholeUnits(req.Amount)
	if err != nil {
		return nil, &EncodingError{Kind: req.Kind, Field: "amount", Value: req.Amount, Err: err}
	}
	call, err := pack(req.Kind, e.vault, contract.Vault, "setAllowance", allowed)
	if err != nil {
		return nil, err
	}
	return []ContractCall{call}, nil
}

func encodeExecutePlan(e *Encoder, req ActionRequest) ([]ContractCall, error) {
	investor, err := parseAddress(req.Kind, "investor", req.Investor)
	if err != nil {
		return nil, err
	}
	from, err := e.lookup(req.Kind, "token-from", req.TokenFrom)
	if err != nil {
		return nil, err
	}
	to, err := e.lookup(req.Kind, "token-to", req.TokenTo)
	if err != nil {
		return nil, err
	}
	amount, err := token.RawUnits(req.Amount)
	if err != nil {
		return nil, &EncodingError{Kind: req.Kind, Field: "amount", Value: req.Amount, Err: err}
	}
	steps, err := ParseSteps(req.Steps)
	if err != nil {
		return nil, &EncodingError{Kind: req.Kind, Field: "steps", Value: req.Steps, Err: err}
	}
	call, err := pack(req.Kind, e.vault, contract.Vault, "executeInvestmentPlan",
		investor, from.Address, to.Address, amount, steps)
	if err != nil {
		return nil, err
	}
	return []ContractCall{call}, nil
}

// ParseSteps parses a comma separated list of step codes, e.g. "1, 3,2".
func ParseSteps(s string) ([]uint8, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptySteps
	}
	parts := strings.Split(s, ",")
	steps := make([]uint8, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d is %q", ErrInvalidStep, i, p)
		}
		steps = append(steps, uint8(n))
	}
	return steps, nil
}

func (e *Encoder) tokenAmount(req ActionRequest) (token.Token, *big.Int, error) {
	tok, err := e.lookup(req.Kind, "token", req.Token)
	if err != nil {
		return token.Token{}, nil, err
	}
	amount, err := token.ToBaseUnits(req.Amount, tok.Decimals)
	if err != nil {
		return token.Token{}, nil, &EncodingError{Kind: req.Kind, Field: "amount", Value: req.Amount, Err: err}
	}
	return tok, amount, nil
}

func (e *Encoder) lookup(kind ActionKind, field, ref string) (token.Token, error) {
	tok, err := e.tokens.Lookup(ref)
	if err != nil {
		return token.Token{}, &EncodingError{Kind: kind, Field: field, Value: ref, Err: err}
	}
	return tok, nil
}

func parseAddress(kind ActionKind, field, value string) (common.Address, error) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "0x") && !strings.HasPrefix(v, "0X") || !common.IsHexAddress(v) {
		return common.Address{}, &EncodingError{Kind: kind, Field: field, Value: value, Err: errNotAddress}
	}
	return common.HexToAddress(v), nil
}

func pack(kind ActionKind, to common.Address, c contract.BuiltinKind, method string, args ...any) (ContractCall, error) {
	data, err := c.Pack(method, args...)
	if err != nil {
		return ContractCall{}, &EncodingError{Kind: kind, Field: method, Err: err}
	}
	return ContractCall{To: to, Data: data, Method: c.Signature(method)}, nil
}
