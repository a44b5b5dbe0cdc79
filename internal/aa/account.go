package aa

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// dummySignature has the length and shape of a real ECDSA signature so that
// SimpleAccount validation runs to completion during gas estimation.
var dummySignature = hexutil.MustDecode("0xfffffffffffffffffffffffffffffff0000000000000000000000000000000007aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1c")

// ErrNoCalls is returned by BuildOperation for an empty call list.
var ErrNoCalls = errors.New("no calls to execute")

// ChainReader is the node access the account needs.
type ChainReader interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SuggestFees(ctx context.Context) (maxFee, maxPriorityFee *big.Int, err error)
}

// OwnerSigner signs with the smart account's owner key.
type OwnerSigner interface {
	Address() common.Address
	// SignMessage returns an EIP-191 personal_sign signature with V in {27,28}.
	SignMessage(msg []byte) ([]byte, error)
}

// Pending is a submitted operation that has not settled yet.
type Pending interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*UserOpReceipt, error)
}

// AccountConfig locates the account factory and EntryPoint.
type AccountConfig struct {
	EntryPoint common.Address
	Factory    common.Address
	Salt       *big.Int
	// ChainID skips the eth_chainId lookup when non-nil.
	ChainID *big.Int
	// SkipEstimate leaves gas limits to the paymaster.
	SkipEstimate bool
}

// SimpleAccount is an eth-infinitism SimpleAccount owned by one key and
// deployed on first use through its factory.
type SimpleAccount struct {
	chain   ChainReader
	bundler *Bundler
	owner   OwnerSigner
	cfg     AccountConfig

	mu      sync.Mutex
	addr    common.Address
	chainID *big.Int
}

// NewSimpleAccount returns an account for owner. The counterfactual address
// is resolved lazily.
func NewSimpleAccount(chain ChainReader, bundler *Bundler, owner OwnerSigner, cfg AccountConfig) *SimpleAccount {
	if cfg.Salt == nil {
		cfg.Salt = new(big.Int)
	}
	if cfg.EntryPoint == (common.Address{}) {
		cfg.EntryPoint = DefaultEntryPoint
	}
	return &SimpleAccount{chain: chain, bundler: bundler, owner: owner, cfg: cfg, chainID: cfg.ChainID}
}

// Owner returns the owner key's address.
func (a *SimpleAccount) Owner() common.Address { return a.owner.Address() }

// Address returns the account address from the factory's getAddress.
// The result is cached for the lifetime of a.
func (a *SimpleAccount) Address(ctx context.Context) (common.Address, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.addr != (common.Address{}) {
		return a.addr, nil
	}
	data, err := contract.AccountFactory.Pack("getAddress", a.owner.Address(), a.cfg.Salt)
	if err != nil {
		return common.Address{}, err
	}
	out, err := a.chain.CallContract(ctx, a.cfg.Factory, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("resolving account address: %w", err)
	}
	vals, err := contract.AccountFactory.Unpack("getAddress", out)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := vals[0].(common.Address)
	if !ok || addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("factory %s returned no account address", a.cfg.Factory.Hex())
	}
	a.addr = addr
	return addr, nil
}

// Deployed reports whether the account has code on chain.
func (a *SimpleAccount) Deployed(ctx context.Context) (bool, error) {
	addr, err := a.Address(ctx)
	if err != nil {
		return false, err
	}
	code, err := a.chain.CodeAt(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("reading account code: %w", err)
	}
	return len(code) > 0, nil
}

// Nonce reads the account's next nonce for key 0 from the EntryPoint.
func (a *SimpleAccount) Nonce(ctx context.Context) (*big.Int, error) {
	addr, err := a.Address(ctx)
	if err != nil {
		return nil, err
	}
	data, err := contract.EntryPoint.Pack("getNonce", addr, new(big.Int))
	if err != nil {
		return nil, err
	}
	out, err := a.chain.CallContract(ctx, a.cfg.EntryPoint, data)
	if err != nil {
		return nil, fmt.Errorf("reading nonce: %w", err)
	}
	vals, err := contract.EntryPoint.Unpack("getNonce", out)
	if err != nil {
		return nil, err
	}
	nonce, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getNonce returned %T", vals[0])
	}
	return nonce, nil
}

// BuildOperation assembles an unsigned operation executing calls in order.
// The signature field holds a placeholder until SubmitOperation signs it.
func (a *SimpleAccount) BuildOperation(ctx context.Context, calls []Call) (*UserOperation, error) {
	callData, err := executeCallData(calls)
	if err != nil {
		return nil, err
	}
	sender, err := a.Address(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := a.Nonce(ctx)
	if err != nil {
		return nil, err
	}
	initCode, err := a.initCode(ctx)
	if err != nil {
		return nil, err
	}
	maxFee, maxPriority, err := a.chain.SuggestFees(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggesting fees: %w", err)
	}
	op := &UserOperation{
		Sender:               sender,
		Nonce:                nonce,
		InitCode:             initCode,
		CallData:             callData,
		CallGasLimit:         new(big.Int),
		VerificationGasLimit: new(big.Int),
		PreVerificationGas:   new(big.Int),
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: maxPriority,
		Signature:            dummySignature,
	}
	if a.cfg.SkipEstimate {
		return op, nil
	}
	est, err := a.bundler.EstimateGas(ctx, op)
	if err != nil {
		return nil, err
	}
	setIfPresent(&op.CallGasLimit, est.CallGasLimit)
	setIfPresent(&op.VerificationGasLimit, est.VerificationGasLimit)
	setIfPresent(&op.PreVerificationGas, est.PreVerificationGas)
	return op, nil
}

// SubmitOperation signs op with the owner key and sends it to the bundler.
func (a *SimpleAccount) SubmitOperation(ctx context.Context, op *UserOperation) (Pending, error) {
	chainID, err := a.chainIDOf(ctx)
	if err != nil {
		return nil, err
	}
	hash, err := op.Hash(a.cfg.EntryPoint, chainID)
	if err != nil {
		return nil, err
	}
	sig, err := a.owner.SignMessage(hash.Bytes())
	if err != nil {
		return nil, fmt.Errorf("signing user operation: %w", err)
	}
	op.Signature = sig
	sent, err := a.bundler.Send(ctx, op)
	if err != nil {
		return nil, err
	}
	return &pendingOp{hash: sent, bundler: a.bundler}, nil
}

func (a *SimpleAccount) chainIDOf(ctx context.Context) (*big.Int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.chainID != nil {
		return a.chainID, nil
	}
	id, err := a.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id: %w", err)
	}
	a.chainID = id
	return id, nil
}

func (a *SimpleAccount) initCode(ctx context.Context) ([]byte, error) {
	deployed, err := a.Deployed(ctx)
	if err != nil || deployed {
		return nil, err
	}
	create, err := contract.AccountFactory.Pack("createAccount", a.owner.Address(), a.cfg.Salt)
	if err != nil {
		return nil, err
	}
	return append(a.cfg.Factory.Bytes(), create...), nil
}

// executeCallData wraps one call in execute and several in executeBatch.
// executeBatch carries no value, so batched calls must not send ether.
func executeCallData(calls []Call) ([]byte, error) {
	switch len(calls) {
	case 0:
		return nil, ErrNoCalls
	case 1:
		c := calls[0]
		return contract.SimpleAccount.Pack("execute", c.To, zeroIfNil(c.Value), nonNil(c.Data))
	}
	dest := make([]common.Address, len(calls))
	data := make([][]byte, len(calls))
	for i, c := range calls {
		if c.Value != nil && c.Value.Sign() != 0 {
			return nil, fmt.Errorf("call %d sends value; batched calls cannot", i)
		}
		dest[i] = c.To
		data[i] = nonNil(c.Data)
	}
	return contract.SimpleAccount.Pack("executeBatch", dest, data)
}

func setIfPresent(dst **big.Int, v *big.Int) {
	if v != nil {
		*dst = v
	}
}

type pendingOp struct {
	hash    common.Hash
	bundler *Bundler
}

func (p *pendingOp) Hash() common.Hash { return p.hash }

func (p *pendingOp) Wait(ctx context.Context) (*UserOpReceipt, error) {
	return p.bundler.WaitForReceipt(ctx, p.hash)
}
