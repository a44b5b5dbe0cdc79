package aa

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrReceiptTimeout is returned by WaitForReceipt when the operation is not
// included within the configured timeout.
var ErrReceiptTimeout = errors.New("timed out waiting for user operation receipt")

const (
	defaultPollInterval   = 2 * time.Second
	defaultReceiptTimeout = 2 * time.Minute
)

// GasEstimate is the result of eth_estimateUserOperationGas.
type GasEstimate struct {
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
}

// Bundler is a client for the ERC-4337 bundler JSON-RPC namespace.
type Bundler struct {
	c          *rpc.Client
	entryPoint common.Address
	poll       time.Duration
	timeout    time.Duration
}

// BundlerOption configures a Bundler.
type BundlerOption func(*Bundler)

// WithPollInterval sets how often WaitForReceipt asks for the receipt.
func WithPollInterval(d time.Duration) BundlerOption {
	return func(b *Bundler) {
		if d > 0 {
			b.poll = d
		}
	}
}

// WithReceiptTimeout bounds WaitForReceipt. Zero disables the bound; the
// caller's context still applies.
func WithReceiptTimeout(d time.Duration) BundlerOption {
	return func(b *Bundler) { b.timeout = d }
}

// NewBundler wraps an existing RPC client.
func NewBundler(c *rpc.Client, entryPoint common.Address, opts ...BundlerOption) *Bundler {
	b := &Bundler{c: c, entryPoint: entryPoint, poll: defaultPollInterval, timeout: defaultReceiptTimeout}
	for _, o := range opts {
		o(b)
	}
	return b
}

// DialBundler connects to the bundler at url.
func DialBundler(ctx context.Context, url string, entryPoint common.Address, opts ...BundlerOption) (*Bundler, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing bundler: %w", err)
	}
	return NewBundler(c, entryPoint, opts...), nil
}

// EntryPoint returns the EntryPoint operations are sent to.
func (b *Bundler) EntryPoint() common.Address { return b.entryPoint }

// Close releases the underlying connection.
func (b *Bundler) Close() { b.c.Close() }

// SupportedEntryPoints lists the EntryPoints the bundler accepts.
func (b *Bundler) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := b.c.CallContext(ctx, &out, "eth_supportedEntryPoints"); err != nil {
		return nil, fmt.Errorf("eth_supportedEntryPoints: %w", err)
	}
	return out, nil
}

// EstimateGas asks the bundler for gas limits. op must carry a signature of
// the right length; a dummy one is enough.
func (b *Bundler) EstimateGas(ctx context.Context, op *UserOperation) (*GasEstimate, error) {
	var res struct {
		CallGasLimit         *quantity `json:"callGasLimit"`
		VerificationGasLimit *quantity `json:"verificationGasLimit"`
		PreVerificationGas   *quantity `json:"preVerificationGas"`
	}
	if err := b.c.CallContext(ctx, &res, "eth_estimateUserOperationGas", op, b.entryPoint); err != nil {
		return nil, fmt.Errorf("eth_estimateUserOperationGas: %w", err)
	}
	return &GasEstimate{
		CallGasLimit:         res.CallGasLimit.bigOrNil(),
		VerificationGasLimit: res.VerificationGasLimit.bigOrNil(),
		PreVerificationGas:   res.PreVerificationGas.bigOrNil(),
	}, nil
}

// Send submits a signed operation and returns the hash the bundler assigned.
func (b *Bundler) Send(ctx context.Context, op *UserOperation) (common.Hash, error) {
	var hash common.Hash
	if err := b.c.CallContext(ctx, &hash, "eth_sendUserOperation", op, b.entryPoint); err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendUserOperation: %w", err)
	}
	return hash, nil
}

// Receipt returns the receipt of hash, or nil while it is still pending.
func (b *Bundler) Receipt(ctx context.Context, hash common.Hash) (*UserOpReceipt, error) {
	var r *UserOpReceipt
	if err := b.c.CallContext(ctx, &r, "eth_getUserOperationReceipt", hash); err != nil {
		return nil, fmt.Errorf("eth_getUserOperationReceipt: %w", err)
	}
	return r, nil
}

// WaitForReceipt polls until hash is included, the receipt timeout elapses
// or ctx is done.
func (b *Bundler) WaitForReceipt(ctx context.Context, hash common.Hash) (*UserOpReceipt, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, b.timeout, ErrReceiptTimeout)
		defer cancel()
	}
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	for {
		r, err := b.Receipt(ctx, hash)
		if err != nil && ctx.Err() == nil {
			return nil, err
		}
		if r != nil {
			return r, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("user operation %s: %w", hash.Hex(), context.Cause(ctx))
		case <-ticker.C:
		}
	}
}
