// Package chain reads state from an EVM node: contract calls, code, chain
// id, fee suggestions and ERC-20 balances.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client is a read-only JSON-RPC client for one EVM chain.
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

// Dial connects to the node at url.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return NewClient(c), nil
}

// NewClient wraps an existing RPC connection.
func NewClient(c *rpc.Client) *Client {
	return &Client{rpc: c, eth: ethclient.NewClient(c)}
}

// Close releases the connection.
func (c *Client) Close() { c.rpc.Close() }

// CallContract runs an eth_call against the latest block.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: %w", to.Hex(), err)
	}
	return out, nil
}

// CodeAt returns the deployed bytecode at addr, empty for an EOA or an
// undeployed account.
func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	code, err := c.eth.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getCode %s: %w", addr.Hex(), err)
	}
	return code, nil
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return id, nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	return n, nil
}

// SuggestFees returns EIP-1559 fee caps: the node's priority fee and twice
// the latest base fee on top of it. Chains without a base fee get the legacy
// gas price for both values.
func (c *Client) SuggestFees(ctx context.Context) (maxFee, maxPriorityFee *big.Int, err error) {
	baseFee, err := c.baseFee(ctx)
	if err != nil {
		return nil, nil, err
	}
	if baseFee == nil {
		gp, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("eth_gasPrice: %w", err)
		}
		return gp, new(big.Int).Set(gp), nil
	}
	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("eth_maxPriorityFeePerGas: %w", err)
	}
	maxFee = new(big.Int).Mul(baseFee, big.NewInt(2))
	maxFee.Add(maxFee, tip)
	return maxFee, tip, nil
}

// baseFee reads baseFeePerGas of the latest block, nil on pre-London chains.
func (c *Client) baseFee(ctx context.Context) (*big.Int, error) {
	var head struct {
		BaseFeePerGas *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := c.rpc.CallContext(ctx, &head, "eth_getBlockByNumber", "latest", false); err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber: %w", err)
	}
	return head.BaseFeePerGas.ToInt(), nil
}

// TokenBalance returns balanceOf(holder) on an ERC-20 token in base units.
func (c *Client) TokenBalance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	data, err := contract.ERC20.Pack("balanceOf", holder)
	if err != nil {
		return nil, err
	}
	out, err := c.CallContract(ctx, token, data)
	if err != nil {
		return nil, err
	}
	vals, err := contract.ERC20.Unpack("balanceOf", out)
	if err != nil {
		return nil, err
	}
	bal, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T", vals[0])
	}
	return bal, nil
}

// TokenDecimals reads decimals() from an ERC-20 token.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := contract.ERC20.Pack("decimals")
	if err != nil {
		return 0, err
	}
	out, err := c.CallContract(ctx, token, data)
	if err != nil {
		return 0, err
	}
	vals, err := contract.ERC20.Unpack("decimals", out)
	if err != nil {
		return 0, err
	}
	dec, ok := vals[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals returned %T", vals[0])
	}
	return dec, nil
}

// Ping measures the round-trip time of eth_blockNumber.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, block uint64, err error) {
	start := time.Now()
	block, err = c.BlockNumber(ctx)
	return time.Since(start), block, err
}
