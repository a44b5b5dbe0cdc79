// Package aa talks to the ERC-4337 side of the stack: user operations, the
// bundler, the sponsoring paymaster and the SimpleAccount smart account.
package aa

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultEntryPoint is the canonical EntryPoint v0.6 deployment.
var DefaultEntryPoint = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")

// Call is one call the smart account makes on the owner's behalf.
type Call struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// UserOperation is an EntryPoint v0.6 user operation.
type UserOperation struct {
	Sender               common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte
	Signature            []byte
}

// PaymasterAddress returns the first 20 bytes of PaymasterAndData, or the
// zero address when no paymaster is attached.
func (op *UserOperation) PaymasterAddress() common.Address {
	if len(op.PaymasterAndData) < common.AddressLength {
		return common.Address{}
	}
	return common.BytesToAddress(op.PaymasterAndData[:common.AddressLength])
}

// HasPaymaster reports whether a paymaster is attached.
func (op *UserOperation) HasPaymaster() bool {
	return op.PaymasterAddress() != (common.Address{})
}

type userOpJSON struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

// MarshalJSON encodes op the way bundlers expect: every quantity and byte
// string as 0x hex, empty byte strings as "0x".
func (op UserOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(userOpJSON{
		Sender:               op.Sender,
		Nonce:                hexBig(op.Nonce),
		InitCode:             nonNil(op.InitCode),
		CallData:             nonNil(op.CallData),
		CallGasLimit:         hexBig(op.CallGasLimit),
		VerificationGasLimit: hexBig(op.VerificationGasLimit),
		PreVerificationGas:   hexBig(op.PreVerificationGas),
		MaxFeePerGas:         hexBig(op.MaxFeePerGas),
		MaxPriorityFeePerGas: hexBig(op.MaxPriorityFeePerGas),
		PaymasterAndData:     nonNil(op.PaymasterAndData),
		Signature:            nonNil(op.Signature),
	})
}

func (op *UserOperation) UnmarshalJSON(b []byte) error {
	var w userOpJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*op = UserOperation{
		Sender:               w.Sender,
		Nonce:                w.Nonce.ToInt(),
		InitCode:             w.InitCode,
		CallData:             w.CallData,
		CallGasLimit:         w.CallGasLimit.ToInt(),
		VerificationGasLimit: w.VerificationGasLimit.ToInt(),
		PreVerificationGas:   w.PreVerificationGas.ToInt(),
		MaxFeePerGas:         w.MaxFeePerGas.ToInt(),
		MaxPriorityFeePerGas: w.MaxPriorityFeePerGas.ToInt(),
		PaymasterAndData:     w.PaymasterAndData,
		Signature:            w.Signature,
	}
	return nil
}

var (
	addressT, _ = abi.NewType("address", "", nil)
	uint256T, _ = abi.NewType("uint256", "", nil)
	bytes32T, _ = abi.NewType("bytes32", "", nil)

	packedOpArgs = abi.Arguments{
		{Type: addressT}, {Type: uint256T}, {Type: bytes32T}, {Type: bytes32T},
		{Type: uint256T}, {Type: uint256T}, {Type: uint256T}, {Type: uint256T}, {Type: uint256T},
		{Type: bytes32T},
	}
	opHashArgs = abi.Arguments{{Type: bytes32T}, {Type: addressT}, {Type: uint256T}}
)

// Hash returns the user operation hash as computed by
// EntryPoint.getUserOpHash: the signature is not covered.
func (op *UserOperation) Hash(entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	packed, err := packedOpArgs.Pack(
		op.Sender,
		zeroIfNil(op.Nonce),
		crypto.Keccak256Hash(op.InitCode),
		crypto.Keccak256Hash(op.CallData),
		zeroIfNil(op.CallGasLimit),
		zeroIfNil(op.VerificationGasLimit),
		zeroIfNil(op.PreVerificationGas),
		zeroIfNil(op.MaxFeePerGas),
		zeroIfNil(op.MaxPriorityFeePerGas),
		crypto.Keccak256Hash(op.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("packing user operation: %w", err)
	}
	enc, err := opHashArgs.Pack(crypto.Keccak256Hash(packed), entryPoint, zeroIfNil(chainID))
	if err != nil {
		return common.Hash{}, fmt.Errorf("packing user operation hash: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

func hexBig(v *big.Int) *hexutil.Big {
	return (*hexutil.Big)(zeroIfNil(v))
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
