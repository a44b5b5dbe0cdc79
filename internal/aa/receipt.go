package aa

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UserOpReceipt is the bundler's view of an included user operation.
// Success is false when the inner call reverted; Reason then carries the
// revert data as reported by the bundler.
type UserOpReceipt struct {
	UserOpHash    common.Hash
	Sender        common.Address
	Nonce         *big.Int
	Paymaster     common.Address
	ActualGasCost *big.Int
	ActualGasUsed *big.Int
	Success       bool
	Reason        string
	Receipt       TxReceipt
}

// TxReceipt identifies the bundle transaction that included the operation.
type TxReceipt struct {
	TransactionHash common.Hash
	BlockHash       common.Hash
	BlockNumber     *big.Int
}

type receiptJSON struct {
	UserOpHash    common.Hash    `json:"userOpHash"`
	Sender        common.Address `json:"sender"`
	Nonce         *quantity      `json:"nonce"`
	Paymaster     common.Address `json:"paymaster"`
	ActualGasCost *quantity      `json:"actualGasCost"`
	ActualGasUsed *quantity      `json:"actualGasUsed"`
	Success       bool           `json:"success"`
	Reason        string         `json:"reason"`
	Receipt       struct {
		TransactionHash common.Hash `json:"transactionHash"`
		BlockHash       common.Hash `json:"blockHash"`
		BlockNumber     *quantity   `json:"blockNumber"`
	} `json:"receipt"`
}

func (r *UserOpReceipt) UnmarshalJSON(b []byte) error {
	var w receiptJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = UserOpReceipt{
		UserOpHash:    w.UserOpHash,
		Sender:        w.Sender,
		Nonce:         w.Nonce.bigOrNil(),
		Paymaster:     w.Paymaster,
		ActualGasCost: w.ActualGasCost.bigOrNil(),
		ActualGasUsed: w.ActualGasUsed.bigOrNil(),
		Success:       w.Success,
		Reason:        w.Reason,
		Receipt: TxReceipt{
			TransactionHash: w.Receipt.TransactionHash,
			BlockHash:       w.Receipt.BlockHash,
			BlockNumber:     w.Receipt.BlockNumber.bigOrNil(),
		},
	}
	return nil
}
