// Package intent turns a user action on the investment vault into an ordered
// list of contract calls and drives that list through paymaster sponsorship,
// smart-account submission and settlement.
package intent

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/aa"
	"github.com/ethereum/go-ethereum/common"
)

// ActionKind enumerates the user actions the vault front-end offers.
type ActionKind int

const (
	Deposit ActionKind = iota + 1
	Withdraw
	Transfer
	AddVaultManager
	SetAllowance
	ExecutePlan
)

// AllKinds lists every action in display order.
var AllKinds = []ActionKind{Deposit, Withdraw, Transfer, AddVaultManager, SetAllowance, ExecutePlan}

var kindNames = map[ActionKind]string{
	Deposit:         "deposit",
	Withdraw:        "withdraw",
	Transfer:        "transfer",
	AddVaultManager: "add-vault-manager",
	SetAllowance:    "set-allowance",
	ExecutePlan:     "execute-plan",
}

// progress is the message shown when an action starts.
var progress = map[ActionKind]string{
	Deposit:         "Processing deposit on the blockchain!",
	Withdraw:        "Processing withdrawal on the blockchain!",
	Transfer:        "Processing transfer on the blockchain!",
	AddVaultManager: "Adding Vault Manager",
	SetAllowance:    "Setting allowance on the blockchain!",
	ExecutePlan:     "Executing investment plan on the blockchain!",
}

func (k ActionKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// ParseActionKind is the inverse of ActionKind.String.
func ParseActionKind(s string) (ActionKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ActionRequest is one user-initiated action with its raw form input.
// Which fields are read depends on Kind:
//
//	Deposit, Withdraw   Token, Amount
//	Transfer            Token, Amount, Target (recipient)
//	AddVaultManager     Target (manager address), or Amount when Target is empty
//	SetAllowance        Amount (whole units, not scaled)
//	ExecutePlan         Investor, TokenFrom, TokenTo, Amount (base units), Steps
type ActionRequest struct {
	Kind      ActionKind
	Amount    string
	Token     string
	Target    string
	Investor  string
	TokenFrom string
	TokenTo   string
	Steps     string
}

// ContractCall is one call in an intent. Method is the canonical signature
// of the encoded function and is informational only.
type ContractCall struct {
	To     common.Address
	Data   []byte
	Method string
}

// Intent is the ordered list of calls one action expands to. It is owned by
// the submission that consumes it and is not retained afterwards.
type Intent struct {
	Action ActionKind
	Calls  []ContractCall
}

func (in *Intent) accountCalls() []aa.Call {
	calls := make([]aa.Call, len(in.Calls))
	for i, c := range in.Calls {
		calls[i] = aa.Call{To: c.To, Data: c.Data}
	}
	return calls
}

// Result is the outcome of a settled action.
type Result struct {
	ActionID string
	Intent   *Intent
	OpHash   common.Hash
	Receipt  *aa.UserOpReceipt
}
