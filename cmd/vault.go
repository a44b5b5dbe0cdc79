package cmd

import (
	"github.com/Mohsinsiddi/w3vault/internal/intent"
	"github.com/spf13/cobra"
)

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Approve and deposit tokens into the vault",
	Long: `Deposit approves the vault to pull <amount> of the token and deposits it,
in one user operation. The amount is in whole tokens, e.g. 1.5.

Examples:
  w3vault deposit 100 --token DAI
  w3vault deposit 2.5 --token USDC --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenAction(cmd, intent.ActionRequest{Kind: intent.Deposit, Amount: args[0]})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw tokens from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenAction(cmd, intent.ActionRequest{Kind: intent.Withdraw, Amount: args[0]})
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <amount> <recipient>",
	Short: "Transfer tokens from the smart account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenAction(cmd, intent.ActionRequest{Kind: intent.Transfer, Amount: args[0], Target: args[1]})
	},
}

var managerCmd = &cobra.Command{
	Use:   "manager",
	Short: "Manage vault managers",
}

var managerAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Grant an address the vault manager role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, intent.ActionRequest{Kind: intent.AddVaultManager, Target: args[0]})
	},
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Manage the vault allowance",
}

var allowanceSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the vault allowance (whole units, fractions are dropped)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, intent.ActionRequest{Kind: intent.SetAllowance, Amount: args[0]})
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run investment plans",
}

var (
	planFrom  string
	planTo    string
	planSteps string
)

var planExecuteCmd = &cobra.Command{
	Use:   "execute <investor> <amount>",
	Short: "Execute an investment plan for an investor",
	Long: `Execute swaps <amount> of --from into --to for <investor> through the given
plan steps. The amount is in base units of the --from token, not whole
tokens.

Example:
  w3vault plan execute 0xInvestor 1000000 --from USDC --to DAI --steps 1,3,2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, intent.ActionRequest{
			Kind:      intent.ExecutePlan,
			Investor:  args[0],
			Amount:    args[1],
			TokenFrom: planFrom,
			TokenTo:   planTo,
			Steps:     planSteps,
		})
	},
}

func runTokenAction(cmd *cobra.Command, req intent.ActionRequest) error {
	tokens, err := cfg.TokenRegistry()
	if err != nil {
		return err
	}
	if req.Token, err = pickToken(tokens); err != nil {
		return err
	}
	return runAction(cmd, req)
}

func init() {
	addActionFlags(depositCmd, true)
	addActionFlags(withdrawCmd, true)
	addActionFlags(transferCmd, true)
	addActionFlags(managerAddCmd, false)
	addActionFlags(allowanceSetCmd, false)
	addActionFlags(planExecuteCmd, false)

	planExecuteCmd.Flags().StringVar(&planFrom, "from", "", "token the plan sells")
	planExecuteCmd.Flags().StringVar(&planTo, "to", "", "token the plan buys")
	planExecuteCmd.Flags().StringVar(&planSteps, "steps", "", "comma-separated plan step ids, e.g. 1,3,2")
	_ = planExecuteCmd.MarkFlagRequired("from")
	_ = planExecuteCmd.MarkFlagRequired("to")
	_ = planExecuteCmd.MarkFlagRequired("steps")

	managerCmd.AddCommand(managerAddCmd)
	allowanceCmd.AddCommand(allowanceSetCmd)
	planCmd.AddCommand(planExecuteCmd)
}
