package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/balance"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var balanceHolders []string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show token balances of the vault and the smart account",
	Long: `Show the vault's token balances, the smart account's, or any address's.

Examples:
  w3vault balance
  w3vault balance --holder account
  w3vault balance --holder vault --holder 0xabc…`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCTimeout)
		defer cancel()

		s, err := connect(ctx, needsAccount(balanceHolders))
		if err != nil {
			return err
		}
		defer s.Close()

		holders, labels, err := resolveHolders(ctx, s, balanceHolders)
		if err != nil {
			return err
		}
		r := balance.NewReader(s.chain, s.tokens.All())
		snaps := make([]balance.Snapshot, 0, len(holders))
		for _, h := range holders {
			snap, err := r.Snapshot(ctx, h)
			if err != nil {
				return err
			}
			snaps = append(snaps, snap)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.SnapshotTable(snaps, labels))
		return nil
	},
}

// needsAccount reports whether any holder refers to the smart account.
func needsAccount(holders []string) need {
	for _, h := range holders {
		if strings.EqualFold(h, "account") {
			return needAccount
		}
	}
	return needChain
}

// resolveHolders maps "vault", "account" and hex addresses to addresses,
// returning display labels for the named ones.
func resolveHolders(ctx context.Context, s *stack, refs []string) ([]common.Address, map[string]string, error) {
	var (
		out    []common.Address
		labels = map[string]string{}
	)
	for _, ref := range refs {
		switch strings.ToLower(ref) {
		case "vault":
			out = append(out, cfg.VaultAddress())
			labels[cfg.VaultAddress().Hex()] = "vault"
		case "account":
			addr, err := s.account.Address(ctx)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, addr)
			labels[addr.Hex()] = "account"
		default:
			if !common.IsHexAddress(ref) {
				return nil, nil, fmt.Errorf("holder %q: want vault, account or an address", ref)
			}
			out = append(out, common.HexToAddress(ref))
		}
	}
	return out, labels, nil
}

func init() {
	balanceCmd.Flags().StringSliceVar(&balanceHolders, "holder", []string{"vault"}, "vault, account or an address (repeatable)")
}
