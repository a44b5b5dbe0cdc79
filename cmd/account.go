package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/Mohsinsiddi/w3vault/internal/aa"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the smart account owned by the current wallet",
	Long: `Show the counterfactual smart account address of the owner key, whether
it is deployed, its EntryPoint nonce, and whether the bundler supports the
configured EntryPoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCTimeout)
		defer cancel()

		s, err := connect(ctx, needAccount)
		if err != nil {
			return err
		}
		defer s.Close()

		addr, err := s.account.Address(ctx)
		if err != nil {
			return err
		}
		deployed, err := s.account.Deployed(ctx)
		if err != nil {
			return err
		}
		nonce, err := s.account.Nonce(ctx)
		if err != nil {
			return err
		}
		chainID, err := s.chain.ChainID(ctx)
		if err != nil {
			return err
		}

		status := ui.Warn("not deployed (deployed by the first operation)")
		if deployed {
			status = ui.Success("deployed")
		}
		pairs := [][2]string{
			{"Owner", s.account.Owner().Hex()},
			{"Smart account", addr.Hex()},
			{"Status", status},
			{"Nonce", nonce.String()},
			{"Chain ID", chainID.String()},
			{"EntryPoint", cfg.EntryPointAddress().Hex()},
			{"Factory", cfg.FactoryAddress().Hex()},
		}
		if cfg.BundlerURL != "" {
			pairs = append(pairs, [2]string{"Bundler", bundlerSupport(ctx)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Smart Account", pairs))
		return nil
	},
}

// bundlerSupport reports whether the bundler accepts the configured
// EntryPoint. Errors are shown, not returned.
func bundlerSupport(ctx context.Context) string {
	b, err := aa.DialBundler(ctx, cfg.BundlerURL, cfg.EntryPointAddress())
	if err != nil {
		return ui.Err(err.Error())
	}
	defer b.Close()
	eps, err := b.SupportedEntryPoints(ctx)
	if err != nil {
		return ui.Err(err.Error())
	}
	if slices.Contains(eps, cfg.EntryPointAddress()) {
		return ui.Success("supports EntryPoint")
	}
	return ui.Warn(fmt.Sprintf("EntryPoint not supported (%d others)", len(eps)))
}
