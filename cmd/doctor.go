package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/aa"
	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/health"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// ErrUnhealthy is returned by doctor when any endpoint fails its probe.
var ErrUnhealthy = errors.New("one or more endpoints are unhealthy")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the node, bundler and paymaster endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var probes []health.Probe
		if cfg.RPCURL != "" {
			probes = append(probes, health.Probe{Role: health.RoleNode, URL: cfg.RPCURL, Check: probeNode})
		}
		if cfg.BundlerURL != "" {
			probes = append(probes, health.Probe{Role: health.RoleBundler, URL: cfg.BundlerURL, Check: probeBundler})
		}
		if cfg.PaymasterURL != "" {
			probes = append(probes, health.Probe{Role: health.RolePaymaster, URL: cfg.PaymasterURL, Check: probePaymaster})
		}
		if len(probes) == 0 {
			fmt.Fprintln(out, ui.Warn("No endpoints configured."))
			fmt.Fprintln(out, ui.Hint("w3vault config set rpc_url <url>"))
			return nil
		}

		eps := health.Run(cmd.Context(), health.DefaultTimeout, probes...)
		t := ui.NewTable(
			ui.Column{Title: "Role", Width: 10},
			ui.Column{Title: "Status", Width: 6},
			ui.Column{Title: "Latency", Width: 9, Right: true},
			ui.Column{Title: "Detail", Width: 48},
		)
		for _, e := range eps {
			status, detail := "ok", e.Detail
			if !e.Healthy {
				status, detail = "FAIL", e.Err.Error()
			}
			t.AddRow(string(e.Role), status, e.Latency.Round(time.Millisecond).String(), detail)
		}
		fmt.Fprintln(out, t.Render())
		if !health.AllHealthy(eps) {
			return ErrUnhealthy
		}
		fmt.Fprintln(out, ui.Success("All endpoints healthy"))
		return nil
	},
}

func probeNode(ctx context.Context) (string, error) {
	c, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return "", err
	}
	defer c.Close()
	_, block, err := c.Ping(ctx)
	if err != nil {
		return "", err
	}
	id, err := c.ChainID(ctx)
	if err != nil {
		return "", err
	}
	if err := matchChain(id); err != nil {
		return "", err
	}
	return fmt.Sprintf("chain %s · block %d", id, block), nil
}

func probeBundler(ctx context.Context) (string, error) {
	b, err := aa.DialBundler(ctx, cfg.BundlerURL, cfg.EntryPointAddress())
	if err != nil {
		return "", err
	}
	defer b.Close()
	eps, err := b.SupportedEntryPoints(ctx)
	if err != nil {
		return "", err
	}
	if !slices.Contains(eps, cfg.EntryPointAddress()) {
		return "", fmt.Errorf("EntryPoint %s not supported", cfg.EntryPointAddress().Hex())
	}
	return fmt.Sprintf("supports EntryPoint (%d total)", len(eps)), nil
}

func probePaymaster(ctx context.Context) (string, error) {
	p, err := aa.DialPaymaster(ctx, cfg.PaymasterURL, common.Address{})
	if err != nil {
		return "", err
	}
	defer p.Close()
	id, err := p.ChainID(ctx)
	if err != nil {
		return "", err
	}
	if err := matchChain(id); err != nil {
		return "", err
	}
	return fmt.Sprintf("chain %s · mode %s", id, cfg.PaymasterMode), nil
}

// matchChain fails when chain_id is configured and differs from id.
func matchChain(id *big.Int) error {
	if want := cfg.ChainIDBig(); want != nil && want.Cmp(id) != 0 {
		return fmt.Errorf("serves chain %s, config says %s", id, want)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
