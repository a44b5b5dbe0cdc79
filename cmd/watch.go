package cmd

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/balance"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of vault and smart account balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := connect(ctx, needAccount)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.trackBalances(ctx); err != nil {
			return err
		}
		acct, err := s.account.Address(ctx)
		if err != nil {
			return err
		}
		labels := map[string]string{
			cfg.VaultAddress().Hex(): "vault",
			acct.Hex():               "account",
		}

		interval := watchInterval
		if interval <= 0 {
			interval = cfg.WatchEvery()
		}
		fetch := func() ([]balance.Snapshot, error) {
			rctx, cancel := context.WithTimeout(ctx, config.RPCTimeout)
			defer cancel()
			if err := s.tracker.Refresh(rctx); err != nil {
				log.Warn("watch refresh failed", zap.Error(err))
				return nil, err
			}
			var snaps []balance.Snapshot
			for _, h := range s.tracker.Holders() {
				if snap, ok := s.tracker.Store().Get(h); ok {
					snaps = append(snaps, snap)
				}
			}
			return snaps, nil
		}

		_, err = ui.NewDashboard(interval, labels, fetch).Run()
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "refresh interval (default: watch_interval from config)")
}
