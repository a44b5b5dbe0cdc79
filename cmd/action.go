package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Mohsinsiddi/w3vault/internal/aa"
	"github.com/Mohsinsiddi/w3vault/internal/balance"
	"github.com/Mohsinsiddi/w3vault/internal/intent"
	"github.com/Mohsinsiddi/w3vault/internal/token"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrNeedsConfirmation is returned when an action would be submitted from a
// non-interactive session without --yes.
var ErrNeedsConfirmation = errors.New("refusing to submit without confirmation; pass --yes")

var (
	dryRun    bool
	assumeYes bool
	tokenFlag string
)

// addActionFlags registers the flags shared by every action command.
func addActionFlags(c *cobra.Command, withToken bool) {
	c.Flags().BoolVar(&dryRun, "dry-run", false, "encode and print the calls without submitting")
	c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "submit without asking for confirmation")
	if withToken {
		c.Flags().StringVarP(&tokenFlag, "token", "t", "", "token symbol or address (default: picker on a terminal, else default_token)")
	}
}

// runAction encodes req, shows the calls, and unless --dry-run submits it
// through the smart account and prints the settled result.
func runAction(cmd *cobra.Command, req intent.ActionRequest) error {
	out := cmd.OutOrStdout()
	tokens, err := cfg.TokenRegistry()
	if err != nil {
		return err
	}
	enc := intent.NewEncoder(cfg.VaultAddress(), tokens)
	in, err := enc.Encode(req)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, callsTable(in))

	if dryRun {
		fmt.Fprintln(out, ui.Hint("dry run: nothing was submitted"))
		return nil
	}
	if !assumeYes {
		if !interactive() {
			return ErrNeedsConfirmation
		}
		if !ui.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Submit %s from your smart account?", req.Kind)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
	}

	ctx := cmd.Context()
	s, err := connect(ctx, needAll)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.trackBalances(ctx); err != nil {
		return err
	}
	mode, err := aa.ParsePaymasterMode(cfg.PaymasterMode)
	if err != nil {
		return err
	}

	hook, stop := progressHook(out)
	defer stop()
	b := intent.NewBuilder(enc, s.account, s.paymaster,
		intent.WithPaymasterMode(mode),
		intent.WithRefresher(s.tracker),
		intent.WithNotifier(ui.NewNotifier(out)),
		intent.WithStateHook(hook),
		intent.WithLogger(log),
	)
	res, err := b.Execute(ctx, req)
	stop()
	if err != nil {
		// The notifier has already printed it.
		return shownError{err}
	}
	fmt.Fprintln(out, resultBlock(res))
	if snap, ok := s.tracker.Store().Get(cfg.VaultAddress()); ok {
		fmt.Fprintln(out, ui.SnapshotTable([]balance.Snapshot{snap}, map[string]string{cfg.VaultAddress().Hex(): "vault"}))
	}
	return nil
}

// progressHook logs every transition and, on a terminal, spins while the
// operation waits for inclusion. stop is idempotent.
func progressHook(w io.Writer) (hook func(intent.Transition), stop func()) {
	var sp *ui.Spinner
	tty := interactive()
	stop = func() {
		if sp != nil {
			sp.Stop()
		}
	}
	hook = func(t intent.Transition) {
		log.Debug("action state",
			zap.String("action_id", t.ActionID),
			zap.Stringer("from", t.From),
			zap.Stringer("to", t.To))
		switch {
		case t.To == intent.Submitted && tty:
			sp = ui.NewSpinner(w, "waiting for the bundler to include the operation")
			sp.Start()
		case t.To.Terminal():
			stop()
		}
	}
	return hook, stop
}

func callsTable(in *intent.Intent) string {
	t := ui.NewTable(
		ui.Column{Title: "#", Width: 2},
		ui.Column{Title: "To", Width: 42},
		ui.Column{Title: "Method", Width: 64},
	)
	for i, c := range in.Calls {
		t.AddRow(fmt.Sprint(i+1), c.To.Hex(), c.Method)
	}
	var data string
	for i, c := range in.Calls {
		data += fmt.Sprintf("  %d  %s\n", i+1, hexutil.Encode(c.Data))
	}
	return ui.StyleTitle.Render(in.Action.String()) + "\n" + t.Render() + ui.Meta(data)
}

func resultBlock(res *intent.Result) string {
	pairs := [][2]string{
		{"Action", res.Intent.Action.String()},
		{"Action ID", res.ActionID},
		{"User op hash", res.OpHash.Hex()},
	}
	if r := res.Receipt; r != nil {
		pairs = append(pairs, [2]string{"Transaction", r.Receipt.TransactionHash.Hex()})
		if r.Receipt.BlockNumber != nil {
			pairs = append(pairs, [2]string{"Block", r.Receipt.BlockNumber.String()})
		}
		if r.ActualGasCost != nil {
			pairs = append(pairs, [2]string{"Gas cost (wei)", r.ActualGasCost.String()})
		}
		if r.Paymaster != (common.Address{}) {
			pairs = append(pairs, [2]string{"Paid by", r.Paymaster.Hex()})
		}
	}
	return ui.KeyValueBlock("Settled", pairs)
}

// pickToken resolves the token for an action: the --token flag, a picker
// on a terminal, or the configured default.
func pickToken(tokens *token.Registry) (string, error) {
	if tokenFlag != "" {
		return tokenFlag, nil
	}
	if !interactive() {
		return cfg.DefaultToken, nil
	}
	items := make([]ui.PickerItem, 0, tokens.Len())
	for _, t := range tokens.All() {
		items = append(items, ui.PickerItem{Label: t.Symbol, SubLabel: t.Address.Hex(), Value: t.Symbol})
	}
	sym, err := ui.Pick("Token", items)
	if err != nil {
		return "", err
	}
	if sym == "" {
		return "", errors.New("no token selected")
	}
	return sym, nil
}
