package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag   string
	walletRemoveYes bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage smart account owner keys",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Import an owner private key",
	Long: `Import an owner private key into the OS keychain. The key is read from
--key, or from the first line of stdin when --key is omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := walletKeyFlag
		if key == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no key given: pass --key or pipe it on stdin")
			}
			key = strings.TrimSpace(line)
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.Import(args[0], key)
		if err != nil {
			return err
		}
		printWalletAdded(cmd, w)
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Create a new owner key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.Generate(args[0])
		if err != nil {
			return err
		}
		printWalletAdded(cmd, w)
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets yet."))
			fmt.Fprintln(out, ui.Hint("Create one with: w3vault wallet generate owner"))
			return nil
		}
		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 16},
			ui.Column{Title: "Owner", Width: 42},
			ui.Column{Title: "Default", Width: 7},
		)
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
			}
			t.AddRow(w.Name, w.Address, def)
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q", args[0])))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and delete its key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !walletRemoveYes {
			if !interactive() {
				return ErrNeedsConfirmation
			}
			if !ui.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete wallet %q and its key? The smart account becomes unreachable without it.", args[0])) {
				fmt.Fprintln(out, ui.Meta("Cancelled."))
				return nil
			}
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed", args[0])))
		return nil
	},
}

func printWalletAdded(cmd *cobra.Command, w *wallet.Wallet) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q added: %s", w.Name, ui.Addr(w.Address))))
	if w.IsDefault {
		fmt.Fprintln(out, ui.Hint("This is your default wallet. See its smart account with: w3vault account"))
	} else {
		fmt.Fprintln(out, ui.Hint("Make it the default with: w3vault wallet use "+w.Name))
	}
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (default: read from stdin)")
	walletRemoveCmd.Flags().BoolVarP(&walletRemoveYes, "yes", "y", false, "do not ask for confirmation")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
