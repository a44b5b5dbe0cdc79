package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var selectorsCmd = &cobra.Command{
	Use:   "selectors [signature]",
	Short: "List the selectors w3vault encodes, or compute one",
	Long: `Without arguments, list every function of the built-in vault, token and
account ABIs with its 4-byte selector. With a signature, compute its
selector.

Examples:
  w3vault selectors
  w3vault selectors "deposit(address token, uint256 amount)"   # → 0x47e7ef24`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			sig := contract.NormalizeSignature(args[0])
			fmt.Fprintln(out, ui.KeyValueBlock("Function Selector", [][2]string{
				{"Signature", sig},
				{"Selector", contract.Selector(sig)},
			}))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "Contract", Width: 16},
			ui.Column{Title: "Selector", Width: 10},
			ui.Column{Title: "Signature", Width: 64},
		)
		for _, b := range contract.AllBuiltins() {
			for _, name := range b.MethodNames() {
				sig := b.Signature(name)
				t.AddRow(b.ID, contract.Selector(sig), sig)
			}
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(strings.Join(builtinNames(), " · ")))
		return nil
	},
}

func builtinNames() []string {
	var names []string
	for _, b := range contract.AllBuiltins() {
		names = append(names, b.Name+": "+b.Description)
	}
	return names
}
