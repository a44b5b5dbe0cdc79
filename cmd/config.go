package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting and the token table",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		pairs := make([][2]string, 0, len(config.Keys()))
		for _, k := range config.Keys() {
			v, _ := cfg.Get(k)
			if v == "" {
				v = ui.Meta("(unset)")
			}
			pairs = append(pairs, [2]string{k, v})
		}
		fmt.Fprintln(out, ui.KeyValueBlock("Config · "+cfg.Dir(), pairs))

		t := ui.NewTable(
			ui.Column{Title: "Symbol", Width: 8},
			ui.Column{Title: "Address", Width: 42},
			ui.Column{Title: "Decimals", Width: 8, Right: true},
		)
		for _, tok := range cfg.Tokens {
			t.AddRow(tok.Symbol, tok.Address, strconv.Itoa(int(tok.Decimals)))
		}
		fmt.Fprintln(out, t.Render())
		if err := cfg.Validate(); err != nil {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintln(out, ui.Warn(line))
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Keys: " + strings.Join(config.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		v, _ := cfg.Get(args[0])
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s = %s", args[0], v)))
		return nil
	},
}

var configAddTokenCmd = &cobra.Command{
	Use:   "add-token <symbol> <address> <decimals>",
	Short: "Add or replace a token the vault accepts",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dec, err := strconv.ParseUint(args[2], 10, 8)
		if err != nil {
			return fmt.Errorf("decimals %q: %w", args[2], err)
		}
		if err := cfg.AddToken(config.TokenEntry{Symbol: args[0], Address: args[1], Decimals: uint8(dec)}); err != nil {
			return err
		}
		if _, err := cfg.TokenRegistry(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Token %s added", strings.ToUpper(args[0]))))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd, configAddTokenCmd)
}
