package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3vault/cmd.Version=1.2.3" .
var Version = "0.1.0"

// EnvConfigDir overrides the --config flag default.
const EnvConfigDir = "W3VAULT_CONFIG_DIR"

var (
	cfgDir   string
	envFile  string
	cfg      *config.Config
	log      = zap.NewNop()
	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "w3vault",
	Short: "Drive an investment vault from a sponsored smart account",
	Long: `w3vault deposits into, withdraws from and manages an on-chain investment
vault. Every action is sent as an ERC-4337 user operation from your smart
account, with gas paid by a paymaster.

Endpoints come from ~/.w3vault/config.json, a .env file, or the
W3VAULT_RPC_URL, W3VAULT_BUNDLER_URL and W3VAULT_PAYMASTER_URL variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		l, _, err := logging.New(logging.Options{Verbose: verbose, Level: logLevel, Output: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		log = l

		dir := cfgDir
		if !cmd.Flags().Changed("config") {
			if env := os.Getenv(EnvConfigDir); env != "" {
				dir = env
			}
		}
		cfg, err = config.Load(dir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.ApplyEnv(os.Getenv); err != nil {
			return err
		}
		log.Debug("config loaded", zap.String("dir", cfg.Dir()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute runs the root command.
// Ctrl-C cancels the context of the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// shownError marks an error the user has already seen on stdout.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

// reportError prints err to w unless it was already shown.
func reportError(w io.Writer, err error) {
	var shown shownError
	if errors.As(err, &shown) {
		return
	}
	fmt.Fprintln(w, errorLine(err))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: ~/.w3vault, or $"+EnvConfigDir+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		depositCmd,
		withdrawCmd,
		transferCmd,
		managerCmd,
		allowanceCmd,
		planCmd,
		balanceCmd,
		watchCmd,
		accountCmd,
		selectorsCmd,
		walletCmd,
		configCmd,
	)
}
