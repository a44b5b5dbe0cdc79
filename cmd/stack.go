package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3vault/internal/aa"
	"github.com/Mohsinsiddi/w3vault/internal/balance"
	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/intent"
	"github.com/Mohsinsiddi/w3vault/internal/token"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// EnvKey holds a hex owner key that takes precedence over stored wallets.
const EnvKey = "W3VAULT_KEY"

var walletName string

// interactive reports whether prompts and pickers may be shown.
var interactive = func() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&walletName, "wallet", "w", "", "owner wallet name (default: the default wallet)")
}

// stack is the set of clients one command talks to. Fields a command did
// not ask for are nil.
type stack struct {
	tokens    *token.Registry
	chain     *chain.Client
	bundler   *aa.Bundler
	paymaster *aa.PaymasterClient
	account   *aa.SimpleAccount
	tracker   *balance.Tracker
}

type need int

const (
	needChain   need = iota // node only
	needAccount             // node and the owner's smart account
	needAll                 // node, account, bundler and paymaster
)

func connect(ctx context.Context, n need) (*stack, error) {
	if n == needAll {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc_url is not set (w3vault config set rpc_url <url> or %s)", config.EnvRPCURL)
	}
	tokens, err := cfg.TokenRegistry()
	if err != nil {
		return nil, err
	}

	dctx, cancel := context.WithTimeout(ctx, config.DialTimeout)
	defer cancel()

	s := &stack{tokens: tokens}
	if s.chain, err = chain.Dial(dctx, cfg.RPCURL); err != nil {
		return nil, err
	}
	if n == needChain {
		return s, nil
	}

	owner, err := loadSigner()
	if err != nil {
		s.Close()
		return nil, err
	}
	if n == needAll {
		if s.bundler, err = aa.DialBundler(dctx, cfg.BundlerURL, cfg.EntryPointAddress(),
			aa.WithPollInterval(cfg.PollEvery()), aa.WithReceiptTimeout(cfg.ReceiptWait())); err != nil {
			s.Close()
			return nil, err
		}
		feeToken, err := feeTokenAddress(tokens)
		if err != nil {
			s.Close()
			return nil, err
		}
		if s.paymaster, err = aa.DialPaymaster(dctx, cfg.PaymasterURL, feeToken); err != nil {
			s.Close()
			return nil, err
		}
	}
	s.account = aa.NewSimpleAccount(s.chain, s.bundler, owner, aa.AccountConfig{
		EntryPoint: cfg.EntryPointAddress(),
		Factory:    cfg.FactoryAddress(),
		Salt:       cfg.Salt(),
		ChainID:    cfg.ChainIDBig(),
	})
	log.Debug("stack connected",
		zap.String("owner", owner.Address().Hex()),
		zap.Bool("bundler", s.bundler != nil))
	return s, nil
}

// trackBalances sets up the tracker for the vault and the smart account.
func (s *stack) trackBalances(ctx context.Context) error {
	holders := []common.Address{cfg.VaultAddress()}
	if s.account != nil {
		addr, err := s.account.Address(ctx)
		if err != nil {
			return err
		}
		holders = append(holders, addr)
	}
	s.tracker = balance.NewTracker(balance.NewReader(s.chain, s.tokens.All()), balance.NewStore(), log, holders...)
	return nil
}

func (s *stack) Close() {
	if s.paymaster != nil {
		s.paymaster.Close()
	}
	if s.bundler != nil {
		s.bundler.Close()
	}
	if s.chain != nil {
		s.chain.Close()
	}
}

// loadSigner returns the owner key from $W3VAULT_KEY or the wallet store.
func loadSigner() (*wallet.Signer, error) {
	if hexKey := os.Getenv(EnvKey); hexKey != "" {
		return wallet.SignerFromHex(hexKey)
	}
	mgr, err := newWalletManager()
	if err != nil {
		return nil, err
	}
	name := walletName
	if name == "" {
		name = cfg.DefaultWallet
	}
	s, err := mgr.Signer(name)
	if errors.Is(err, wallet.ErrNoWallet) {
		return nil, fmt.Errorf("%w: run `w3vault wallet generate <name>` or set %s", err, EnvKey)
	}
	return s, err
}

// openKeystore is swapped for an in-memory keystore in tests.
var openKeystore = func(dir string) (wallet.KeystoreBackend, error) {
	ks, err := wallet.DefaultKeystore(dir)
	if err != nil {
		return nil, err
	}
	return ks, nil
}

func newWalletManager() (*wallet.Manager, error) {
	ks, err := openKeystore(cfg.KeysDir())
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(ks),
	), nil
}

// feeTokenAddress is the ERC-20 the paymaster charges in ERC20 mode:
// fee_token when set, otherwise the default token.
func feeTokenAddress(tokens *token.Registry) (common.Address, error) {
	if cfg.FeeToken != "" {
		return common.HexToAddress(cfg.FeeToken), nil
	}
	t, err := tokens.Lookup(cfg.DefaultToken)
	if err != nil {
		return common.Address{}, fmt.Errorf("default_token: %w", err)
	}
	return t.Address, nil
}

// errorLine renders err for the terminal, naming the failed stage.
func errorLine(err error) string {
	var enc *intent.EncodingError
	if errors.As(err, &enc) {
		return ui.Err("invalid input: " + err.Error())
	}
	if stage, ok := intent.FailedStage(err); ok {
		return ui.Err(fmt.Sprintf("%s failed: %v", stage, err))
	}
	return ui.Err(err.Error())
}
