// Package config loads and saves the w3vault configuration directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultToken          = "DAI"
	defaultPaymasterMode  = "SPONSORED"
	defaultWatchInterval  = 10
	defaultPollInterval   = 2
	defaultReceiptTimeout = 120

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keysDir     = "keys"
)

// Environment variables that override file values.
const (
	EnvRPCURL       = "W3VAULT_RPC_URL"
	EnvBundlerURL   = "W3VAULT_BUNDLER_URL"
	EnvPaymasterURL = "W3VAULT_PAYMASTER_URL"
	EnvChainID      = "W3VAULT_CHAIN_ID"
)

// ErrUnknownKey is returned by Set and Get for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3vault.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3vault")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	if len(cfg.Tokens) == 0 {
		cfg.Tokens = defaultTokens()
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string { return c.configDir }

// WalletsPath is the wallet metadata file.
func (c *Config) WalletsPath() string { return filepath.Join(c.configDir, walletsFile) }

// KeysDir holds the encrypted-file keyring on hosts without an OS keychain.
func (c *Config) KeysDir() string { return filepath.Join(c.configDir, keysDir) }

// ApplyEnv overrides endpoint settings from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvRPCURL); v != "" {
		c.RPCURL = v
	}
	if v := getenv(EnvBundlerURL); v != "" {
		c.BundlerURL = v
	}
	if v := getenv(EnvPaymasterURL); v != "" {
		c.PaymasterURL = v
	}
	if v := getenv(EnvChainID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvChainID, err)
		}
		c.ChainID = id
	}
	return nil
}

// Validate reports every missing or malformed setting needed to submit
// operations.
func (c *Config) Validate() error {
	var errs []error
	for _, f := range []struct{ name, val, env string }{
		{"rpc_url", c.RPCURL, EnvRPCURL},
		{"bundler_url", c.BundlerURL, EnvBundlerURL},
		{"paymaster_url", c.PaymasterURL, EnvPaymasterURL},
	} {
		if strings.TrimSpace(f.val) == "" {
			errs = append(errs, fmt.Errorf("%s is not set (w3vault config set %s <url> or %s)", f.name, f.name, f.env))
		}
	}
	for _, f := range []struct{ name, val string }{
		{"vault", c.Vault},
		{"entry_point", c.EntryPoint},
		{"account_factory", c.AccountFactory},
	} {
		if !common.IsHexAddress(f.val) {
			errs = append(errs, fmt.Errorf("%s %q is not an address", f.name, f.val))
		}
	}
	if c.ChainID < 0 {
		errs = append(errs, fmt.Errorf("chain_id must not be negative"))
	}
	if _, err := c.TokenRegistry(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TokenRegistry builds the token table.
func (c *Config) TokenRegistry() (*token.Registry, error) {
	tokens := make([]token.Token, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		if !common.IsHexAddress(t.Address) {
			return nil, fmt.Errorf("token %s: %q is not an address", t.Symbol, t.Address)
		}
		tokens = append(tokens, token.Token{Symbol: t.Symbol, Address: common.HexToAddress(t.Address), Decimals: t.Decimals})
	}
	return token.NewRegistry(tokens...)
}

// AddToken registers a token, replacing one with the same symbol.
func (c *Config) AddToken(e TokenEntry) error {
	if !common.IsHexAddress(e.Address) {
		return fmt.Errorf("%q is not an address", e.Address)
	}
	e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
	if e.Symbol == "" {
		return errors.New("token symbol is empty")
	}
	for i, t := range c.Tokens {
		if strings.EqualFold(t.Symbol, e.Symbol) {
			c.Tokens[i] = e
			return nil
		}
	}
	c.Tokens = append(c.Tokens, e)
	return nil
}

func (c *Config) VaultAddress() common.Address      { return common.HexToAddress(c.Vault) }
func (c *Config) EntryPointAddress() common.Address { return common.HexToAddress(c.EntryPoint) }
func (c *Config) FactoryAddress() common.Address    { return common.HexToAddress(c.AccountFactory) }

// ChainIDBig returns the configured chain id, nil when it must be queried.
func (c *Config) ChainIDBig() *big.Int {
	if c.ChainID == 0 {
		return nil
	}
	return big.NewInt(c.ChainID)
}

func (c *Config) Salt() *big.Int { return new(big.Int).SetUint64(c.AccountSalt) }

func (c *Config) WatchEvery() time.Duration {
	return secondsOr(c.WatchInterval, defaultWatchInterval)
}

func (c *Config) PollEvery() time.Duration {
	return secondsOr(c.PollInterval, defaultPollInterval)
}

func (c *Config) ReceiptWait() time.Duration {
	return secondsOr(c.ReceiptTimeout, defaultReceiptTimeout)
}

// settable maps `config set` keys to their fields.
var settable = map[string]struct {
	get func(*Config) string
	set func(*Config, string) error
}{
	"rpc_url":         {func(c *Config) string { return c.RPCURL }, func(c *Config, v string) error { c.RPCURL = v; return nil }},
	"bundler_url":     {func(c *Config) string { return c.BundlerURL }, func(c *Config, v string) error { c.BundlerURL = v; return nil }},
	"paymaster_url":   {func(c *Config) string { return c.PaymasterURL }, func(c *Config, v string) error { c.PaymasterURL = v; return nil }},
	"chain_id":        {func(c *Config) string { return strconv.FormatInt(c.ChainID, 10) }, setInt64(func(c *Config) *int64 { return &c.ChainID })},
	"vault":           {func(c *Config) string { return c.Vault }, setAddress(func(c *Config) *string { return &c.Vault })},
	"entry_point":     {func(c *Config) string { return c.EntryPoint }, setAddress(func(c *Config) *string { return &c.EntryPoint })},
	"account_factory": {func(c *Config) string { return c.AccountFactory }, setAddress(func(c *Config) *string { return &c.AccountFactory })},
	"fee_token":       {func(c *Config) string { return c.FeeToken }, setAddress(func(c *Config) *string { return &c.FeeToken })},
	"account_salt": {func(c *Config) string { return strconv.FormatUint(c.AccountSalt, 10) }, func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		c.AccountSalt = n
		return nil
	}},
	"paymaster_mode": {func(c *Config) string { return c.PaymasterMode }, func(c *Config, v string) error {
		v = strings.ToUpper(v)
		if v != "SPONSORED" && v != "ERC20" {
			return fmt.Errorf("paymaster_mode must be SPONSORED or ERC20")
		}
		c.PaymasterMode = v
		return nil
	}},
	"default_token":   {func(c *Config) string { return c.DefaultToken }, func(c *Config, v string) error { c.DefaultToken = strings.ToUpper(v); return nil }},
	"default_wallet":  {func(c *Config) string { return c.DefaultWallet }, func(c *Config, v string) error { c.DefaultWallet = v; return nil }},
	"watch_interval":  {func(c *Config) string { return strconv.Itoa(c.WatchInterval) }, setSeconds(func(c *Config) *int { return &c.WatchInterval })},
	"poll_interval":   {func(c *Config) string { return strconv.Itoa(c.PollInterval) }, setSeconds(func(c *Config) *int { return &c.PollInterval })},
	"receipt_timeout": {func(c *Config) string { return strconv.Itoa(c.ReceiptTimeout) }, setSeconds(func(c *Config) *int { return &c.ReceiptTimeout })},
}

// Keys lists the keys accepted by Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns value to key after validating it.
func (c *Config) Set(key, value string) error {
	f, ok := settable[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Get returns the current value of key as a string.
func (c *Config) Get(key string) (string, error) {
	f, ok := settable[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Vault:          DefaultVault,
		EntryPoint:     DefaultEntryPoint,
		AccountFactory: DefaultAccountFactory,
		PaymasterMode:  defaultPaymasterMode,
		DefaultToken:   defaultToken,
		WatchInterval:  defaultWatchInterval,
		PollInterval:   defaultPollInterval,
		ReceiptTimeout: defaultReceiptTimeout,
		Tokens:         defaultTokens(),
		configDir:      dir,
	}
}

func secondsOr(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func setAddress(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		if !common.IsHexAddress(v) {
			return fmt.Errorf("%q is not an address", v)
		}
		*field(c) = common.HexToAddress(v).Hex()
		return nil
	}
}

func setInt64(field func(*Config) *int64) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setSeconds(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("must be a positive number of seconds")
		}
		*field(c) = n
		return nil
	}
}
