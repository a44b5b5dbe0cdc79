package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, DefaultVault, cfg.Vault)
	assert.Equal(t, DefaultEntryPoint, cfg.EntryPoint)
	assert.Equal(t, "SPONSORED", cfg.PaymasterMode)
	assert.Equal(t, "DAI", cfg.DefaultToken)
	assert.Nil(t, cfg.ChainIDBig())
	assert.Equal(t, 10*time.Second, cfg.WatchEvery())
	assert.Equal(t, 2*time.Minute, cfg.ReceiptWait())

	reg, err := cfg.TokenRegistry()
	require.NoError(t, err)
	usdt, err := reg.Lookup("usdt")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), usdt.Decimals)
	dai, err := reg.Lookup("DAI")
	require.NoError(t, err)
	assert.Equal(t, uint8(18), dai.Decimals)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.Set("rpc_url", "https://rpc.example"))
	require.NoError(t, cfg.Set("chain_id", "80001"))
	require.NoError(t, cfg.AddToken(TokenEntry{Symbol: "weth", Address: "0x7ceb23fd6bc0add59e62ac25578270cff1b9f619", Decimals: 18}))
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	if info.Mode().Perm() != 0 {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example", again.RPCURL)
	assert.Equal(t, int64(80001), again.ChainIDBig().Int64())
	require.Len(t, again.Tokens, 4)
	assert.Equal(t, "WETH", again.Tokens[3].Symbol)
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := defaults(t.TempDir())
	cfg.RPCURL = "https://file.example"
	env := map[string]string{
		EnvBundlerURL: "https://bundler.example",
		EnvChainID:    "137",
	}
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "https://file.example", cfg.RPCURL, "unset variables keep file values")
	assert.Equal(t, "https://bundler.example", cfg.BundlerURL)
	assert.Equal(t, int64(137), cfg.ChainID)

	env[EnvChainID] = "polygon"
	assert.Error(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
}

func TestValidate(t *testing.T) {
	cfg := defaults(t.TempDir())
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
	assert.Contains(t, err.Error(), "bundler_url")
	assert.Contains(t, err.Error(), "paymaster_url")

	cfg.RPCURL = "http://localhost:8545"
	cfg.BundlerURL = "http://localhost:4337"
	cfg.PaymasterURL = "http://localhost:3000"
	assert.NoError(t, cfg.Validate())

	cfg.Vault = "vault"
	assert.ErrorContains(t, cfg.Validate(), "vault")
}

func TestValidateDuplicateTokens(t *testing.T) {
	cfg := defaults(t.TempDir())
	cfg.RPCURL, cfg.BundlerURL, cfg.PaymasterURL = "a", "b", "c"
	cfg.Tokens = append(cfg.Tokens, TokenEntry{Symbol: "dai", Address: "0x0000000000000000000000000000000000000001", Decimals: 18})
	assert.ErrorContains(t, cfg.Validate(), "duplicate")
}

func TestSetGet(t *testing.T) {
	cfg := defaults(t.TempDir())

	require.NoError(t, cfg.Set("paymaster_mode", "erc20"))
	v, err := cfg.Get("paymaster_mode")
	require.NoError(t, err)
	assert.Equal(t, "ERC20", v)

	require.NoError(t, cfg.Set("vault", "0xe621603d381a7bb04242ea7a60268bd12333a005"))
	assert.Equal(t, DefaultVault, cfg.Vault, "addresses are stored checksummed")

	assert.Error(t, cfg.Set("paymaster_mode", "free"))
	assert.Error(t, cfg.Set("vault", "nope"))
	assert.Error(t, cfg.Set("watch_interval", "0"))
	assert.ErrorIs(t, cfg.Set("colour", "blue"), ErrUnknownKey)
	_, err = cfg.Get("colour")
	assert.ErrorIs(t, err, ErrUnknownKey)

	assert.Contains(t, Keys(), "bundler_url")
}

func TestAddTokenReplacesSymbol(t *testing.T) {
	cfg := defaults(t.TempDir())
	require.NoError(t, cfg.AddToken(TokenEntry{Symbol: "usdc", Address: "0x0000000000000000000000000000000000000002", Decimals: 6}))
	require.Len(t, cfg.Tokens, 3)
	assert.Equal(t, "0x0000000000000000000000000000000000000002", cfg.Tokens[2].Address)

	assert.Error(t, cfg.AddToken(TokenEntry{Symbol: "x", Address: "nope"}))
	assert.Error(t, cfg.AddToken(TokenEntry{Symbol: " ", Address: "0x0000000000000000000000000000000000000003"}))
}
