package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "w3vault-e2e-test")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmp, "w3vault")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir() // no stray .env
	env := []string{"W3VAULT_CONFIG_DIR=" + configDir}
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "W3VAULT_") {
			env = append(env, kv)
		}
	}
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3vault")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	for _, c := range []string{"deposit", "withdraw", "transfer", "manager", "allowance", "plan", "balance", "watch", "account", "wallet", "config"} {
		assert.Contains(t, out, c, "help should list %s", c)
	}
	assert.Contains(t, out, "--verbose")
}

func TestDryRunDeposit(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "deposit", "100", "--token", "DAI", "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "approve(address,uint256)")
	assert.Contains(t, out, "deposit(address,uint256)")
	assert.Contains(t, out, "56bc75e2d63100000", "100 DAI in wei")
}

func TestSubmitWithoutYesRefuses(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "withdraw", "1", "--token", "USDC")
	require.Error(t, err)
	assert.Contains(t, out, "--yes")
}

func TestInvalidAmountExitsNonZero(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "deposit", "1.0000001", "--token", "USDC", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, out, "invalid input")
}

func TestConfigPersists(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set", "bundler_url", "https://bundler.example")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "https://bundler.example")
	assert.FileExists(t, filepath.Join(dir, "config.json"))
}

func TestSelectors(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "selectors", "executeInvestmentPlan(address,address,address,uint256,uint8[])")
	require.NoError(t, err)
	assert.Contains(t, out, "0x8e9a710f")
}
