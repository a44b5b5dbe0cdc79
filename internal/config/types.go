package config

// Config holds all w3vault configuration.
type Config struct {
	RPCURL         string       `json:"rpc_url"`
	BundlerURL     string       `json:"bundler_url"`
	PaymasterURL   string       `json:"paymaster_url"`
	ChainID        int64        `json:"chain_id"` // 0 = ask the node
	Vault          string       `json:"vault"`
	EntryPoint     string       `json:"entry_point"`
	AccountFactory string       `json:"account_factory"`
	AccountSalt    uint64       `json:"account_salt"`
	PaymasterMode  string       `json:"paymaster_mode"` // "SPONSORED" | "ERC20"
	FeeToken       string       `json:"fee_token,omitempty"`
	DefaultToken   string       `json:"default_token"`
	DefaultWallet  string       `json:"default_wallet,omitempty"`
	WatchInterval  int          `json:"watch_interval"`  // seconds
	PollInterval   int          `json:"poll_interval"`   // seconds between receipt polls
	ReceiptTimeout int          `json:"receipt_timeout"` // seconds
	Tokens         []TokenEntry `json:"tokens"`

	// internal: config dir path used for Save()
	configDir string
}

// TokenEntry is one ERC-20 token the vault accepts.
type TokenEntry struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}
