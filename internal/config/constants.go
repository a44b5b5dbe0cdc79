package config

import "time"

// Deployment the original front-end targeted.
const (
	DefaultVault          = "0xE621603D381a7bb04242Ea7a60268BD12333a005"
	DefaultEntryPoint     = "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789" // v0.6
	DefaultAccountFactory = "0x9406Cc6185a346906296840746125a0E44976454" // SimpleAccountFactory v0.6
)

// Timeouts shared by cmd.
const (
	RPCTimeout  = 15 * time.Second
	DialTimeout = 10 * time.Second
)

func defaultTokens() []TokenEntry {
	return []TokenEntry{
		{Symbol: "DAI", Address: "0x04B2A6E51272c82932ecaB31A5Ab5aC32AE168C3", Decimals: 18},
		{Symbol: "USDT", Address: "0xAcDe43b9E5f72a4F554D4346e69e8e7AC8F352f0", Decimals: 6},
		{Symbol: "USDC", Address: "0x19D66Abd20Fb2a0Fc046C139d5af1e97F09A695e", Decimals: 6},
	}
}
