package contract

// Vault is the investment vault the deposit/withdraw/admin/plan flows call.
//
// Function selectors:
//
//	deposit(address,uint256)  → 0x47e7ef24
//	withdraw(address,uint256) → 0xf3fef3a3
var Vault = RegisterBuiltin(
	"vault",
	"Investment Vault",
	"Token custody, vault-manager administration and multi-step investment plans.",
	vaultABI,
)

const vaultABI = `[
	{"name":"deposit","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenAddress","type":"address"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenAddress","type":"address"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"name":"addVaultManager","type":"function","stateMutability":"nonpayable","inputs":[{"name":"_vaultManager","type":"address"}],"outputs":[]},
	{"name":"setAllowance","type":"function","stateMutability":"nonpayable","inputs":[{"name":"_amountAllowed","type":"uint256"}],"outputs":[]},
	{"name":"executeInvestmentPlan","type":"function","stateMutability":"nonpayable","inputs":[{"name":"investor","type":"address"},{"name":"tokenFrom","type":"address"},{"name":"tokenTo","type":"address"},{"name":"amount","type":"uint256"},{"name":"steps","type":"uint8[]"}],"outputs":[]}
]`
