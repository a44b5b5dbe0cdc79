package contract

// ERC20 is the subset of EIP-20 the vault flows touch.
//
// Function selectors:
//
//	balanceOf(address)  → 0x70a08231
//	decimals()          → 0x313ce567
//	symbol()            → 0x95d89b41
//	allowance(a,a)      → 0xdd62ed3e
//	transfer(a,u256)    → 0xa9059cbb
//	approve(a,u256)     → 0x095ea7b3
var ERC20 = RegisterBuiltin(
	"erc20",
	"ERC-20 Standard Token",
	"Token reads (balanceOf, decimals) and the approve/transfer writes used by deposit and transfer.",
	erc20ABI,
)

const erc20ABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`
