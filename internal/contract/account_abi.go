package contract

// SimpleAccount is the eth-infinitism smart account: the owner's calls are
// wrapped in execute / executeBatch and run by the EntryPoint.
var SimpleAccount = RegisterBuiltin(
	"simple-account",
	"ERC-4337 SimpleAccount",
	"Smart-account call wrappers used as UserOperation callData.",
	simpleAccountABI,
)

// AccountFactory deploys SimpleAccounts at counterfactual addresses.
var AccountFactory = RegisterBuiltin(
	"account-factory",
	"ERC-4337 SimpleAccountFactory",
	"Counterfactual smart-account address and initCode.",
	accountFactoryABI,
)

// EntryPoint is the subset of the v0.6 EntryPoint read by the account.
var EntryPoint = RegisterBuiltin(
	"entrypoint",
	"ERC-4337 EntryPoint v0.6",
	"Per-account nonce lookup.",
	entryPointABI,
)

const simpleAccountABI = `[
	{"name":"execute","type":"function","stateMutability":"nonpayable","inputs":[{"name":"dest","type":"address"},{"name":"value","type":"uint256"},{"name":"func","type":"bytes"}],"outputs":[]},
	{"name":"executeBatch","type":"function","stateMutability":"nonpayable","inputs":[{"name":"dest","type":"address[]"},{"name":"func","type":"bytes[]"}],"outputs":[]}
]`

const accountFactoryABI = `[
	{"name":"getAddress","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"createAccount","type":"function","stateMutability":"nonpayable","inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],"outputs":[{"name":"ret","type":"address"}]}
]`

const entryPointABI = `[
	{"name":"getNonce","type":"function","stateMutability":"view","inputs":[{"name":"sender","type":"address"},{"name":"key","type":"uint192"}],"outputs":[{"name":"nonce","type":"uint256"}]}
]`
