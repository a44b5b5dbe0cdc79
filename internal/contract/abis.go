package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinKind describes a contract whose ABI is embedded in the binary.
// New built-ins register themselves via init() in their own file: create
// internal/contract/<name>_abi.go and call RegisterBuiltin().
type BuiltinKind struct {
	ID          string  // machine key, e.g. "vault", "erc20"
	Name        string  // human label
	Description string  // one-line summary shown by `selectors`
	ABI         abi.ABI // parsed ABI, ready to pack
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin parses abiJSON and adds it to the registry.
// It panics on malformed JSON: built-ins are compiled in and must be valid.
func RegisterBuiltin(id, name, description, abiJSON string) BuiltinKind {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: builtin %q has invalid ABI: %v", id, err))
	}
	b := BuiltinKind{ID: id, Name: name, Description: description, ABI: parsed}
	builtinRegistry[id] = b
	return b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Pack encodes a call to method: 4-byte selector followed by ABI-encoded args.
func (b BuiltinKind) Pack(method string, args ...any) ([]byte, error) {
	data, err := b.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s.%s: %w", b.ID, method, err)
	}
	return data, nil
}

// Unpack decodes the return data of method.
func (b BuiltinKind) Unpack(method string, data []byte) ([]any, error) {
	out, err := b.ABI.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s.%s: %w", b.ID, method, err)
	}
	return out, nil
}

// Signature returns the canonical signature of method, e.g.
// "approve(address,uint256)", or "" if the method does not exist.
func (b BuiltinKind) Signature(method string) string {
	m, ok := b.ABI.Methods[method]
	if !ok {
		return ""
	}
	return m.Sig
}

// MethodNames returns the ABI's function names sorted alphabetically.
func (b BuiltinKind) MethodNames() []string {
	names := make([]string, 0, len(b.ABI.Methods))
	for name := range b.ABI.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
