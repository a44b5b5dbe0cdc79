// Package token holds the table of ERC-20 tokens the vault accepts and the
// conversions between user-entered decimal amounts and on-chain base units.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownToken is returned when a symbol or address is not in the registry.
var ErrUnknownToken = errors.New("unknown token")

// Token is one ERC-20 token with its decimal exponent.
type Token struct {
	Symbol   string
	Address  common.Address
	Decimals uint8
}

// Registry resolves tokens by symbol (case-insensitive) or by address.
// It is read-only after construction.
type Registry struct {
	tokens   []Token
	bySymbol map[string]int
	byAddr   map[common.Address]int
}

// NewRegistry builds a registry. Symbols and addresses must be unique.
func NewRegistry(tokens ...Token) (*Registry, error) {
	r := &Registry{
		tokens:   make([]Token, 0, len(tokens)),
		bySymbol: make(map[string]int, len(tokens)),
		byAddr:   make(map[common.Address]int, len(tokens)),
	}
	for _, t := range tokens {
		sym := strings.ToUpper(strings.TrimSpace(t.Symbol))
		if sym == "" {
			return nil, fmt.Errorf("token %s has no symbol", t.Address.Hex())
		}
		if _, dup := r.bySymbol[sym]; dup {
			return nil, fmt.Errorf("duplicate token symbol %q", sym)
		}
		if _, dup := r.byAddr[t.Address]; dup {
			return nil, fmt.Errorf("duplicate token address %s", t.Address.Hex())
		}
		t.Symbol = sym
		r.bySymbol[sym] = len(r.tokens)
		r.byAddr[t.Address] = len(r.tokens)
		r.tokens = append(r.tokens, t)
	}
	return r, nil
}

// Lookup resolves ref, which is either a symbol ("dai", "USDC") or a 0x address.
func (r *Registry) Lookup(ref string) (Token, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Token{}, fmt.Errorf("%w: empty token reference", ErrUnknownToken)
	}
	if common.IsHexAddress(ref) {
		if i, ok := r.byAddr[common.HexToAddress(ref)]; ok {
			return r.tokens[i], nil
		}
		return Token{}, fmt.Errorf("%w: %s", ErrUnknownToken, ref)
	}
	if i, ok := r.bySymbol[strings.ToUpper(ref)]; ok {
		return r.tokens[i], nil
	}
	return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, ref)
}

// All returns the tokens in registration order.
func (r *Registry) All() []Token {
	out := make([]Token, len(r.tokens))
	copy(out, r.tokens)
	return out
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int { return len(r.tokens) }
