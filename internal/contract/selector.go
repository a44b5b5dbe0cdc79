package contract

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Selector returns the 4-byte function selector for sig as 0x-prefixed hex.
// Parameter names are ignored: "transfer(address to, uint256 amount)"
// and "transfer(address,uint256)" give the same selector.
func Selector(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(NormalizeSignature(sig)))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// NormalizeSignature removes parameter names and whitespace, keeping only types.
// "transfer(address to, uint256 amount)" → "transfer(address,uint256)"
func NormalizeSignature(sig string) string {
	sig = strings.TrimSpace(sig)
	parenIdx := strings.Index(sig, "(")
	if parenIdx < 0 || !strings.HasSuffix(sig, ")") {
		return sig
	}

	name := strings.TrimSpace(sig[:parenIdx])
	paramStr := sig[parenIdx+1 : len(sig)-1]
	if strings.TrimSpace(paramStr) == "" {
		return name + "()"
	}

	var types []string
	for _, p := range strings.Split(paramStr, ",") {
		// Take only the first word (the type), skip the name.
		if parts := strings.Fields(p); len(parts) > 0 {
			types = append(types, parts[0])
		}
	}
	return name + "(" + strings.Join(types, ",") + ")"
}
