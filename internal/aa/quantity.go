package aa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// quantity decodes a JSON integer sent either as a 0x hex string, a decimal
// string or a bare number. Bundlers and paymasters disagree on the format.
type quantity big.Int

func (q *quantity) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
		if s == "" {
			s = "0"
		}
	}
	if _, ok := (*big.Int)(q).SetString(s, base); !ok {
		return fmt.Errorf("invalid quantity %s", b)
	}
	return nil
}

// bigOrNil returns q as a *big.Int, nil when the field was absent.
func (q *quantity) bigOrNil() *big.Int {
	if q == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(q))
}
