// check-balances: reads every configured token's decimals and its balance
// held by the vault (and any extra addresses given as arguments) in
// parallel, and prints a summary table. Decimals that disagree with
// config.json are flagged.
//
// Run from the module root:
//
//	W3VAULT_RPC_URL=https://… go run ./scripts/check-balances [0xHolder…]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

const rpcTimeout = 12 * time.Second

type result struct {
	token   string
	holder  string
	balance string
	note    string
}

func main() {
	cfg, err := config.Load(os.Getenv("W3VAULT_CONFIG_DIR"))
	if err != nil {
		fail(err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		fail(err)
	}
	if cfg.RPCURL == "" {
		fail(fmt.Errorf("set %s or rpc_url in config.json", config.EnvRPCURL))
	}
	tokens, err := cfg.TokenRegistry()
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	client, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		fail(err)
	}
	defer client.Close()

	latency, block, err := client.Ping(ctx)
	if err != nil {
		fail(fmt.Errorf("node unreachable: %w", err))
	}
	fmt.Printf("block %d · %s round trip\n\n", block, latency.Round(time.Millisecond))

	holders := []common.Address{cfg.VaultAddress()}
	for _, a := range os.Args[1:] {
		if !common.IsHexAddress(a) {
			fail(fmt.Errorf("%q is not an address", a))
		}
		holders = append(holders, common.HexToAddress(a))
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	for _, t := range tokens.All() {
		for _, h := range holders {
			wg.Add(1)
			go func(t token.Token, h common.Address) {
				defer wg.Done()
				r := result{token: t.Symbol, holder: shortAddr(h.Hex()), balance: "—"}
				if h == cfg.VaultAddress() {
					r.holder = "vault"
				}
				if dec, err := client.TokenDecimals(ctx, t.Address); err != nil {
					r.note = shortErr(err)
				} else if dec != t.Decimals {
					r.note = fmt.Sprintf("decimals %d on chain, %d in config", dec, t.Decimals)
				}
				if bal, err := client.TokenBalance(ctx, t.Address, h); err != nil {
					r.note = shortErr(err)
				} else {
					r.balance = token.FromBaseUnits(bal, t.Decimals)
				}
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(t, h)
		}
	}
	wg.Wait()

	printTable(results)
}

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].token != results[j].token {
			return results[i].token < results[j].token
		}
		return results[i].holder > results[j].holder // vault first
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tHOLDER\tBALANCE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 6)+"\t"+strings.Repeat("-", 14)+"\t"+strings.Repeat("-", 24)+"\t"+strings.Repeat("-", 12))
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.token, r.holder, r.balance, r.note)
	}
	w.Flush()
}

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "check-balances:", err)
	os.Exit(1)
}
