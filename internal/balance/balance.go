// Package balance reads ERC-20 balances of the vault and of the smart
// account, and keeps the last snapshot for display.
package balance

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds parallel eth_calls per snapshot.
const maxConcurrentReads = 4

// TokenReader reads a single ERC-20 balance.
type TokenReader interface {
	TokenBalance(ctx context.Context, token, holder common.Address) (*big.Int, error)
}

// Entry is one token balance.
type Entry struct {
	Token     token.Token
	Raw       *big.Int
	Formatted string
}

// Snapshot is an immutable set of balances of one holder taken at ReadAt.
type Snapshot struct {
	Holder  common.Address
	Entries []Entry
	ReadAt  time.Time
}

// Get returns the entry for symbol.
func (s Snapshot) Get(symbol string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Token.Symbol == symbol {
			return e, true
		}
	}
	return Entry{}, false
}

// Reader takes snapshots over a token table.
type Reader struct {
	chain  TokenReader
	tokens []token.Token
	now    func() time.Time
}

// NewReader returns a reader for the given tokens, in display order.
func NewReader(chain TokenReader, tokens []token.Token) *Reader {
	return &Reader{chain: chain, tokens: tokens, now: time.Now}
}

// Snapshot reads every token balance of holder concurrently. Entries keep
// the token order; any failed read fails the snapshot.
func (r *Reader) Snapshot(ctx context.Context, holder common.Address) (Snapshot, error) {
	entries := make([]Entry, len(r.tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, t := range r.tokens {
		g.Go(func() error {
			raw, err := r.chain.TokenBalance(gctx, t.Address, holder)
			if err != nil {
				return fmt.Errorf("reading %s balance of %s: %w", t.Symbol, holder.Hex(), err)
			}
			entries[i] = Entry{Token: t, Raw: raw, Formatted: token.FromBaseUnits(raw, t.Decimals)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Holder: holder, Entries: entries, ReadAt: r.now()}, nil
}

// Store keeps the most recent snapshot per holder. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	snaps map[common.Address]Snapshot
}

func NewStore() *Store {
	return &Store{snaps: make(map[common.Address]Snapshot)}
}

// Set replaces the snapshot of s.Holder unless a newer one is stored.
func (st *Store) Set(s Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if cur, ok := st.snaps[s.Holder]; ok && cur.ReadAt.After(s.ReadAt) {
		return
	}
	st.snaps[s.Holder] = s
}

// Get returns the last snapshot of holder.
func (st *Store) Get(holder common.Address) (Snapshot, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.snaps[holder]
	return s, ok
}

// Tracker refreshes the snapshots of a fixed set of holders.
type Tracker struct {
	reader  *Reader
	store   *Store
	holders []common.Address
	log     *zap.Logger
}

// NewTracker tracks holders; log may be nil.
func NewTracker(reader *Reader, store *Store, log *zap.Logger, holders ...common.Address) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{reader: reader, store: store, holders: holders, log: log}
}

// Refresh re-reads every holder and stores the results. Holders that were
// read successfully are stored even when another holder fails.
func (t *Tracker) Refresh(ctx context.Context) error {
	var g errgroup.Group
	for _, h := range t.holders {
		g.Go(func() error {
			s, err := t.reader.Snapshot(ctx, h)
			if err != nil {
				return err
			}
			t.store.Set(s)
			t.log.Debug("balances refreshed", zap.Stringer("holder", h), zap.Int("tokens", len(s.Entries)))
			return nil
		})
	}
	return g.Wait()
}

// Store returns the store snapshots are written to.
func (t *Tracker) Store() *Store { return t.store }

// Holders returns the tracked addresses in the order they were given.
func (t *Tracker) Holders() []common.Address {
	return append([]common.Address(nil), t.holders...)
}
