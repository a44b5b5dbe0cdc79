// Package wallet manages the keys that own smart accounts: named wallets in
// a JSON file, private keys in the OS keychain, and EIP-191 signing.
package wallet

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrNoWallet       = errors.New("no wallet configured")
)

// Wallet holds metadata for one owner key. The key itself lives in the
// keystore under KeyRef.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	KeyRef    string `json:"keyRef"`
	IsDefault bool   `json:"isDefault,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Store persists wallet metadata.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store   Store
	keys    KeystoreBackend
	wallets map[string]*Wallet
	loaded  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the metadata store. Default is in-memory.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithKeystore sets where private keys go. Default is in-memory.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) { m.keys = ks }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
		keys:    NewInMemoryKeystore(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Keystore returns the key backend wallets are stored in.
func (m *Manager) Keystore() KeystoreBackend { return m.keys }

// Import derives the owner address from hexKey and stores the wallet.
// The first wallet becomes the default.
func (m *Manager) Import(name, hexKey string) (*Wallet, error) {
	s, err := SignerFromHex(hexKey)
	if err != nil {
		return nil, err
	}
	return m.add(name, stripHexPrefix(hexKey), s.Address().Hex())
}

// Generate creates a fresh owner key and stores it as name.
func (m *Manager) Generate(name string) (*Wallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(key))
	return m.add(name, hexKey, crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func (m *Manager) add(name, hexKey, addr string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	if _, exists := m.wallets[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, name)
	}
	ref, err := m.keys.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}
	w := &Wallet{
		Name:      name,
		Address:   addr,
		KeyRef:    ref,
		IsDefault: len(m.wallets) == 0,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.wallets[name] = w
	return w, m.persist()
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

// Remove deletes a wallet and its stored key.
func (m *Manager) Remove(name string) error {
	w, err := m.Get(name)
	if err != nil {
		return err
	}
	if err := m.keys.Delete(w.KeyRef); err != nil {
		return err
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() ([]*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if _, err := m.Get(name); err != nil {
		return err
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or the only wallet when just one
// exists.
func (m *Manager) Default() (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	for _, w := range m.wallets {
		if w.IsDefault {
			return w, nil
		}
	}
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w, nil
		}
	}
	return nil, ErrNoWallet
}

// Signer loads the signer for name, or for the default wallet when name is
// empty.
func (m *Manager) Signer(name string) (*Signer, error) {
	var (
		w   *Wallet
		err error
	)
	if name == "" {
		w, err = m.Default()
	} else {
		w, err = m.Get(name)
	}
	if err != nil {
		return nil, err
	}
	return NewSigner(w, m.keys)
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("loading wallets: %w", err)
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	wallets := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return m.store.Save(wallets)
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) { return s.wallets, nil }

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
