package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "w3vault"

// ErrKeyNotFound is returned when a key reference has no stored key.
var ErrKeyNotFound = errors.New("key not found")

// KeystoreBackend stores owner private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain. fileDir is
// used by the encrypted-file fallback on headless Linux; its password comes
// from W3VAULT_KEYRING_PASSWORD.
func DefaultKeystore(fileDir string) (*Keystore, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         filePassword,
	}
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		if ring, err = keyring.Open(cfg); err != nil {
			return nil, fmt.Errorf("opening keychain: %w", err)
		}
	}
	return &Keystore{ring: ring}, nil
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv("W3VAULT_KEYRING_PASSWORD"); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// Store saves a private key for a wallet name and returns its reference.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	if err := k.ring.Set(keyring.Item{Key: ref, Label: "w3vault owner " + name, Data: []byte(hexKey)}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key. Missing keys are not an error.
func (k *Keystore) Delete(ref string) error {
	err := k.ring.Remove(ref)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// InMemoryKeystore keeps keys in process memory. Used by tests and by the
// W3VAULT_KEY override.
type InMemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keyRef(name)
	k.data[ref] = hexKey
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}

func keyRef(name string) string { return keychainService + "." + name }
