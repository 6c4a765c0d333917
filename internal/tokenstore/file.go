package tokenstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const fileKeyInfo = "gxmovies token store v1"

type fileSlot struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
}

// File keeps the slot in a single JSON document on disk. Writes go through a
// temporary file and a rename, so a crash never leaves a half-written slot.
// When a passphrase is configured the document is sealed with XChaCha20-Poly1305.
type File struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFile returns a store backed by path. An empty passphrase stores plaintext JSON.
func NewFile(path, passphrase string) (*File, error) {
	if path == "" {
		return nil, errors.New("tokenstore: file path is required")
	}
	f := &File{path: path}
	if passphrase != "" {
		key, err := deriveKey(passphrase)
		if err != nil {
			return nil, err
		}
		f.key = key
	}
	return f, nil
}

func deriveKey(passphrase string) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(fileKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive file key: %w", err)
	}
	return key, nil
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

func (f *File) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, err := f.load()
	if err != nil {
		return err
	}
	slot.Token = token
	return f.store(slot)
}

func (f *File) Read(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, err := f.load()
	if err != nil {
		return "", err
	}
	if slot.Token == "" {
		return "", ErrNotFound
	}
	return slot.Token, nil
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session file: %w", err)
	}
	return nil
}

func (f *File) SaveDisplayName(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, err := f.load()
	if err != nil {
		return err
	}
	slot.Username = name
	return f.store(slot)
}

func (f *File) ReadDisplayName(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, err := f.load()
	if err != nil {
		return "", err
	}
	if slot.Username == "" {
		return "", ErrNotFound
	}
	return slot.Username, nil
}

func (f *File) load() (fileSlot, error) {
	var slot fileSlot
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return slot, nil
	}
	if err != nil {
		return slot, fmt.Errorf("read session file: %w", err)
	}
	if f.key != nil {
		if raw, err = f.open(raw); err != nil {
			return slot, err
		}
	}
	if err := json.Unmarshal(raw, &slot); err != nil {
		return slot, fmt.Errorf("decode session file: %w", err)
	}
	return slot, nil
}

func (f *File) store(slot fileSlot) error {
	raw, err := json.Marshal(slot)
	if err != nil {
		return err
	}
	if f.key != nil {
		if raw, err = f.seal(raw); err != nil {
			return err
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (f *File) seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func (f *File) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("session file is truncated")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("unseal session file: %w", err)
	}
	return plain, nil
}
