package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// FileStore keeps credentials in one AES-256-GCM encrypted JSON file. It is
// the fallback for environments without a keyring (WSL, headless, containers).
type FileStore struct {
	path string
	key  []byte
}

// NewFileStore opens the file-backed store. An empty password derives the key
// from user@hostname, which only protects against casual reads; a warning
// points the user at EXCH_STORE_PASSWORD.
func NewFileStore(password string) (*FileStore, error) {
	if password == "" {
		user := os.Getenv("USER")
		if user == "" {
			user = os.Getenv("USERNAME")
		}
		host, _ := os.Hostname()
		password = user + "@" + host
		warnOnce("WARNING: Using machine-specific encryption key. For better security, set a password via EXCH_STORE_PASSWORD env var.")
	}

	path := filepath.Join(xdg.DataHome, "exch", "credentials.enc")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	key := sha256.Sum256([]byte(password))

	return &FileStore{path: path, key: key[:]}, nil
}

func (s *FileStore) Get(key string) (string, error) {
	creds, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := creds[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

func (s *FileStore) Set(key, value string) error {
	creds, err := s.load()
	if err != nil {
		return err
	}

	creds[key] = value
	return s.save(creds)
}

func (s *FileStore) Delete(key string) error {
	creds, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := creds[key]; !ok {
		return ErrNotFound
	}

	delete(creds, key)
	return s.save(creds)
}

func (s *FileStore) List() ([]string, error) {
	creds, err := s.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(creds))
	for k := range creds {
		keys = append(keys, k)
	}

	return keys, nil
}

// load reads and decrypts the credential file. A missing or empty file is an
// empty store.
func (s *FileStore) load() (map[string]string, error) {
	sealed, err := os.ReadFile(s.path)
	if os.IsNotExist(err) || (err == nil && len(sealed) == 0) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	gcm, err := s.cipher()
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("credentials file is truncated")
	}

	plain, err := gcm.Open(nil, sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(plain, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return creds, nil
}

// save encrypts the credential map and writes it with a fresh random nonce
// prepended.
func (s *FileStore) save(creds map[string]string) error {
	plain, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	gcm, err := s.cipher()
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plain, nil)
	if err := os.WriteFile(s.path, sealed, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

func (s *FileStore) cipher() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return cipher.NewGCM(block)
}
