// Package secrets stores mailbox passwords, preferring the OS keyring and
// falling back to an encrypted file where no keyring is reachable.
package secrets

import (
	"errors"
	"fmt"
	"os"
)

// Store is a flat key/value credential store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	List() ([]string, error)
}

// ErrNotFound is returned for keys the store does not hold.
var ErrNotFound = errors.New("key not found")

// ServiceName identifies this tool's entries in the OS keyring.
const ServiceName = "exch"

// NewStore picks the backend for this environment. WSL and headless Linux
// sessions go straight to the encrypted file, since their keyrings are
// absent or unusable; elsewhere the keyring is tried first. The file store's
// key comes from EXCH_STORE_PASSWORD when set.
func NewStore() (Store, error) {
	filePassword := os.Getenv("EXCH_STORE_PASSWORD")

	if IsWSL() || IsHeadless() {
		warnOnce("Detected WSL/headless environment, using encrypted file storage")
		return newFileStoreMarked(filePassword)
	}

	ring, err := NewKeyringStore()
	if err != nil {
		warnOnce(fmt.Sprintf("Keyring unavailable (%v), falling back to encrypted file", err))
		return newFileStoreMarked(filePassword)
	}

	return ring, nil
}

func newFileStoreMarked(password string) (Store, error) {
	store, err := NewFileStore(password)
	if err != nil {
		return nil, err
	}

	markWarningsDone()
	return store, nil
}
