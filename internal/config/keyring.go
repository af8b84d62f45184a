package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name passwords are stored under.
const KeyringService = "dbview"

// KeyringAccount is the keychain account for c: user@host:port/database.
func (c Connection) KeyringAccount() string {
	return c.DisplayString()
}

// LookupPassword returns the stored password for c. A missing entry yields
// an empty password and no error.
func LookupPassword(c Connection) (string, error) {
	pw, err := keyring.Get(KeyringService, c.KeyringAccount())
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring lookup: %w", err)
	}
	return pw, nil
}

// SavePassword stores password for c in the OS keychain.
func SavePassword(c Connection, password string) error {
	if err := keyring.Set(KeyringService, c.KeyringAccount(), password); err != nil {
		return fmt.Errorf("keyring save: %w", err)
	}
	return nil
}

// DeletePassword removes the stored password for c. Deleting a missing entry
// is not an error.
func DeletePassword(c Connection) error {
	err := keyring.Delete(KeyringService, c.KeyringAccount())
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
