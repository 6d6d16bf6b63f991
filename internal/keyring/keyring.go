package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/elioaoun07/homeagenda/internal/constants"
)

// Secret names one credential stored under the application's keyring service.
type Secret string

const (
	// SecretDBConnection is the Postgres connection string, password included.
	SecretDBConnection Secret = constants.DefaultKeyringUser
	// SecretKafkaPassword authenticates the assignment notifier's SASL/PLAIN login.
	SecretKafkaPassword Secret = "kafka-password"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// ParseSecret maps a user-facing name to a Secret.
func ParseSecret(name string) (Secret, error) {
	switch Secret(name) {
	case SecretDBConnection, SecretKafkaPassword:
		return Secret(name), nil
	}
	return "", fmt.Errorf("unknown secret %q (expected %q or %q)", name, SecretDBConnection, SecretKafkaPassword)
}

func Get(secret Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(secret))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func Set(secret Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", secret)
	}
	if err := keyring.Set(constants.AppName, string(secret), value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func Delete(secret Secret) error {
	err := keyring.Delete(constants.AppName, string(secret))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string from the OS keyring.
func GetConnectionString() (string, error) {
	return Get(SecretDBConnection)
}

// IsAvailable is a best-effort check that the OS keyring can be read.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
