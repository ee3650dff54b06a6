package testutil

import (
	"dump-go/internal/dump"
	"dump-go/internal/encryption"
	"dump-go/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-vault")
}

// NewTestEncryptor creates a deterministic encryptor whose passphrase is
// passphrase.
func NewTestEncryptor(passphrase string) dump.Encryptor {
	e := encryption.NewFakeEncryptor()
	e.Setup(passphrase)
	return e
}
