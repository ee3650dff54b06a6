package encryption

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"

	"dump-go/internal/config"
	"dump-go/internal/dump"
)

// AgeEncryptor seals snapshots to an X25519 public key with filippo.io/age.
// Encrypting needs only the public key; decrypting needs the passphrase that
// unseals the private key.
type AgeEncryptor struct {
	keys  keyPair
	armor bool
}

var _ dump.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates a new AgeEncryptor from configuration.
func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		keys: keyPair{
			publicPath:  cfg.PublicKeyPath,
			privatePath: cfg.PrivateKeyPath,
		},
		armor: cfg.Armor,
	}
}

// Setup generates the key pair. It refuses to replace existing keys, since
// snapshots sealed to them would become unreadable.
func (e *AgeEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	if e.keys.exists() {
		return fmt.Errorf("keys already exist at %s", e.keys.publicPath)
	}
	return e.keys.generate(passphrase)
}

// Encrypt writes the age ciphertext of r to w, PEM-armored when configured.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := e.keys.recipient()
	if err != nil {
		return fmt.Errorf("loading public key: %w", err)
	}

	out := w
	var armorWriter io.WriteCloser
	if e.armor {
		armorWriter = armor.NewWriter(w)
		out = armorWriter
	}

	encWriter, err := age.Encrypt(out, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	if armorWriter != nil {
		if err := armorWriter.Close(); err != nil {
			return fmt.Errorf("finalizing armor: %w", err)
		}
	}
	return nil
}

// Unlock unseals the private key. It returns ErrWrongPassphrase when the
// passphrase does not match.
func (e *AgeEncryptor) Unlock(passphrase string) (dump.DecryptionContext, error) {
	identity, err := e.keys.identity(passphrase)
	if err != nil {
		return nil, err
	}
	return &AgeDecryptionContext{identity: identity}, nil
}

// IsConfigured returns true if both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	return e.keys.exists()
}

// AgeDecryptionContext holds an unlocked age identity for the length of a restore.
type AgeDecryptionContext struct {
	identity age.Identity
}

var _ dump.DecryptionContext = (*AgeDecryptionContext)(nil)

// Decrypt writes the plaintext of r to w. Armored and binary ciphertext are
// both accepted.
func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if head, _ := br.Peek(len(armor.Header)); bytes.Equal(head, []byte(armor.Header)) {
		src = armor.NewReader(br)
	}

	decReader, err := age.Decrypt(src, c.identity)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}
	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
