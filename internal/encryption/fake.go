package encryption

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"dump-go/internal/dump"
)

// fakeHeader marks output of FakeEncryptor.
var fakeHeader = []byte("DUMPFAKE")

// FakeEncryptor is a deterministic stand-in for AgeEncryptor in tests and
// the "test" encryption type. It prepends a fixed header instead of
// encrypting, and Unlock checks the passphrase given to Setup.
type FakeEncryptor struct {
	mu         sync.Mutex
	passphrase string
	configured bool
}

var _ dump.Encryptor = (*FakeEncryptor)(nil)

// NewFakeEncryptor creates a FakeEncryptor that is already configured with
// the empty passphrase.
func NewFakeEncryptor() *FakeEncryptor {
	return &FakeEncryptor{configured: true}
}

func (e *FakeEncryptor) Setup(passphrase string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.passphrase = passphrase
	e.configured = true
	return nil
}

func (e *FakeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(fakeHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *FakeEncryptor) Unlock(passphrase string) (dump.DecryptionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return FakeDecryptionContext{}, nil
}

func (e *FakeEncryptor) IsConfigured() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.configured
}

// FakeDecryptionContext strips the header added by FakeEncryptor.
type FakeDecryptionContext struct{}

var _ dump.DecryptionContext = FakeDecryptionContext{}

func (FakeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(fakeHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, fakeHeader) {
		return fmt.Errorf("invalid fake encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
