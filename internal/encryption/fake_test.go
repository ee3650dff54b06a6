package encryption

import (
	"bytes"
	"errors"
	"testing"
)

func TestFakeEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	e := NewFakeEncryptor()
	if !e.IsConfigured() {
		t.Fatal("IsConfigured() = false, want true")
	}
	if err := e.Setup("secret"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	input := []byte(`[{"id":"a"}]`)
	var encrypted bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(input), &encrypted); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !bytes.HasPrefix(encrypted.Bytes(), fakeHeader) {
		t.Errorf("output missing header: %q", encrypted.Bytes())
	}

	ctx, err := e.Unlock("secret")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	var decrypted bytes.Buffer
	if err := ctx.Decrypt(&encrypted, &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted.Bytes(), input) {
		t.Errorf("Decrypt() = %q, want %q", decrypted.Bytes(), input)
	}
}

func TestFakeEncryptor_WrongPassphrase(t *testing.T) {
	t.Parallel()

	e := NewFakeEncryptor()
	if err := e.Setup("secret"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, err := e.Unlock("guess"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("Unlock() error = %v, want ErrWrongPassphrase", err)
	}
}

func TestFakeDecryptionContext_BadHeader(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	tests := [][]byte{[]byte("short"), []byte("NOTFAKE!payload")}
	for _, in := range tests {
		if err := (FakeDecryptionContext{}).Decrypt(bytes.NewReader(in), &out); err == nil {
			t.Errorf("Decrypt(%q) expected error", in)
		}
	}
}
