package dump

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"dump-go/internal/model"
)

// encryptedMagic prefixes snapshots whose body is ciphertext.
const encryptedMagic = "DUMPSNAP-ENC\n"

// ErrEncryptedSnapshot is returned when restoring an encrypted snapshot
// without a decryption context.
var ErrEncryptedSnapshot = errors.New("snapshot is encrypted")

// BackupService copies the canvas document to and from a vault.
// It reads and replaces the store, so call it from the store's loop.
type BackupService struct {
	store     *Store
	vault     Vault
	encryptor Encryptor
	journal   Journal
	logger    Logger
}

// NewBackupService creates a BackupService. encryptor and journal may be nil.
func NewBackupService(store *Store, vault Vault, encryptor Encryptor, journal Journal, logger Logger) *BackupService {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &BackupService{
		store:     store,
		vault:     vault,
		encryptor: encryptor,
		journal:   journal,
		logger:    logger,
	}
}

// Backup stores the current tree as the host's snapshot and returns the
// snapshot version.
func (b *BackupService) Backup(hostID string, encrypt bool) (int64, error) {
	data, err := model.EncodeCanvases(b.store.Canvases())
	if err != nil {
		return 0, fmt.Errorf("encoding canvases: %w", err)
	}

	if encrypt {
		if b.encryptor == nil || !b.encryptor.IsConfigured() {
			return 0, fmt.Errorf("encryption is not configured, run 'dump keys init'")
		}
		var buf bytes.Buffer
		buf.WriteString(encryptedMagic)
		if err := b.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
			return 0, fmt.Errorf("encrypting snapshot: %w", err)
		}
		data = buf.Bytes()
	}

	version, err := b.localVersion()
	if err != nil {
		return 0, err
	}
	remote, err := b.vault.GetSnapshotVersion(hostID)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	if remote > version {
		b.logger.Warn("overwriting a newer snapshot", "host", hostID, "local", version, "remote", remote)
	}

	if err := b.vault.PutSnapshot(hostID, bytes.NewReader(data), int64(len(data)), version); err != nil {
		return 0, fmt.Errorf("uploading snapshot: %w", err)
	}

	b.logger.Info("backup complete", "host", hostID, "version", version, "bytes", len(data), "encrypted", encrypt)
	return version, nil
}

// Restore replaces the tree with the host's snapshot. decryptCtx is required
// when the snapshot is encrypted and ignored otherwise.
func (b *BackupService) Restore(hostID string, decryptCtx DecryptionContext) error {
	var buf bytes.Buffer
	if err := b.vault.GetSnapshot(hostID, &buf); err != nil {
		return fmt.Errorf("downloading snapshot: %w", err)
	}

	plain, err := b.open(&buf, decryptCtx)
	if err != nil {
		return err
	}

	canvases, err := model.DecodeCanvases(plain)
	if err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	b.store.Replace(canvases)
	b.logger.Info("restore complete", "host", hostID, "canvases", len(canvases))
	return nil
}

// IsEncrypted reports whether the host's stored snapshot is encrypted.
func (b *BackupService) IsEncrypted(hostID string) (bool, error) {
	var buf bytes.Buffer
	if err := b.vault.GetSnapshot(hostID, &buf); err != nil {
		return false, fmt.Errorf("downloading snapshot: %w", err)
	}
	return bytes.HasPrefix(buf.Bytes(), []byte(encryptedMagic)), nil
}

func (b *BackupService) open(r io.Reader, decryptCtx DecryptionContext) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(encryptedMagic))
	if string(head) != encryptedMagic {
		return io.ReadAll(br)
	}

	if decryptCtx == nil {
		return nil, ErrEncryptedSnapshot
	}
	if _, err := br.Discard(len(encryptedMagic)); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var plain bytes.Buffer
	if err := decryptCtx.Decrypt(br, &plain); err != nil {
		return nil, fmt.Errorf("decrypting snapshot: %w", err)
	}
	return plain.Bytes(), nil
}

// History returns up to limit recent store operations, newest first.
func (b *BackupService) History(limit int) ([]*model.Operation, error) {
	if b.journal == nil {
		return nil, nil
	}
	ops, err := b.journal.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return ops, nil
}

func (b *BackupService) localVersion() (int64, error) {
	if b.journal == nil {
		return int64(b.store.Version()), nil
	}
	id, err := b.journal.LatestID()
	if err != nil {
		return 0, fmt.Errorf("reading journal: %w", err)
	}
	return id, nil
}
