package dump

import "io"

// Vault stores snapshots of the canvas document away from the local machine.
// Each host keeps one current snapshot plus a version marker used to detect
// a local document that is older than the remote one.
type Vault interface {
	// PutSnapshot stores the host's snapshot, replacing any previous one.
	// size is the number of bytes that will be read from r.
	PutSnapshot(hostID string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the host's snapshot to w.
	GetSnapshot(hostID string, w io.Writer) error

	// GetSnapshotVersion returns the stored snapshot version.
	// Returns 0 if no snapshot has been stored for this host.
	GetSnapshotVersion(hostID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
