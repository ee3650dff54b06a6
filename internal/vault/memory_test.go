package vault

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"store and retrieve snapshot", `[{"id":"a"}]`},
		{"store empty snapshot", ""},
		{"store large snapshot", strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewMemoryVault("test-vault")

			if err := v.PutSnapshot("host-1", strings.NewReader(tt.content), int64(len(tt.content)), 7); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}

			var buf bytes.Buffer
			if err := v.GetSnapshot("host-1", &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if buf.String() != tt.content {
				t.Errorf("GetSnapshot() = %q, want %q", buf.String(), tt.content)
			}

			version, err := v.GetSnapshotVersion("host-1")
			if err != nil {
				t.Fatalf("GetSnapshotVersion() error = %v", err)
			}
			if version != 7 {
				t.Errorf("GetSnapshotVersion() = %d, want 7", version)
			}
		})
	}
}

func TestMemoryVault_SizeMismatch(t *testing.T) {
	v := NewMemoryVault("test-vault")

	if err := v.PutSnapshot("host-1", strings.NewReader("short"), 100, 1); err == nil {
		t.Fatal("PutSnapshot() expected size mismatch error")
	}
	if version, _ := v.GetSnapshotVersion("host-1"); version != 0 {
		t.Errorf("GetSnapshotVersion() after failed put = %d, want 0", version)
	}
}

func TestMemoryVault_Missing(t *testing.T) {
	v := NewMemoryVault("test-vault")

	var buf bytes.Buffer
	err := v.GetSnapshot("nobody", &buf)
	if err == nil {
		t.Fatal("GetSnapshot() expected error for unknown host")
	}
	if !strings.Contains(err.Error(), "snapshot not found") {
		t.Errorf("error = %v, want error containing 'snapshot not found'", err)
	}

	version, err := v.GetSnapshotVersion("nobody")
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("GetSnapshotVersion() = %d, want 0", version)
	}
}

func TestMemoryVault_HostsAreIsolated(t *testing.T) {
	v := NewMemoryVault("test-vault")

	for _, host := range []string{"a", "b"} {
		if err := v.PutSnapshot(host, strings.NewReader(host), 1, 1); err != nil {
			t.Fatalf("PutSnapshot(%s) error = %v", host, err)
		}
	}

	var buf bytes.Buffer
	if err := v.GetSnapshot("b", &buf); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if buf.String() != "b" {
		t.Errorf("GetSnapshot(b) = %q, want %q", buf.String(), "b")
	}
}
