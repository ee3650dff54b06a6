package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 stores objects in memory. Multipart calls are left to the embedded
// nil interface; snapshots are small enough for single-part uploads.
type fakeS3 struct {
	S3Client

	mu        sync.Mutex
	objects   map[string][]byte
	bucketErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.bucketErr != nil {
		return nil, f.bucketErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.objects {
		out = append(out, k)
	}
	return out
}

func TestS3Vault_RoundTrip(t *testing.T) {
	client := newFakeS3()
	v := NewS3Vault("remote", "bucket", "dump", client)

	data := `[{"id":"inbox","name":"Inbox"}]`
	require.NoError(t, v.PutSnapshot("host-1", strings.NewReader(data), int64(len(data)), 42))

	assert.ElementsMatch(t, []string{
		"bucket/dump/snapshots/host-1.json",
		"bucket/dump/snapshots/host-1.version",
	}, client.keys())

	var buf bytes.Buffer
	require.NoError(t, v.GetSnapshot("host-1", &buf))
	assert.Equal(t, data, buf.String())

	version, err := v.GetSnapshotVersion("host-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), version)
}

func TestS3Vault_SizeMismatch(t *testing.T) {
	client := newFakeS3()
	v := NewS3Vault("remote", "bucket", "", client)

	err := v.PutSnapshot("host-1", strings.NewReader("abc"), 10, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size mismatch")
	assert.Empty(t, client.keys())
}

func TestS3Vault_Missing(t *testing.T) {
	v := NewS3Vault("remote", "bucket", "", newFakeS3())

	var buf bytes.Buffer
	err := v.GetSnapshot("nobody", &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot not found")

	version, err := v.GetSnapshotVersion("nobody")
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestS3Vault_ValidateSetup(t *testing.T) {
	client := newFakeS3()
	v := NewS3Vault("remote", "bucket", "", client)
	assert.NoError(t, v.ValidateSetup())

	client.bucketErr = errors.New("access denied")
	err := v.ValidateSetup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket bucket not accessible")
}

func TestNewS3Vault_PrefixNormalised(t *testing.T) {
	v := NewS3Vault("remote", "bucket", "team/dump", newFakeS3())
	assert.Equal(t, "team/dump/snapshots/h.json", v.snapshotKey("h"))

	v = NewS3Vault("remote", "bucket", "", newFakeS3())
	assert.Equal(t, "snapshots/h.version", v.versionKey("h"))
}
